package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"entity-sync/internal/metadata"
	"entity-sync/internal/naming"
)

// Document renders the entity's data properties keyed by server name.
// Complex values become nested documents; collections become arrays.
func (e *Entity) Document() map[string]any {
	return document(e.typ, e.conv, e.values)
}

// Document renders the complex value keyed by server name.
func (c *ComplexObject) Document() map[string]any {
	return document(c.typ, c.conv, c.values)
}

func document(st *metadata.StructuralType, conv naming.Convention, values map[string]any) map[string]any {
	props := st.AllDataProperties()
	doc := make(map[string]any, len(props))

	for _, dp := range props {
		switch v := values[conv.ServerToClient(dp.NameOnServer)].(type) {
		case *ComplexObject:
			doc[dp.NameOnServer] = v.Document()
		case []*ComplexObject:
			list := make([]any, len(v))
			for i, co := range v {
				list[i] = co.Document()
			}

			doc[dp.NameOnServer] = list
		default:
			doc[dp.NameOnServer] = v
		}
	}

	return doc
}

// Merge overwrites the entity with a server document using JSON merge
// patch semantics: fields present in doc win, a null removes the local
// value, absent fields keep the local value. State and original values
// are not touched.
func (m *Manager) Merge(e *Entity, doc []byte) error {
	if !m.owns(e) {
		return ErrNotAttached
	}

	local, err := json.Marshal(e.Document())
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", e.Key(), err)
	}

	merged, err := jsonpatch.MergePatch(local, doc)
	if err != nil {
		return fmt.Errorf("%w: failed to merge %s: %w", ErrInvalidDocument, e.Key(), err)
	}

	fields, err := decodeDocument(merged)
	if err != nil {
		return err
	}

	values := map[string]any{}
	if err := m.loadDocument(e.typ, values, fields); err != nil {
		return err
	}

	return m.UpdateValues(e, values)
}

// Materialize creates an entity from a server document and attaches it as
// Unchanged.
func (m *Manager) Materialize(st *metadata.StructuralType, doc []byte) (*Entity, error) {
	fields, err := decodeDocument(doc)
	if err != nil {
		return nil, err
	}

	e, err := m.CreateEntity(st.QualifiedName(), nil)
	if err != nil {
		return nil, err
	}

	if err := m.loadDocument(st, e.values, fields); err != nil {
		return nil, err
	}

	e.eachComplex(func(co *ComplexObject) { co.setOwner(e) })

	if err := m.AttachEntity(e, Unchanged); err != nil {
		return nil, err
	}

	return e, nil
}

// RevertToOriginalValues applies an original-values map keyed by server
// name, as carried in a save bundle, back onto the entity. Nested maps
// address complex values; a list addresses complex collection elements by
// position. State is left as is.
func (m *Manager) RevertToOriginalValues(e *Entity, originals map[string]any) error {
	values := map[string]any{}

	for serverName, v := range originals {
		dp, ok := e.typ.DataProperty(serverName)
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownProperty, e.typ.ShortName, serverName)
		}

		name := m.conv.ServerToClient(serverName)
		if !dp.IsComplex() {
			values[name] = v
			continue
		}

		if err := m.revertComplex(dp, e.values[name], v); err != nil {
			return err
		}
	}

	if !m.owns(e) {
		for name, v := range values {
			e.values[name] = v
		}

		return nil
	}

	return m.UpdateValues(e, values)
}

func (m *Manager) revertComplex(dp *metadata.DataProperty, current, originals any) error {
	if dp.IsScalar {
		co, ok := current.(*ComplexObject)
		sub, isMap := originals.(map[string]any)

		if !ok || !isMap {
			return fmt.Errorf("%w: %s", ErrNotComplexObject, dp.NameOnServer)
		}

		return m.revertComplexObject(co, sub)
	}

	list, _ := current.([]*ComplexObject)

	var items []map[string]any

	switch v := originals.(type) {
	case []map[string]any:
		items = v
	case []any:
		for _, it := range v {
			sub, _ := it.(map[string]any)
			items = append(items, sub)
		}
	default:
		return fmt.Errorf("%w: %s", ErrNotComplexObject, dp.NameOnServer)
	}

	for i, sub := range items {
		if i >= len(list) {
			break
		}

		if err := m.revertComplexObject(list[i], sub); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) revertComplexObject(co *ComplexObject, originals map[string]any) error {
	for serverName, v := range originals {
		dp, ok := co.typ.DataProperty(serverName)
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownProperty, co.typ.ShortName, serverName)
		}

		name := m.conv.ServerToClient(serverName)
		if !dp.IsComplex() {
			co.values[name] = v
			continue
		}

		if err := m.revertComplex(dp, co.values[name], v); err != nil {
			return err
		}
	}

	return nil
}

// loadDocument fills values (client names) from a decoded server document.
func (m *Manager) loadDocument(st *metadata.StructuralType, values, doc map[string]any) error {
	for _, dp := range st.AllDataProperties() {
		name := m.conv.ServerToClient(dp.NameOnServer)
		raw := doc[dp.NameOnServer]

		if !dp.IsComplex() {
			values[name] = metadata.FromJSONValue(dp.DataType, raw)
			continue
		}

		ct, ok := m.catalog.StructuralType(dp.ComplexTypeName)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownType, dp.ComplexTypeName)
		}

		if dp.IsScalar {
			sub, _ := raw.(map[string]any)

			co := &ComplexObject{typ: ct, conv: m.conv, values: map[string]any{}, originals: map[string]any{}}
			if err := m.loadDocument(ct, co.values, sub); err != nil {
				return err
			}

			values[name] = co

			continue
		}

		items, _ := raw.([]any)
		list := make([]*ComplexObject, 0, len(items))

		for _, it := range items {
			sub, _ := it.(map[string]any)

			co := &ComplexObject{typ: ct, conv: m.conv, values: map[string]any{}, originals: map[string]any{}}
			if err := m.loadDocument(ct, co.values, sub); err != nil {
				return err
			}

			list = append(list, co)
		}

		values[name] = list
	}

	return nil
}

func decodeDocument(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidDocument)
	}

	return doc, nil
}
