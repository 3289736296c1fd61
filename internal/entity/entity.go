package entity

import (
	"fmt"
	"maps"

	"entity-sync/internal/common"
	"entity-sync/internal/metadata"
	"entity-sync/internal/naming"
)

// Entity is an instance of a catalog entity type.
type Entity struct {
	typ    *metadata.StructuralType
	conv   naming.Convention
	values map[string]any
	aspect *Aspect
}

// Aspect is the change-tracking envelope of an attached entity.
type Aspect struct {
	State State

	// OriginalValues holds the value each changed scalar property had
	// before its first change, keyed by client name.
	OriginalValues map[string]any

	manager *Manager
}

// Manager returns the manager the entity is attached to.
func (a *Aspect) Manager() *Manager {
	return a.manager
}

// Type returns the entity's catalog type.
func (e *Entity) Type() *metadata.StructuralType {
	return e.typ
}

// Aspect returns the change-tracking envelope, or nil if the entity was
// never attached.
func (e *Entity) Aspect() *Aspect {
	return e.aspect
}

// State returns the tracking state; entities without an aspect are Detached.
func (e *Entity) State() State {
	if e.aspect == nil {
		return Detached
	}

	return e.aspect.State
}

// Get returns a property value by client name.
func (e *Entity) Get(name string) any {
	return e.values[name]
}

// Values returns a shallow copy of all property values.
func (e *Entity) Values() map[string]any {
	return maps.Clone(e.values)
}

// Complex returns a scalar complex property value.
func (e *Entity) Complex(name string) *ComplexObject {
	co, _ := e.values[name].(*ComplexObject)
	return co
}

// ComplexList returns the elements of a complex collection property.
func (e *Entity) ComplexList(name string) []*ComplexObject {
	list, _ := e.values[name].([]*ComplexObject)
	return list
}

// Set changes a property value, recording the original value the first
// time the property changes on an unchanged or modified entity.
//
// A scalar complex property is never replaced: the values of the given
// *ComplexObject or map are copied into the current object one property
// at a time, so each change is tracked there. Complex collections are
// edited in place and Set rejects them with ErrReadOnly.
func (e *Entity) Set(name string, value any) error {
	if dp, ok := e.typ.DataProperty(e.conv.ClientToServer(name)); ok && dp.IsComplex() {
		return setComplex(dp, e.Complex(name), value)
	}

	e.setValue(name, value)

	return nil
}

func (e *Entity) setValue(name string, value any) {
	old := e.values[name]

	if e.isTracking() {
		if _, seen := e.aspect.OriginalValues[name]; !seen {
			e.aspect.OriginalValues[name] = old
		}
	}

	e.values[name] = value

	if e.aspect != nil && e.aspect.manager != nil {
		e.aspect.manager.propertyChanged(e, name, old, value)
	}

	e.markModified()
}

// Key builds the entity key from the current key property values.
func (e *Entity) Key() Key {
	keyProps := e.typ.KeyProperties()

	values := make([]any, len(keyProps))
	for i, dp := range keyProps {
		values[i] = e.values[e.conv.ServerToClient(dp.NameOnServer)]
	}

	return Key{TypeName: e.typ.QualifiedName(), Values: values}
}

// OriginalValues returns a copy of the tracked original values.
func (e *Entity) OriginalValues() map[string]any {
	if e.aspect == nil {
		return map[string]any{}
	}

	return maps.Clone(e.aspect.OriginalValues)
}

func (e *Entity) isTracking() bool {
	return e.aspect != nil && (e.aspect.State == Unchanged || e.aspect.State == Modified)
}

func (e *Entity) markModified() {
	if e.aspect == nil || e.aspect.State != Unchanged {
		return
	}

	e.aspect.State = Modified

	if e.aspect.manager != nil {
		e.aspect.manager.stateChanged(e, Unchanged)
	}
}

// ComplexObject is a value of a complex type held by an entity, directly or
// nested in another complex object.
type ComplexObject struct {
	typ       *metadata.StructuralType
	conv      naming.Convention
	values    map[string]any
	originals map[string]any
	owner     *Entity
}

// Type returns the complex type.
func (c *ComplexObject) Type() *metadata.StructuralType {
	return c.typ
}

// Owner returns the entity holding this value, if any.
func (c *ComplexObject) Owner() *Entity {
	return c.owner
}

// Get returns a property value by client name.
func (c *ComplexObject) Get(name string) any {
	return c.values[name]
}

// Complex returns a nested scalar complex value.
func (c *ComplexObject) Complex(name string) *ComplexObject {
	co, _ := c.values[name].(*ComplexObject)
	return co
}

// ComplexList returns a nested complex collection.
func (c *ComplexObject) ComplexList(name string) []*ComplexObject {
	list, _ := c.values[name].([]*ComplexObject)
	return list
}

// Set changes a property value and records its original value while the
// owner is tracked. Complex properties follow the rules of Entity.Set.
func (c *ComplexObject) Set(name string, value any) error {
	if dp, ok := c.typ.DataProperty(c.conv.ClientToServer(name)); ok && dp.IsComplex() {
		return setComplex(dp, c.Complex(name), value)
	}

	c.setValue(name, value)

	return nil
}

func (c *ComplexObject) setValue(name string, value any) {
	old := c.values[name]

	if c.owner != nil && c.owner.isTracking() {
		if _, seen := c.originals[name]; !seen {
			c.originals[name] = old
		}
	}

	c.values[name] = value

	if c.owner != nil {
		if c.owner.aspect != nil && c.owner.aspect.manager != nil {
			c.owner.aspect.manager.notify(Change{
				Entity:   c.owner,
				Complex:  c,
				Property: name,
				OldValue: old,
				NewValue: value,
			})
		}

		c.owner.markModified()
	}
}

func setComplex(dp *metadata.DataProperty, current *ComplexObject, value any) error {
	if !dp.IsScalar {
		return fmt.Errorf("%w: %s", ErrReadOnly, dp.NameOnServer)
	}

	if current == nil {
		return fmt.Errorf("%w: %s has no value", ErrNotComplexObject, dp.NameOnServer)
	}

	if err := current.assign(value, false); err != nil {
		return err
	}

	return current.assign(value, true)
}

// assign copies the scalar values of src into c, recursing into nested
// complex values. With apply unset it only checks that src fits, so a
// failed assignment leaves c untouched. Nested collections are not copied.
func (c *ComplexObject) assign(src any, apply bool) error {
	var values map[string]any

	switch v := src.(type) {
	case *ComplexObject:
		if v.typ.QualifiedName() != c.typ.QualifiedName() {
			return fmt.Errorf("%w: %s is not a %s", ErrNotComplexObject, v.typ.ShortName, c.typ.ShortName)
		}

		values = v.values
	case map[string]any:
		values = v
	default:
		return fmt.Errorf("%w: %T for %s", ErrNotComplexObject, src, c.typ.ShortName)
	}

	for _, dp := range c.typ.AllDataProperties() {
		name := c.conv.ServerToClient(dp.NameOnServer)

		v, ok := values[name]
		if !ok || !dp.IsScalar {
			continue
		}

		if dp.IsComplex() {
			nested := c.Complex(name)
			if nested == nil {
				return fmt.Errorf("%w: %s has no value", ErrNotComplexObject, dp.NameOnServer)
			}

			if err := nested.assign(v, apply); err != nil {
				return err
			}

			continue
		}

		if apply && !common.ValuesEqual(c.values[name], v) {
			c.setValue(name, v)
		}
	}

	return nil
}

// OriginalValues returns a copy of this object's own original values.
func (c *ComplexObject) OriginalValues() map[string]any {
	return maps.Clone(c.originals)
}

func (c *ComplexObject) setOwner(owner *Entity) {
	c.owner = owner

	for _, v := range c.values {
		switch nested := v.(type) {
		case *ComplexObject:
			nested.setOwner(owner)
		case []*ComplexObject:
			for _, co := range nested {
				co.setOwner(owner)
			}
		}
	}
}

// acceptChanges clears original values recursively.
func (c *ComplexObject) acceptChanges() {
	clear(c.originals)

	for _, v := range c.values {
		switch nested := v.(type) {
		case *ComplexObject:
			nested.acceptChanges()
		case []*ComplexObject:
			for _, co := range nested {
				co.acceptChanges()
			}
		}
	}
}

// rejectChanges restores original values recursively.
func (c *ComplexObject) rejectChanges() {
	maps.Copy(c.values, c.originals)
	clear(c.originals)

	for _, v := range c.values {
		switch nested := v.(type) {
		case *ComplexObject:
			nested.rejectChanges()
		case []*ComplexObject:
			for _, co := range nested {
				co.rejectChanges()
			}
		}
	}
}

func (e *Entity) eachComplex(fn func(*ComplexObject)) {
	for _, v := range e.values {
		switch co := v.(type) {
		case *ComplexObject:
			fn(co)
		case []*ComplexObject:
			for _, c := range co {
				fn(c)
			}
		}
	}
}
