package metadata

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"entity-sync/internal/descriptor"
)

// LocalQueryComparison is the string comparison mode advertised to clients.
const LocalQueryComparison = "caseInsensitiveSQL"

// Catalog is the immutable result of a build.
type Catalog struct {
	types     []*StructuralType
	byName    map[string]*StructuralType
	byShort   map[string][]*StructuralType
	resources map[string]string
	fkMap     map[string][]string
}

func newCatalog(types []*StructuralType, resources map[string]string, fkMap map[string][]string) *Catalog {
	c := &Catalog{
		types:     types,
		byName:    make(map[string]*StructuralType, len(types)),
		byShort:   make(map[string][]*StructuralType, len(types)),
		resources: resources,
		fkMap:     fkMap,
	}

	for _, t := range types {
		c.byName[t.QualifiedName()] = t
		c.byShort[t.ShortName] = append(c.byShort[t.ShortName], t)
	}

	for _, t := range types {
		if t.BaseTypeName != "" {
			t.base = c.byName[t.BaseTypeName]
		}
	}

	return c
}

// Types returns all structural types: complex types first, then entity types.
func (c *Catalog) Types() []*StructuralType {
	return slices.Clone(c.types)
}

// EntityTypes returns the entity (non-complex) types in catalog order.
func (c *Catalog) EntityTypes() []*StructuralType {
	var out []*StructuralType

	for _, t := range c.types {
		if !t.IsComplexType {
			out = append(out, t)
		}
	}

	return out
}

// StructuralType finds a type by its exact qualified name.
func (c *Catalog) StructuralType(qualifiedName string) (*StructuralType, bool) {
	t, ok := c.byName[qualifiedName]
	return t, ok
}

// ResolveTypeName maps any accepted spelling of a type name to its catalog
// type. Accepted: "Short:#Namespace", "Namespace.Short", the same with an
// assembly qualifier, and a bare short name when it is unique.
func (c *Catalog) ResolveTypeName(name string) (*StructuralType, bool) {
	short, ns := NormalizeTypeName(name)
	if ns != "" {
		return c.StructuralType(descriptor.QualifiedName(short, ns))
	}

	candidates := c.byShort[short]
	if len(candidates) != 1 {
		return nil, false
	}

	return candidates[0], true
}

// EntityType resolves a name like ResolveTypeName but only matches entity types.
func (c *Catalog) EntityType(name string) (*StructuralType, bool) {
	t, ok := c.ResolveTypeName(name)
	if !ok || t.IsComplexType {
		return nil, false
	}

	return t, true
}

// EntityTypeForResource returns the entity type registered for a resource name.
func (c *Catalog) EntityTypeForResource(resource string) (*StructuralType, bool) {
	name, ok := c.resources[resource]
	if !ok {
		return nil, false
	}

	return c.StructuralType(name)
}

// ForeignKeyNames returns the foreign key properties of an entity's
// navigation property. The key is "EntityShortName.propertyName".
func (c *Catalog) ForeignKeyNames(entityProperty string) ([]string, bool) {
	names, ok := c.fkMap[entityProperty]
	return slices.Clone(names), ok
}

// ForeignKeyMap returns a copy of the whole foreign key map.
func (c *Catalog) ForeignKeyMap() map[string][]string {
	out := make(map[string][]string, len(c.fkMap))
	for k, v := range c.fkMap {
		out[k] = slices.Clone(v)
	}

	return out
}

// ResourceEntityTypeMap returns a copy of the resource name to type name map.
func (c *Catalog) ResourceEntityTypeMap() map[string]string {
	return maps.Clone(c.resources)
}

// NavigationsTo returns, for every entity type, the scalar navigation
// properties that point at the given qualified type name.
func (c *Catalog) NavigationsTo(qualifiedName string) map[*StructuralType][]*NavigationProperty {
	out := map[*StructuralType][]*NavigationProperty{}

	for _, t := range c.types {
		for _, np := range t.NavigationProperties {
			if np.IsScalar && np.EntityTypeName == qualifiedName && len(np.ForeignKeyNamesOnServer) > 0 {
				out[t] = append(out[t], np)
			}
		}
	}

	return out
}

type catalogDoc struct {
	LocalQueryComparisonOptions string            `json:"localQueryComparisonOptions"`
	StructuralTypes             []*StructuralType `json:"structuralTypes"`
	ResourceEntityTypeMap       map[string]string `json:"resourceEntityTypeMap"`
	FKMap                       map[string]string `json:"fkMap"`
}

// MarshalJSON writes the metadata document sent to clients. Multi-column
// foreign keys appear comma-joined in fkMap.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	fk := make(map[string]string, len(c.fkMap))
	for k, v := range c.fkMap {
		fk[k] = strings.Join(v, ",")
	}

	types := c.types
	if types == nil {
		types = []*StructuralType{}
	}

	return json.Marshal(catalogDoc{
		LocalQueryComparisonOptions: LocalQueryComparison,
		StructuralTypes:             types,
		ResourceEntityTypeMap:       c.resources,
		FKMap:                       fk,
	})
}

// MarshalYAML renders the same document as MarshalJSON in block style.
func (c *Catalog) MarshalYAML() (any, error) {
	data, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert metadata to YAML: %w", err)
	}

	resetStyle(&node)

	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return node.Content[0], nil
	}

	return &node, nil
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		resetStyle(child)
	}
}

// IsA reports whether t is the named type or one of its subtypes.
func (c *Catalog) IsA(t *StructuralType, qualifiedName string) bool {
	for cur := t; cur != nil; {
		if cur.QualifiedName() == qualifiedName {
			return true
		}

		if cur.BaseTypeName == "" {
			return false
		}

		cur = c.byName[cur.BaseTypeName]
	}

	return false
}
