package descriptor

import (
	"strings"
)

// MappingSet is the root of a mapping descriptor document.
type MappingSet struct {
	// Version of the descriptor schema.
	Version string `yaml:"version,omitempty"`

	// Namespace applied to types and components that don't declare one.
	Namespace string `yaml:"namespace,omitempty"`

	// Types lists every mapped entity type.
	Types []TypeDescriptor `yaml:"types"`
}

// TypeDescriptor describes one mapped entity type.
type TypeDescriptor struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace,omitempty"`

	// Base names the mapped supertype, short or qualified.
	Base string `yaml:"base,omitempty"`

	// Identifier is nil for subtypes that inherit their key.
	Identifier *Identifier `yaml:"id,omitempty"`

	// NaturalKey lists properties forming the natural identifier.
	NaturalKey StringOrArray `yaml:"natural_key,omitempty"`

	// Version names the optimistic concurrency property.
	Version string `yaml:"version,omitempty"`

	Properties []Property `yaml:"properties,omitempty"`
}

// QualifiedName returns the "ShortName:#Namespace" identity of the type.
func (t *TypeDescriptor) QualifiedName() string {
	return QualifiedName(t.Name, t.Namespace)
}

// Owns reports whether this type lexically declares a member whose
// declarer is declaredBy. An empty declarer means "this type".
func (t *TypeDescriptor) Owns(declaredBy string) bool {
	if declaredBy == "" {
		return true
	}

	short, ns := SplitName(declaredBy)
	if short != t.Name {
		return false
	}

	return ns == "" || ns == t.Namespace
}

// Identifier describes how a type's primary key is mapped.
type Identifier struct {
	// Name of the identifier property; empty for an embedded composite key.
	Name string `yaml:"name,omitempty"`

	// Type is the mapping-layer data type name (e.g. "Int32").
	Type string `yaml:"type,omitempty"`

	Columns Columns `yaml:"columns,omitempty"`

	// Generator is the identifier strategy (identity, assigned, sequence, guid, ...).
	Generator string `yaml:"generator,omitempty"`

	// DeclaredBy names the type that declares the identifier, empty for the
	// described type itself.
	DeclaredBy string `yaml:"declared_by,omitempty"`

	// Members lists the parts of a composite key. Association members
	// reference other entities and resolve through their foreign keys.
	Members []Property `yaml:"members,omitempty"`
}

// IsComposite returns true when the key is made of several members.
func (id *Identifier) IsComposite() bool {
	return len(id.Members) > 0
}

// ColumnNames returns the key columns in declaration order.
func (id *Identifier) ColumnNames() []string {
	if !id.IsComposite() {
		return id.Columns.Names()
	}

	var names []string
	for _, m := range id.Members {
		names = append(names, m.Columns.Names()...)
	}

	return names
}

// PropertyKind classifies a mapped property.
type PropertyKind string

const (
	KindScalar      PropertyKind = "scalar"
	KindComponent   PropertyKind = "component"
	KindAssociation PropertyKind = "association"
)

// IsValid returns true if the kind is a recognized value.
func (k PropertyKind) IsValid() bool {
	return k == KindScalar || k == KindComponent || k == KindAssociation
}

// Property describes one mapped property of a type or component.
type Property struct {
	Name string       `yaml:"name"`
	Kind PropertyKind `yaml:"kind,omitempty"`

	// Type is the mapping-layer data type name for scalars.
	Type string `yaml:"type,omitempty"`

	Nullable bool    `yaml:"nullable,omitempty"`
	Columns  Columns `yaml:"columns,omitempty"`

	// DeclaredBy names the lexical declarer when the property is inherited.
	DeclaredBy string `yaml:"declared_by,omitempty"`

	Component   *Component   `yaml:"component,omitempty"`
	Association *Association `yaml:"association,omitempty"`
}

// IsAssociation returns true for association properties.
func (p *Property) IsAssociation() bool {
	return p.Kind == KindAssociation
}

// IsComponent returns true for component properties.
func (p *Property) IsComponent() bool {
	return p.Kind == KindComponent
}

// Component describes an embedded value type.
type Component struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace,omitempty"`

	// Collection marks a component collection (one value object per element).
	Collection bool `yaml:"collection,omitempty"`

	Properties []Property `yaml:"properties"`
}

// QualifiedName returns the "ShortName:#Namespace" identity of the component type.
func (c *Component) QualifiedName() string {
	return QualifiedName(c.Name, c.Namespace)
}

// Association describes a reference to another mapped entity.
type Association struct {
	// Target is the related entity type, short or qualified.
	Target string `yaml:"target"`

	// Collection marks the "many" side of a relation.
	Collection bool `yaml:"collection,omitempty"`

	// OneToOne marks a one-to-one relation.
	OneToOne bool `yaml:"one_to_one,omitempty"`
}

// Column describes a single store column.
type Column struct {
	Name    string  `yaml:"name"`
	Length  int     `yaml:"length,omitempty"`
	Default *string `yaml:"default,omitempty"`
}

// Columns is an ordered list of columns.
type Columns []Column

// Names returns the column names in order.
func (c Columns) Names() []string {
	names := make([]string, len(c))
	for i, col := range c {
		names[i] = col.Name
	}

	return names
}

// Single returns the only column, or nil when there are zero or several.
func (c Columns) Single() *Column {
	if len(c) != 1 {
		return nil
	}

	return &c[0]
}

// QualifiedName formats a type identity as "ShortName:#Namespace".
func QualifiedName(short, namespace string) string {
	return short + ":#" + namespace
}

// SplitName splits a type name into short name and namespace.
// Accepted forms: "Short:#Namespace", "Namespace.Short" and "Short".
func SplitName(name string) (short, namespace string) {
	if i := strings.Index(name, ":#"); i >= 0 {
		return name[:i], name[i+2:]
	}

	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:], name[:i]
	}

	return name, ""
}

// Lookup finds a type descriptor by short, dotted or qualified name.
// A bare short name only matches when it is unambiguous.
func (s *MappingSet) Lookup(name string) (*TypeDescriptor, bool) {
	short, ns := SplitName(name)

	var found *TypeDescriptor

	for i := range s.Types {
		td := &s.Types[i]
		if td.Name != short {
			continue
		}

		if ns != "" {
			if td.Namespace == ns {
				return td, true
			}

			continue
		}

		if found != nil {
			return nil, false
		}

		found = td
	}

	return found, found != nil
}
