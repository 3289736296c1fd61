package metadata

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"

	"entity-sync/internal/descriptor"
)

// StructuralType is a catalog entry for an entity or complex type.
type StructuralType struct {
	ShortName     string
	Namespace     string
	IsComplexType bool

	// BaseTypeName is the qualified name of the mapped supertype.
	BaseTypeName string

	AutoGeneratedKeyType AutoGeneratedKeyType
	DefaultResourceName  string

	DataProperties       []*DataProperty
	NavigationProperties []*NavigationProperty

	base *StructuralType
}

// QualifiedName returns "ShortName:#Namespace".
func (t *StructuralType) QualifiedName() string {
	return descriptor.QualifiedName(t.ShortName, t.Namespace)
}

// Base returns the mapped supertype, or nil.
func (t *StructuralType) Base() *StructuralType {
	return t.base
}

// AllDataProperties returns inherited data properties followed by the
// type's own.
func (t *StructuralType) AllDataProperties() []*DataProperty {
	if t.base == nil {
		return t.DataProperties
	}

	inherited := t.base.AllDataProperties()

	out := make([]*DataProperty, 0, len(inherited)+len(t.DataProperties))
	out = append(out, inherited...)

	return append(out, t.DataProperties...)
}

// AllNavigationProperties returns inherited navigation properties followed
// by the type's own.
func (t *StructuralType) AllNavigationProperties() []*NavigationProperty {
	if t.base == nil {
		return t.NavigationProperties
	}

	inherited := t.base.AllNavigationProperties()

	out := make([]*NavigationProperty, 0, len(inherited)+len(t.NavigationProperties))
	out = append(out, inherited...)

	return append(out, t.NavigationProperties...)
}

// DataProperty finds a data property, inherited ones included, by its
// server name.
func (t *StructuralType) DataProperty(name string) (*DataProperty, bool) {
	for _, dp := range t.AllDataProperties() {
		if dp.NameOnServer == name {
			return dp, true
		}
	}

	return nil, false
}

// NavigationProperty finds a navigation property, inherited ones included,
// by its server name.
func (t *StructuralType) NavigationProperty(name string) (*NavigationProperty, bool) {
	for _, np := range t.AllNavigationProperties() {
		if np.NameOnServer == name {
			return np, true
		}
	}

	return nil, false
}

// KeyProperties returns the data properties that form the entity key, in order.
func (t *StructuralType) KeyProperties() []*DataProperty {
	var keys []*DataProperty

	for _, dp := range t.AllDataProperties() {
		if dp.IsPartOfKey {
			keys = append(keys, dp)
		}
	}

	return keys
}

// ComplexProperties returns the data properties holding complex values.
func (t *StructuralType) ComplexProperties() []*DataProperty {
	var out []*DataProperty

	for _, dp := range t.AllDataProperties() {
		if dp.IsComplex() {
			out = append(out, dp)
		}
	}

	return out
}

type structuralTypeDoc struct {
	ShortName            string                `json:"shortName"`
	Namespace            string                `json:"namespace"`
	IsComplexType        bool                  `json:"isComplexType,omitempty"`
	BaseTypeName         string                `json:"baseTypeName,omitempty"`
	AutoGeneratedKeyType *AutoGeneratedKeyType `json:"autoGeneratedKeyType,omitempty"`
	DefaultResourceName  string                `json:"defaultResourceName,omitempty"`
	DataProperties       []*DataProperty       `json:"dataProperties"`
	NavigationProperties []*NavigationProperty `json:"navigationProperties,omitempty"`
}

// MarshalJSON writes the type in the client metadata format. Complex types
// carry neither a key type nor navigation properties.
func (t *StructuralType) MarshalJSON() ([]byte, error) {
	doc := structuralTypeDoc{
		ShortName:            t.ShortName,
		Namespace:            t.Namespace,
		IsComplexType:        t.IsComplexType,
		BaseTypeName:         t.BaseTypeName,
		DefaultResourceName:  t.DefaultResourceName,
		DataProperties:       t.DataProperties,
		NavigationProperties: t.NavigationProperties,
	}

	if !t.IsComplexType {
		kt := t.AutoGeneratedKeyType
		doc.AutoGeneratedKeyType = &kt

		if doc.NavigationProperties == nil {
			doc.NavigationProperties = []*NavigationProperty{}
		}
	}

	if doc.DataProperties == nil {
		doc.DataProperties = []*DataProperty{}
	}

	return json.Marshal(doc)
}

// DataProperty describes a scalar or complex-valued property.
type DataProperty struct {
	NameOnServer string

	// DataType is empty for complex-valued properties.
	DataType string

	// ComplexTypeName is the qualified name of the complex type, if any.
	ComplexTypeName string

	// IsScalar is false for complex collections.
	IsScalar bool

	IsNullable   bool
	MaxLength    *int
	DefaultValue any
	IsPartOfKey  bool

	// ConcurrencyToken marks the optimistic concurrency (version) property.
	ConcurrencyToken bool

	Validators []Validator
}

// IsComplex reports whether the property holds a complex value.
func (p *DataProperty) IsComplex() bool {
	return p.ComplexTypeName != ""
}

type dataPropertyDoc struct {
	NameOnServer    string      `json:"nameOnServer"`
	DataType        string      `json:"dataType,omitempty"`
	ComplexTypeName string      `json:"complexTypeName,omitempty"`
	IsScalar        *bool       `json:"isScalar,omitempty"`
	IsNullable      bool        `json:"isNullable"`
	MaxLength       *int        `json:"maxLength,omitempty"`
	DefaultValue    any         `json:"defaultValue,omitempty"`
	IsPartOfKey     bool        `json:"isPartOfKey,omitempty"`
	ConcurrencyMode string      `json:"concurrencyMode,omitempty"`
	Validators      []Validator `json:"validators,omitempty"`
}

func (p *DataProperty) MarshalJSON() ([]byte, error) {
	doc := dataPropertyDoc{
		NameOnServer:    p.NameOnServer,
		DataType:        p.DataType,
		ComplexTypeName: p.ComplexTypeName,
		IsNullable:      p.IsNullable,
		MaxLength:       p.MaxLength,
		DefaultValue:    p.DefaultValue,
		IsPartOfKey:     p.IsPartOfKey,
		Validators:      p.Validators,
	}

	if p.IsComplex() {
		scalar := p.IsScalar
		doc.IsScalar = &scalar
	}

	if p.ConcurrencyToken {
		doc.ConcurrencyMode = "Fixed"
	}

	return json.Marshal(doc)
}

// NavigationProperty describes a link to a related entity type.
type NavigationProperty struct {
	NameOnServer string `json:"nameOnServer"`

	// EntityTypeName is the qualified name of the related type.
	EntityTypeName string `json:"entityTypeName"`

	IsScalar        bool   `json:"isScalar"`
	AssociationName string `json:"associationName"`

	// ForeignKeyNamesOnServer lists the data properties holding the
	// foreign key, for scalar navigations only.
	ForeignKeyNamesOnServer []string `json:"foreignKeyNamesOnServer,omitempty"`
}

// Validator is a named client-side validation rule.
type Validator struct {
	Name   string
	Params map[string]string
}

// MarshalJSON flattens parameters next to the name:
// {"name": "maxLength", "maxLength": "15"}.
func (v Validator) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(v.Params)+1)
	maps.Copy(m, v.Params)
	m["name"] = v.Name

	return json.Marshal(m)
}

// UnmarshalJSON reads the flattened form written by MarshalJSON.
func (v *Validator) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	v.Name = m["name"]
	delete(m, "name")

	v.Params = nil
	if len(m) > 0 {
		v.Params = m
	}

	return nil
}

// String renders the validator as name(key=value,...) with sorted keys.
func (v Validator) String() string {
	if len(v.Params) == 0 {
		return v.Name
	}

	s := v.Name + "("
	for i, k := range slices.Sorted(maps.Keys(v.Params)) {
		if i > 0 {
			s += ","
		}

		s += k + "=" + strconv.Quote(v.Params[k])
	}

	return s + ")"
}
