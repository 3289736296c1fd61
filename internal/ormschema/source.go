// Package ormschema derives mapping descriptors from gorm models.
//
// Models are parsed with gorm's schema package, so table, column and
// relationship rules are exactly those gorm applies at runtime:
//
//   - the primary key becomes the identifier; integer keys gorm treats as
//     auto-increment map to the "identity" strategy
//   - `embedded` structs become components and `serializer:json` slices of
//     structs become component collections
//   - belongs-to, has-one and has-many relationships become associations
//   - an anonymous embedded struct that is itself a described model becomes
//     the base type
//
// Two tag settings extend gorm's vocabulary: `version` marks the
// concurrency property and `naturalKey` marks natural key members. An
// explicit `generator:<strategy>` overrides the derived key strategy.
package ormschema

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm/schema"

	"entity-sync/internal/descriptor"
	"entity-sync/internal/metadata"
	"entity-sync/primitive"
)

// Option configures a Source.
type Option func(*Source)

// WithNamer replaces gorm's default naming strategy.
func WithNamer(namer schema.Namer) Option {
	return func(s *Source) {
		s.namer = namer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// Source turns gorm models into a descriptor set.
type Source struct {
	namespace string
	namer     schema.Namer
	cache     *sync.Map
	logger    *slog.Logger
}

// New creates a Source that puts every type into namespace.
func New(namespace string, opts ...Option) *Source {
	s := &Source{
		namespace: namespace,
		namer:     schema.NamingStrategy{},
		cache:     &sync.Map{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Describe builds descriptors for the given models, one type per model in
// argument order. Models are pointers to structs, e.g. &Order{}.
func (s *Source) Describe(models ...any) (*descriptor.MappingSet, error) {
	schemas := make([]*schema.Schema, 0, len(models))
	known := map[reflect.Type]string{}

	for _, model := range models {
		sch, err := schema.Parse(model, s.cache, s.namer)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		schemas = append(schemas, sch)
		known[sch.ModelType] = sch.Name
	}

	set := &descriptor.MappingSet{Namespace: s.namespace}

	for _, sch := range schemas {
		td, err := s.describe(sch, known)
		if err != nil {
			return nil, err
		}

		set.Types = append(set.Types, td)
	}

	descriptor.ApplyDefaults(set)

	return set, nil
}

func (s *Source) describe(sch *schema.Schema, known map[reflect.Type]string) (descriptor.TypeDescriptor, error) {
	td := descriptor.TypeDescriptor{Name: sch.Name, Namespace: s.namespace}

	base, baseField := baseModel(sch, known)
	if base != "" {
		td.Base = base
	}

	inherited := func(f *schema.Field) bool {
		return baseField != "" && len(f.BindNames) > 1 && f.BindNames[0] == baseField
	}

	if base == "" {
		id, err := s.identifier(sch)
		if err != nil {
			return td, err
		}

		td.Identifier = id
	}

	components := map[string]*descriptor.Component{}

	for _, f := range sch.Fields {
		if inherited(f) || (f.PrimaryKey && base == "") {
			continue
		}

		if _, ok := f.TagSettings["VERSION"]; ok {
			td.Version = f.Name
		}

		if _, ok := f.TagSettings["NATURALKEY"]; ok {
			td.NaturalKey = append(td.NaturalKey, f.Name)
		}

		if rel, ok := sch.Relationships.Relations[f.Name]; ok && f.DBName == "" {
			if p, ok := s.association(sch, rel); ok {
				td.Properties = append(td.Properties, p)
			}

			continue
		}

		if f.DBName == "" {
			continue
		}

		if path := componentPath(sch.ModelType, f.BindNames); len(path) > 0 {
			s.addComponentField(&td, components, sch.ModelType, path, f)
			continue
		}

		p, err := s.property(f)
		if err != nil {
			return td, fmt.Errorf("failed to describe %s.%s: %w", sch.Name, f.Name, err)
		}

		td.Properties = append(td.Properties, p)
	}

	return td, nil
}

// baseModel finds an anonymous embedded field whose type is another
// described model.
func baseModel(sch *schema.Schema, known map[reflect.Type]string) (name, field string) {
	for i := range sch.ModelType.NumField() {
		sf := sch.ModelType.Field(i)
		if !sf.Anonymous {
			continue
		}

		t := sf.Type
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		if n, ok := known[t]; ok {
			return n, sf.Name
		}
	}

	return "", ""
}

func (s *Source) identifier(sch *schema.Schema) (*descriptor.Identifier, error) {
	switch len(sch.PrimaryFields) {
	case 0:
		s.logger.Warn("model has no primary key", "model", sch.Name)
		return nil, nil

	case 1:
		f := sch.PrimaryFields[0]

		dataType, _, ok := primitive.DataTypeOf(f.FieldType)
		if !ok {
			return nil, fmt.Errorf("unsupported key type %s for %s.%s", f.FieldType, sch.Name, f.Name)
		}

		return &descriptor.Identifier{
			Name:      f.Name,
			Type:      dataType,
			Columns:   descriptor.Columns{keyColumn(f)},
			Generator: generator(f, dataType),
		}, nil

	default:
		id := &descriptor.Identifier{Generator: "assigned"}

		for _, f := range sch.PrimaryFields {
			dataType, _, ok := primitive.DataTypeOf(f.FieldType)
			if !ok {
				return nil, fmt.Errorf("unsupported key type %s for %s.%s", f.FieldType, sch.Name, f.Name)
			}

			id.Members = append(id.Members, descriptor.Property{
				Name:    f.Name,
				Kind:    descriptor.KindScalar,
				Type:    dataType,
				Columns: descriptor.Columns{keyColumn(f)},
			})
		}

		return id, nil
	}
}

func generator(f *schema.Field, dataType string) string {
	if g, ok := f.TagSettings["GENERATOR"]; ok && g != "" && g != "GENERATOR" {
		return g
	}

	switch {
	case f.AutoIncrement:
		return "identity"
	case dataType == "Guid" && f.HasDefaultValue:
		return "guid"
	default:
		return "assigned"
	}
}

func column(f *schema.Field, dataType string) descriptor.Column {
	col := keyColumn(f)

	if f.HasDefaultValue && f.DefaultValue != "" && metadata.HasLiteralDefault(dataType) {
		def := f.DefaultValue
		col.Default = &def
	}

	return col
}

func keyColumn(f *schema.Field) descriptor.Column {
	col := descriptor.Column{Name: f.DBName}

	if f.Size > 0 && f.IndirectFieldType.Kind() == reflect.String {
		col.Length = f.Size
	}

	return col
}

func (s *Source) property(f *schema.Field) (descriptor.Property, error) {
	if f.Serializer != nil {
		if elem, ok := structSliceElem(f.FieldType); ok {
			return jsonComponent(f.Name, elem)
		}
	}

	dataType, nullable, ok := primitive.DataTypeOf(f.FieldType)
	if !ok {
		return descriptor.Property{}, fmt.Errorf("unsupported field type %s", f.FieldType)
	}

	return descriptor.Property{
		Name:     f.Name,
		Kind:     descriptor.KindScalar,
		Type:     dataType,
		Nullable: nullable && !f.NotNull,
		Columns:  descriptor.Columns{column(f, dataType)},
	}, nil
}

func (s *Source) association(sch *schema.Schema, rel *schema.Relationship) (descriptor.Property, bool) {
	if rel.Polymorphic != nil {
		s.logger.Warn("skipping polymorphic relationship", "model", sch.Name, "field", rel.Name)
		return descriptor.Property{}, false
	}

	p := descriptor.Property{
		Name:        rel.Name,
		Kind:        descriptor.KindAssociation,
		Association: &descriptor.Association{Target: rel.FieldSchema.Name},
	}

	switch rel.Type {
	case schema.BelongsTo:
		for _, ref := range rel.References {
			if ref.ForeignKey != nil && ref.ForeignKey.Schema == sch {
				p.Columns = append(p.Columns, descriptor.Column{Name: ref.ForeignKey.DBName})
			}
		}

	case schema.HasOne:
		p.Association.OneToOne = true

	case schema.HasMany:
		p.Association.Collection = true

		for _, ref := range rel.References {
			if ref.ForeignKey != nil {
				p.Columns = append(p.Columns, descriptor.Column{Name: ref.ForeignKey.DBName})
			}
		}

	default:
		s.logger.Warn("skipping relationship without a mapped entity in between", "model", sch.Name, "field", rel.Name, "type", rel.Type)
		return descriptor.Property{}, false
	}

	return p, true
}

// componentPath returns the named (non-anonymous) struct fields leading
// to an embedded field, or nil for fields of the model itself.
func componentPath(model reflect.Type, bindNames []string) []string {
	if len(bindNames) < 2 {
		return nil
	}

	var path []string

	t := model
	for _, name := range bindNames[:len(bindNames)-1] {
		sf, ok := t.FieldByName(name)
		if !ok {
			return nil
		}

		if !sf.Anonymous {
			path = append(path, name)
		}

		t = sf.Type
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
	}

	return path
}

func (s *Source) addComponentField(
	td *descriptor.TypeDescriptor,
	components map[string]*descriptor.Component,
	model reflect.Type,
	path []string,
	f *schema.Field,
) {
	props := &td.Properties
	key := ""
	t := model

	for _, name := range path {
		sf, _ := t.FieldByName(name)
		t = sf.Type
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		key += "." + name

		comp, ok := components[key]
		if !ok {
			comp = &descriptor.Component{Name: t.Name(), Namespace: td.Namespace}
			components[key] = comp

			*props = append(*props, descriptor.Property{Name: name, Kind: descriptor.KindComponent, Component: comp})
		}

		props = &comp.Properties
	}

	p, err := s.property(f)
	if err != nil {
		s.logger.Warn("skipping component field", "model", td.Name, "field", strings.Join(f.BindNames, "."), "error", err)
		return
	}

	*props = append(*props, p)
}

func structSliceElem(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Slice {
		return nil, false
	}

	elem := t.Elem()
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	return elem, elem.Kind() == reflect.Struct
}

// jsonComponent describes a slice of structs stored as one JSON column.
func jsonComponent(name string, elem reflect.Type) (descriptor.Property, error) {
	comp := &descriptor.Component{Name: elem.Name(), Collection: true}

	for i := range elem.NumField() {
		sf := elem.Field(i)
		if !sf.IsExported() {
			continue
		}

		dataType, nullable, ok := primitive.DataTypeOf(sf.Type)
		if !ok {
			return descriptor.Property{}, fmt.Errorf("unsupported field type %s in %s", sf.Type, elem.Name())
		}

		comp.Properties = append(comp.Properties, descriptor.Property{
			Name:     sf.Name,
			Kind:     descriptor.KindScalar,
			Type:     dataType,
			Nullable: nullable,
		})
	}

	return descriptor.Property{Name: name, Kind: descriptor.KindComponent, Component: comp}, nil
}
