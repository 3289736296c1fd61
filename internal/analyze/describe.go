package analyze

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"gorm.io/gorm/schema"

	"entity-sync/internal/descriptor"
	"entity-sync/internal/metadata"
	"entity-sync/primitive"
)

// DescribeOption configures a Describer.
type DescribeOption func(*Describer)

// WithNamer replaces gorm's default naming strategy.
func WithNamer(namer schema.Namer) DescribeOption {
	return func(d *Describer) {
		d.namer = namer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DescribeOption {
	return func(d *Describer) {
		d.logger = logger
	}
}

// Describer derives mapping descriptors from the gorm-tagged structs of an
// analyzed package. It works from source: tag settings and gorm's naming
// conventions are honored, runtime hooks such as TableName methods are not.
type Describer struct {
	graph     *TypeGraph
	namespace string
	namer     schema.Namer
	logger    *slog.Logger

	models map[TypeID]bool
}

// NewDescriber creates a Describer that puts every type into namespace.
func NewDescriber(graph *TypeGraph, namespace string, opts ...DescribeOption) *Describer {
	d := &Describer{
		graph:     graph,
		namespace: namespace,
		namer:     schema.NamingStrategy{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

type model struct {
	info      *TypeInfo
	base      *TypeInfo
	td        *descriptor.TypeDescriptor
	keyFields []*FieldInfo
	keys      []keyField
	relations []relation
}

type keyField struct {
	prop     descriptor.Property
	settings map[string]string
}

type relation struct {
	index      int
	field      *FieldInfo
	settings   map[string]string
	target     *TypeInfo
	collection bool
}

// Describe builds descriptors for every model of a loaded package, in name
// order. A model is a struct with a primary key field, tagged primaryKey or
// named ID, or a struct embedding a model, which becomes its base type.
func (d *Describer) Describe(pkgPath string) (*descriptor.MappingSet, error) {
	pkg, ok := d.graph.Packages[pkgPath]
	if !ok {
		return nil, fmt.Errorf("package %s not loaded", pkgPath)
	}

	d.models = d.findModels(pkg)

	set := &descriptor.MappingSet{Namespace: d.namespace}

	for _, id := range pkg.Types {
		if !d.models[id] {
			continue
		}

		td, err := d.describe(d.graph.GetType(id))
		if err != nil {
			return nil, fmt.Errorf("failed to describe %s: %w", id, err)
		}

		set.Types = append(set.Types, td)
	}

	if len(set.Types) == 0 {
		return nil, fmt.Errorf("package %s declares no models", pkgPath)
	}

	descriptor.ApplyDefaults(set)

	return set, nil
}

func (d *Describer) findModels(pkg *PackageInfo) map[TypeID]bool {
	models := map[TypeID]bool{}

	for _, id := range pkg.Types {
		if t := d.graph.GetType(id); t.Kind == TypeKindStruct && len(primaryFields(t)) > 0 {
			models[id] = true
		}
	}

	for changed := true; changed; {
		changed = false

		for _, id := range pkg.Types {
			t := d.graph.GetType(id)
			if models[id] || t.Kind != TypeKindStruct {
				continue
			}

			if baseOf(t, models) != nil {
				models[id] = true
				changed = true
			}
		}
	}

	return models
}

func (d *Describer) describe(t *TypeInfo) (descriptor.TypeDescriptor, error) {
	td := descriptor.TypeDescriptor{Name: t.ID.Name, Namespace: d.namespace}

	m := &model{info: t, base: baseOf(t, d.models), td: &td}
	if m.base != nil {
		td.Base = m.base.ID.Name
	} else {
		m.keyFields = primaryFields(t)
	}

	if err := d.walk(m, t, "", &td.Properties, true); err != nil {
		return td, err
	}

	if m.base == nil {
		td.Identifier = d.identifier(m)
	}

	// resolved back to front so dropping one keeps the other indexes valid
	for _, r := range slices.Backward(m.relations) {
		p, ok := d.resolve(m, r)
		if !ok {
			d.logger.Warn("skipping relationship without a foreign key", "model", td.Name, "field", r.field.Name)
			td.Properties = slices.Delete(td.Properties, r.index, r.index+1)

			continue
		}

		td.Properties[r.index] = p
	}

	return td, nil
}

func (d *Describer) walk(m *model, t *TypeInfo, prefix string, props *[]descriptor.Property, top bool) error {
	for i := range t.Fields {
		f := &t.Fields[i]

		settings := f.GormSettings()
		if _, skip := settings["-"]; skip {
			continue
		}

		ft, pointer := deref(f.Type)

		_, serialized := settings["SERIALIZER"]
		_, embedded := settings["EMBEDDED"]

		switch {
		case f.Embedded && ft.Kind == TypeKindStruct:
			if ft == m.base {
				continue
			}

			if err := d.walk(m, ft, prefix+settings["EMBEDDEDPREFIX"], props, top); err != nil {
				return err
			}

		case serialized:
			elem, ok := structElem(ft)
			if !ok {
				d.logger.Warn("skipping serialized field", "model", m.td.Name, "field", f.Name, "type", f.Type.String())
				continue
			}

			p, err := d.jsonComponent(f.Name, elem)
			if err != nil {
				return err
			}

			*props = append(*props, p)

		case embedded && ft.Kind == TypeKindStruct:
			comp := &descriptor.Component{Name: ft.ID.Name, Namespace: d.namespace}
			if err := d.walk(m, ft, prefix+settings["EMBEDDEDPREFIX"], &comp.Properties, false); err != nil {
				return err
			}

			*props = append(*props, descriptor.Property{Name: f.Name, Kind: descriptor.KindComponent, Component: comp})

		default:
			if dataType, ok := scalarType(ft); ok {
				p := d.scalar(f, settings, prefix, dataType, pointer)

				if top && slices.Contains(m.keyFields, f) {
					m.keys = append(m.keys, keyField{prop: p, settings: settings})
					continue
				}

				if _, ok := settings["VERSION"]; ok && top {
					m.td.Version = f.Name
				}

				if _, ok := settings["NATURALKEY"]; ok && top {
					m.td.NaturalKey = append(m.td.NaturalKey, f.Name)
				}

				*props = append(*props, p)

				continue
			}

			target, collection, ok := d.relationTarget(ft)
			if !ok {
				d.logger.Warn("skipping field with unsupported type", "model", m.td.Name, "field", f.Name, "type", f.Type.String())
				continue
			}

			if _, ok := settings["MANY2MANY"]; ok || !top {
				d.logger.Warn("skipping relationship without a mapped entity in between", "model", m.td.Name, "field", f.Name)
				continue
			}

			m.relations = append(m.relations, relation{
				index:      len(*props),
				field:      f,
				settings:   settings,
				target:     target,
				collection: collection,
			})
			*props = append(*props, descriptor.Property{Name: f.Name, Kind: descriptor.KindAssociation})
		}
	}

	return nil
}

func (d *Describer) scalar(f *FieldInfo, settings map[string]string, prefix, dataType string, pointer bool) descriptor.Property {
	col := descriptor.Column{Name: d.columnName(f, settings, prefix)}

	if size, err := strconv.Atoi(settings["SIZE"]); err == nil && size > 0 && dataType == "String" {
		col.Length = size
	}

	if def, ok := settings["DEFAULT"]; ok && def != "" && metadata.HasLiteralDefault(dataType) {
		if dataType == "String" {
			def = strings.Trim(strings.Trim(def, "'"), `"`)
		}

		col.Default = &def
	}

	_, notNull := settings["NOT NULL"]
	if _, ok := settings["NOTNULL"]; ok {
		notNull = true
	}

	return descriptor.Property{
		Name:     f.Name,
		Kind:     descriptor.KindScalar,
		Type:     dataType,
		Nullable: (pointer || dataType == "Binary") && !notNull,
		Columns:  descriptor.Columns{col},
	}
}

func (d *Describer) columnName(f *FieldInfo, settings map[string]string, prefix string) string {
	name := settings["COLUMN"]
	if name == "" {
		name = d.namer.ColumnName("", f.Name)
	}

	return prefix + name
}

func (d *Describer) identifier(m *model) *descriptor.Identifier {
	switch len(m.keys) {
	case 0:
		d.logger.Warn("model has no primary key", "model", m.td.Name)
		return nil

	case 1:
		k := m.keys[0]

		return &descriptor.Identifier{
			Name:      k.prop.Name,
			Type:      k.prop.Type,
			Columns:   keyColumns(k.prop),
			Generator: generator(k.settings, k.prop.Type),
		}

	default:
		id := &descriptor.Identifier{Generator: "assigned"}

		for _, k := range m.keys {
			id.Members = append(id.Members, descriptor.Property{
				Name:    k.prop.Name,
				Kind:    descriptor.KindScalar,
				Type:    k.prop.Type,
				Columns: keyColumns(k.prop),
			})
		}

		return id
	}
}

// keyColumns drops the default: a key default is never a client value.
func keyColumns(p descriptor.Property) descriptor.Columns {
	cols := slices.Clone(p.Columns)
	for i := range cols {
		cols[i].Default = nil
	}

	return cols
}

// generator follows gorm: a single integer key auto-increments unless
// tagged autoIncrement:false.
func generator(settings map[string]string, dataType string) string {
	if g := settings["GENERATOR"]; g != "" && g != "GENERATOR" {
		return g
	}

	autoIncrement, tagged := settings["AUTOINCREMENT"]

	switch {
	case tagged:
		if strings.EqualFold(autoIncrement, "false") {
			return "assigned"
		}

		return "identity"
	case dataType == "Byte" || dataType == "Int16" || dataType == "Int32" || dataType == "Int64":
		return "identity"
	case dataType == "Guid" && settings["DEFAULT"] != "":
		return "guid"
	default:
		return "assigned"
	}
}

func (d *Describer) relationTarget(t *TypeInfo) (target *TypeInfo, collection, ok bool) {
	if t.Kind == TypeKindSlice {
		elem, _ := deref(t.ElemType)
		return elem, true, d.models[elem.ID]
	}

	return t, false, d.models[t.ID]
}

// resolve applies gorm's relationship guessing: has-one is tried before
// belongs-to, except for self references.
func (d *Describer) resolve(m *model, r relation) (descriptor.Property, bool) {
	p := descriptor.Property{
		Name:        r.field.Name,
		Kind:        descriptor.KindAssociation,
		Association: &descriptor.Association{Target: r.target.ID.Name, Collection: r.collection},
	}

	foreignKey := r.settings["FOREIGNKEY"]
	owned := candidates(foreignKey, m.info.ID.Name, d.keyNames(m.info))

	if r.collection {
		col, ok := d.lookupColumn(r.target, owned)
		if ok {
			p.Columns = descriptor.Columns{{Name: col}}
		}

		return p, ok
	}

	belongs := func() bool {
		col, ok := d.lookupColumn(m.info, candidates(foreignKey, r.field.Name, d.keyNames(r.target)))
		if ok {
			p.Columns = descriptor.Columns{{Name: col}}
		}

		return ok
	}

	has := func() bool {
		_, ok := d.lookupColumn(r.target, owned)
		p.Association.OneToOne = ok

		return ok
	}

	if r.target == m.info {
		return p, belongs() || has()
	}

	return p, has() || belongs()
}

func candidates(foreignKey, prefix string, keys []string) []string {
	if foreignKey != "" {
		return []string{foreignKey}
	}

	out := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, prefix+k)
	}

	if len(keys) == 1 {
		out = append(out, prefix+"ID")
	}

	return out
}

func (d *Describer) lookupColumn(t *TypeInfo, names []string) (string, bool) {
	for _, name := range names {
		if col, ok := d.findColumn(t, name, ""); ok {
			return col, true
		}
	}

	return "", false
}

// findColumn finds a scalar field by name, anonymous embeds included.
func (d *Describer) findColumn(t *TypeInfo, name, prefix string) (string, bool) {
	for i := range t.Fields {
		f := &t.Fields[i]
		settings := f.GormSettings()
		ft, _ := deref(f.Type)

		if f.Embedded && ft.Kind == TypeKindStruct {
			if col, ok := d.findColumn(ft, name, prefix+settings["EMBEDDEDPREFIX"]); ok {
				return col, true
			}

			continue
		}

		if f.Name != name {
			continue
		}

		if _, ok := scalarType(ft); ok {
			return d.columnName(f, settings, prefix), true
		}
	}

	return "", false
}

// keyNames returns the key field names of a model, inherited ones included.
func (d *Describer) keyNames(t *TypeInfo) []string {
	for t != nil {
		if fields := primaryFields(t); len(fields) > 0 {
			names := make([]string, len(fields))
			for i, f := range fields {
				names[i] = f.Name
			}

			return names
		}

		t = baseOf(t, d.models)
	}

	return nil
}

func (d *Describer) jsonComponent(name string, elem *TypeInfo) (descriptor.Property, error) {
	comp := &descriptor.Component{Name: elem.ID.Name, Namespace: d.namespace, Collection: true}

	for i := range elem.Fields {
		f := &elem.Fields[i]
		ft, pointer := deref(f.Type)

		dataType, ok := scalarType(ft)
		if !ok {
			return descriptor.Property{}, fmt.Errorf("unsupported field type %s in %s", f.Type, elem.ID.Name)
		}

		comp.Properties = append(comp.Properties, descriptor.Property{
			Name:     f.Name,
			Kind:     descriptor.KindScalar,
			Type:     dataType,
			Nullable: pointer || dataType == "Binary",
		})
	}

	return descriptor.Property{Name: name, Kind: descriptor.KindComponent, Component: comp}, nil
}

// primaryFields returns the fields tagged primaryKey or, failing that, a
// field named ID. Anonymous structs from other packages, such as
// gorm.Model, are searched as well.
func primaryFields(t *TypeInfo) []*FieldInfo {
	var tagged, named []*FieldInfo

	var walk func(s *TypeInfo)
	walk = func(s *TypeInfo) {
		for i := range s.Fields {
			f := &s.Fields[i]

			settings := f.GormSettings()
			if _, skip := settings["-"]; skip {
				continue
			}

			ft, _ := deref(f.Type)
			if f.Embedded && ft.Kind == TypeKindStruct {
				if ft.ID.PkgPath != t.ID.PkgPath {
					walk(ft)
				}

				continue
			}

			_, primary := settings["PRIMARYKEY"]
			if _, ok := settings["PRIMARY_KEY"]; ok {
				primary = true
			}

			switch {
			case primary:
				tagged = append(tagged, f)
			case f.Name == "ID":
				named = append(named, f)
			}
		}
	}

	walk(t)

	if len(tagged) > 0 {
		return tagged
	}

	return named
}

// baseOf returns the first anonymously embedded model.
func baseOf(t *TypeInfo, models map[TypeID]bool) *TypeInfo {
	for i := range t.Fields {
		f := &t.Fields[i]
		if !f.Embedded {
			continue
		}

		if ft, _ := deref(f.Type); ft.IsNamed() && models[ft.ID] {
			return ft
		}
	}

	return nil
}

func deref(t *TypeInfo) (*TypeInfo, bool) {
	pointer := false
	for t.Kind == TypeKindPointer && t.ElemType != nil {
		t = t.ElemType
		pointer = true
	}

	return t, pointer
}

func structElem(t *TypeInfo) (*TypeInfo, bool) {
	if t.Kind != TypeKindSlice {
		return nil, false
	}

	elem, _ := deref(t.ElemType)

	return elem, elem.Kind == TypeKindStruct
}

// scalarType names the data type of a field type. Named types known by
// name come first, so time.Time is a scalar and not a struct; enums take
// the data type of their underlying type.
func scalarType(t *TypeInfo) (string, bool) {
	if t.IsNamed() {
		if dt := primitive.FromTypeName(t.ID.String()).DataType(); dt != "" {
			return dt, true
		}
	}

	switch t.Kind {
	case TypeKindBasic, TypeKindSlice:
		dt := primitive.FromTypeName(t.GoType.String()).DataType()
		return dt, dt != ""
	case TypeKindAlias:
		if t.Underlying != nil {
			return scalarType(t.Underlying)
		}
	}

	return "", false
}
