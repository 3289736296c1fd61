package metadata

import (
	"fmt"
	"log/slog"
	"maps"
	"strconv"

	"entity-sync/internal/descriptor"
	"entity-sync/internal/diagnostic"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// Builder turns descriptor sets into catalogs.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build is a shortcut for NewBuilder(opts...).Build(set).
func Build(set *descriptor.MappingSet, opts ...Option) (*Catalog, error) {
	return NewBuilder(opts...).Build(set)
}

// Build validates the descriptors and builds the catalog.
// All failures are reported as *MappingError.
func (b *Builder) Build(set *descriptor.MappingSet) (*Catalog, error) {
	diags := descriptor.Validate(set)
	for _, w := range diags.Warnings {
		b.logger.Warn("descriptor warning", "code", w.Code, "type", w.TypeName, "property", w.Property, "message", w.Message)
	}

	if diags.HasErrors() {
		first := diags.Errors[0]

		return nil, mappingErr(first.TypeName, first.Property,
			fmt.Errorf("%w: %s", diagnosticSentinel(first), diags.Error()))
	}

	s := &buildState{
		set:          set,
		logger:       b.logger,
		complexNames: map[string]*StructuralType{},
		entities:     map[string]*StructuralType{},
		indexes:      map[string]map[string]*DataProperty{},
		resources:    map[string]string{},
		fkMap:        map[string][]string{},
	}

	order, err := s.inheritanceOrder()
	if err != nil {
		return nil, err
	}

	for _, i := range order {
		if err := s.addEntity(&set.Types[i]); err != nil {
			return nil, err
		}
	}

	types := make([]*StructuralType, 0, len(s.complexTypes)+len(set.Types))
	types = append(types, s.complexTypes...)

	for i := range set.Types {
		qn := set.Types[i].QualifiedName()
		if _, clash := s.complexNames[qn]; clash {
			return nil, mappingErr(set.Types[i].Name, "", fmt.Errorf("%w: %s is also a complex type", ErrDuplicateType, qn))
		}

		types = append(types, s.entities[qn])
	}

	b.logger.Debug("catalog built",
		"entity_types", len(set.Types),
		"complex_types", len(s.complexTypes),
		"foreign_keys", len(s.fkMap))

	return newCatalog(types, s.resources, s.fkMap), nil
}

func diagnosticSentinel(d diagnostic.Diagnostic) error {
	switch d.Code {
	case "duplicate_type":
		return ErrDuplicateType
	case "unknown_base_type", "unknown_target":
		return ErrUnknownType
	case "missing_fk_columns":
		return ErrUnresolvedForeignKey
	default:
		return ErrInvalidDescriptor
	}
}

type buildState struct {
	set    *descriptor.MappingSet
	logger *slog.Logger

	// complexTypes is kept in prepend order.
	complexTypes []*StructuralType
	complexNames map[string]*StructuralType

	entities map[string]*StructuralType

	// indexes holds each entity's column signature index, so subtypes can
	// resolve foreign keys declared on their ancestors.
	indexes map[string]map[string]*DataProperty

	resources map[string]string
	fkMap     map[string][]string
}

// inheritanceOrder returns type indices with every base type before its subtypes.
func (s *buildState) inheritanceOrder() ([]int, error) {
	pos := make(map[string]int, len(s.set.Types))
	for i := range s.set.Types {
		pos[s.set.Types[i].QualifiedName()] = i
	}

	order, err := topoSort(len(s.set.Types), func(i int) []int {
		td := &s.set.Types[i]
		if td.Base == "" {
			return nil
		}

		base, _ := s.set.Lookup(td.Base)

		return []int{pos[base.QualifiedName()]}
	})
	if err != nil {
		return nil, mappingErr("", "", fmt.Errorf("%w: %w", ErrInheritanceCycle, err))
	}

	return order, nil
}

func (s *buildState) addEntity(td *descriptor.TypeDescriptor) error {
	qn := td.QualifiedName()
	st := &StructuralType{ShortName: td.Name, Namespace: td.Namespace}
	index := map[string]*DataProperty{}

	if td.Base != "" {
		base, _ := s.set.Lookup(td.Base)
		st.BaseTypeName = base.QualifiedName()
		maps.Copy(index, s.indexes[st.BaseTypeName])
	}

	kt, err := s.keyType(td)
	if err != nil {
		return err
	}

	st.AutoGeneratedKeyType = kt
	st.DefaultResourceName = Pluralize(td.Name)
	s.resources[st.DefaultResourceName] = qn

	// Pass 1: scalars and components.
	for i := range td.Properties {
		p := &td.Properties[i]
		if !td.Owns(p.DeclaredBy) || p.IsAssociation() {
			continue
		}

		if p.IsComponent() {
			st.DataProperties = append(st.DataProperties, s.componentProperty(p))
			continue
		}

		dp := s.dataProperty(td.Name, p.Name, p.Type, p.Nullable, p.Columns.Single(),
			td.NaturalKey.Contains(p.Name), p.Name == td.Version)
		st.DataProperties = append(st.DataProperties, dp)
		index[ColumnSignature(p.Columns.Names())] = dp
	}

	keyAssociations := s.addIdentifier(td, st, index)

	// Pass 2: associations, key members first.
	for _, m := range keyAssociations {
		np, err := s.navigation(td, m, index, true)
		if err != nil {
			return err
		}

		st.NavigationProperties = append(st.NavigationProperties, np)
	}

	for i := range td.Properties {
		p := &td.Properties[i]
		if !td.Owns(p.DeclaredBy) || !p.IsAssociation() {
			continue
		}

		np, err := s.navigation(td, p, index, false)
		if err != nil {
			return err
		}

		st.NavigationProperties = append(st.NavigationProperties, np)
	}

	s.entities[qn] = st
	s.indexes[qn] = index

	return nil
}

// addIdentifier puts the key data properties at the head of the list and
// returns the association members of a composite key for pass 2.
func (s *buildState) addIdentifier(
	td *descriptor.TypeDescriptor,
	st *StructuralType,
	index map[string]*DataProperty,
) []*descriptor.Property {
	id := td.Identifier
	if id == nil || !td.Owns(id.DeclaredBy) {
		return nil
	}

	var (
		head         []*DataProperty
		associations []*descriptor.Property
	)

	if id.IsComposite() {
		for i := range id.Members {
			m := &id.Members[i]
			if m.IsAssociation() {
				associations = append(associations, m)
				continue
			}

			dp := s.dataProperty(td.Name, m.Name, m.Type, m.Nullable, m.Columns.Single(), true, false)
			head = append(head, dp)
			index[ColumnSignature(m.Columns.Names())] = dp
		}
	} else {
		dp := s.dataProperty(td.Name, id.Name, id.Type, false, id.Columns.Single(), true, false)
		head = append(head, dp)
		index[ColumnSignature(id.Columns.Names())] = dp
	}

	st.DataProperties = append(head, st.DataProperties...)

	return associations
}

func (s *buildState) navigation(
	td *descriptor.TypeDescriptor,
	p *descriptor.Property,
	index map[string]*DataProperty,
	isKey bool,
) (*NavigationProperty, error) {
	assoc := p.Association

	target, ok := s.set.Lookup(assoc.Target)
	if !ok {
		return nil, mappingErr(td.Name, p.Name, fmt.Errorf("%w: %s", ErrUnknownType, assoc.Target))
	}

	np := &NavigationProperty{
		NameOnServer:    p.Name,
		EntityTypeName:  target.QualifiedName(),
		IsScalar:        !assoc.Collection,
		AssociationName: AssociationName(td.Name, target.Name, assoc.OneToOne),
	}

	if assoc.Collection {
		return np, nil
	}

	columns := p.Columns.Names()
	if len(columns) == 0 && assoc.OneToOne {
		columns = s.keyColumns(td)
	}

	fks, err := resolveForeignKey(index, columns)
	if err != nil {
		return nil, mappingErr(td.Name, p.Name, err)
	}

	names := make([]string, len(fks))
	for i, dp := range fks {
		names[i] = dp.NameOnServer
		if isKey {
			dp.IsPartOfKey = true
		}
	}

	np.ForeignKeyNamesOnServer = names
	s.fkMap[td.Name+"."+p.Name] = names

	return np, nil
}

// resolveForeignKey finds the data properties mapped to the given columns.
// The whole signature is tried first; when no single property owns it,
// each column is resolved on its own.
func resolveForeignKey(index map[string]*DataProperty, columns []string) ([]*DataProperty, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no foreign key columns", ErrUnresolvedForeignKey)
	}

	if dp, ok := index[ColumnSignature(columns)]; ok {
		return []*DataProperty{dp}, nil
	}

	if len(columns) == 1 {
		return nil, fmt.Errorf("%w: column %s", ErrUnresolvedForeignKey, columns[0])
	}

	out := make([]*DataProperty, 0, len(columns))

	for _, c := range columns {
		dp, ok := index[ColumnSignature([]string{c})]
		if !ok {
			return nil, fmt.Errorf("%w: column %s of %v", ErrUnresolvedForeignKey, c, columns)
		}

		out = append(out, dp)
	}

	return out, nil
}

// keyColumns returns the key columns of a type, inherited ones included.
func (s *buildState) keyColumns(td *descriptor.TypeDescriptor) []string {
	for t := td; t != nil; {
		if t.Identifier != nil {
			return t.Identifier.ColumnNames()
		}

		if t.Base == "" {
			break
		}

		t, _ = s.set.Lookup(t.Base)
	}

	return nil
}

// keyType derives the key generation type, walking up to the type that
// declares the identifier.
func (s *buildState) keyType(td *descriptor.TypeDescriptor) (AutoGeneratedKeyType, error) {
	for t := td; t != nil; {
		if t.Identifier != nil {
			kt, err := KeyTypeForStrategy(t.Identifier.Generator)
			if err != nil {
				return KeyTypeNone, mappingErr(t.Name, t.Identifier.Name, err)
			}

			return kt, nil
		}

		if t.Base == "" {
			break
		}

		t, _ = s.set.Lookup(t.Base)
	}

	return KeyTypeNone, nil
}

func (s *buildState) componentProperty(p *descriptor.Property) *DataProperty {
	return &DataProperty{
		NameOnServer:    p.Name,
		ComplexTypeName: s.addComponent(p.Component),
		IsScalar:        !p.Component.Collection,
		IsNullable:      p.Nullable,
	}
}

// addComponent registers a complex type once per qualified name and
// returns that name.
func (s *buildState) addComponent(c *descriptor.Component) string {
	qn := c.QualifiedName()
	if _, ok := s.complexNames[qn]; ok {
		return qn
	}

	st := &StructuralType{ShortName: c.Name, Namespace: c.Namespace, IsComplexType: true}
	s.complexNames[qn] = st
	s.complexTypes = append([]*StructuralType{st}, s.complexTypes...)

	for i := range c.Properties {
		p := &c.Properties[i]
		if p.IsComponent() {
			st.DataProperties = append(st.DataProperties, s.componentProperty(p))
			continue
		}

		st.DataProperties = append(st.DataProperties,
			s.dataProperty(c.Name, p.Name, p.Type, p.Nullable, p.Columns.Single(), false, false))
	}

	return qn
}

func (s *buildState) dataProperty(
	typeName, name, dataType string,
	nullable bool,
	col *descriptor.Column,
	isKey, isVersion bool,
) *DataProperty {
	dt := NormalizeDataType(dataType)
	dp := &DataProperty{
		NameOnServer:     name,
		DataType:         dt,
		IsScalar:         true,
		IsNullable:       nullable,
		IsPartOfKey:      isKey,
		ConcurrencyToken: isVersion,
	}

	if col != nil && col.Default != nil {
		v, err := CoerceValue(dt, *col.Default)
		if err != nil {
			s.logger.Warn("keeping raw column default", "type", typeName, "property", name, "error", err)

			v = *col.Default
		}

		dp.DefaultValue = v
	}

	if !nullable {
		dp.Validators = append(dp.Validators, Validator{Name: "required"})
	}

	if col != nil && col.Length > 0 {
		length := col.Length
		dp.MaxLength = &length
		dp.Validators = append(dp.Validators, Validator{
			Name:   "maxLength",
			Params: map[string]string{"maxLength": strconv.Itoa(length)},
		})
	}

	if vt, ok := ValidationType(dt); ok {
		dp.Validators = append(dp.Validators, Validator{Name: vt})
	}

	return dp
}
