package save

import (
	"log/slog"

	"entity-sync/internal/common"
	"entity-sync/internal/entity"
	"entity-sync/internal/metadata"
	"entity-sync/internal/naming"
)

// Option configures the components of this package.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(opts []Option) config {
	c := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// structural is the read side shared by entities and complex objects.
type structural interface {
	Get(name string) any
	Complex(name string) *entity.ComplexObject
	ComplexList(name string) []*entity.ComplexObject
	OriginalValues() map[string]any
}

// Serializer builds save bundles.
type Serializer struct {
	catalog *metadata.Catalog
	conv    naming.Convention
	logger  *slog.Logger
}

// NewSerializer creates a Serializer. A nil convention keeps names unchanged.
func NewSerializer(catalog *metadata.Catalog, conv naming.Convention, opts ...Option) *Serializer {
	if conv == nil {
		conv = naming.None
	}

	cfg := newConfig(opts)

	return &Serializer{catalog: catalog, conv: conv, logger: cfg.logger}
}

// Serialize builds the bundle for the given entities in order. Every entity
// must be attached and typed by this serializer's catalog.
func (s *Serializer) Serialize(entities []*entity.Entity, options Options) (*Bundle, error) {
	b := &Bundle{Entities: make([]EntityNode, 0, len(entities)), SaveOptions: options}

	for _, e := range entities {
		node, err := s.entityNode(e)
		if err != nil {
			return nil, err
		}

		b.Entities = append(b.Entities, node)
	}

	s.logger.Debug("built save bundle", "entities", len(b.Entities), "resource", options.resourceName())

	return b, nil
}

func (s *Serializer) entityNode(e *entity.Entity) (EntityNode, error) {
	if e == nil {
		return EntityNode{}, &SerializationError{Err: ErrDetached}
	}

	st := e.Type()

	aspect := e.Aspect()
	if aspect == nil || aspect.State == entity.Detached {
		return EntityNode{}, &SerializationError{TypeName: st.ShortName, Err: ErrDetached}
	}

	if known, ok := s.catalog.StructuralType(st.QualifiedName()); !ok || known != st {
		return EntityNode{}, &SerializationError{TypeName: st.ShortName, Err: ErrUnknownEntityType}
	}

	node := EntityNode{
		Fields: s.fields(st, e),
		Aspect: AspectNode{
			EntityTypeName:      st.QualifiedName(),
			EntityState:         aspect.State,
			DefaultResourceName: st.DefaultResourceName,
			OriginalValuesMap:   s.originalValues(st, e),
		},
	}

	if st.AutoGeneratedKeyType != metadata.KeyTypeNone {
		if keys := st.KeyProperties(); len(keys) > 0 {
			node.Aspect.AutoGeneratedKey = &AutoGeneratedKey{
				PropertyName:         keys[0].NameOnServer,
				AutoGeneratedKeyType: st.AutoGeneratedKeyType,
			}
		}
	}

	return node, nil
}

// fields renders property values by server name. Scalar values equal to
// the declared default are left out.
func (s *Serializer) fields(st *metadata.StructuralType, obj structural) map[string]any {
	props := st.AllDataProperties()
	out := make(map[string]any, len(props))

	for _, dp := range props {
		name := s.conv.ServerToClient(dp.NameOnServer)

		if !dp.IsComplex() {
			v := obj.Get(name)
			if common.ValuesEqual(v, dp.DefaultValue) {
				continue
			}

			out[dp.NameOnServer] = v

			continue
		}

		ct, ok := s.catalog.StructuralType(dp.ComplexTypeName)
		if !ok {
			continue
		}

		if dp.IsScalar {
			if co := obj.Complex(name); co != nil {
				out[dp.NameOnServer] = s.fields(ct, co)
			} else {
				out[dp.NameOnServer] = nil
			}

			continue
		}

		list := obj.ComplexList(name)
		items := make([]any, len(list))

		for i, co := range list {
			items[i] = s.fields(ct, co)
		}

		out[dp.NameOnServer] = items
	}

	return out
}

// originalValues renders the tracked originals by server name. Every
// complex property contributes, changed or not: a nested map for a scalar
// one and one map per element for a collection.
func (s *Serializer) originalValues(st *metadata.StructuralType, obj structural) map[string]any {
	originals := obj.OriginalValues()
	out := make(map[string]any, len(originals))

	for name, v := range originals {
		out[s.conv.ClientToServer(name)] = v
	}

	for _, dp := range st.ComplexProperties() {
		ct, ok := s.catalog.StructuralType(dp.ComplexTypeName)
		if !ok {
			continue
		}

		name := s.conv.ServerToClient(dp.NameOnServer)

		if dp.IsScalar {
			co := obj.Complex(name)
			if co == nil {
				continue
			}

			out[dp.NameOnServer] = s.originalValues(ct, co)

			continue
		}

		list := obj.ComplexList(name)
		items := make([]any, len(list))

		for i, co := range list {
			items[i] = s.originalValues(ct, co)
		}

		out[dp.NameOnServer] = items
	}

	return out
}
