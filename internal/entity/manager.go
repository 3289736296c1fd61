package entity

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"entity-sync/internal/common"
	"entity-sync/internal/metadata"
	"entity-sync/internal/naming"
)

// Change describes a property or state change of a tracked entity.
type Change struct {
	Entity *Entity

	// Complex is set when the change happened inside a complex value.
	Complex *ComplexObject

	// Property is empty for state changes.
	Property string

	OldValue any
	NewValue any

	OldState State
	NewState State
}

// Option configures a Manager.
type Option func(*Manager)

// WithConvention sets the naming convention between client property names
// and server names. The default keeps names unchanged.
func WithConvention(conv naming.Convention) Option {
	return func(m *Manager) {
		m.conv = conv
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Manager tracks the entities of one client session.
type Manager struct {
	catalog *metadata.Catalog
	conv    naming.Convention
	logger  *slog.Logger

	entities []*Entity
	index    map[string]*Entity

	tempSeq    int64
	suppressed int

	subscribers map[int]func(Change)
	nextSub     int
}

// NewManager creates a Manager for the catalog's entity types.
func NewManager(catalog *metadata.Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog:     catalog,
		conv:        naming.None,
		logger:      slog.Default(),
		index:       map[string]*Entity{},
		subscribers: map[int]func(Change){},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Catalog returns the catalog the manager works against.
func (m *Manager) Catalog() *metadata.Catalog {
	return m.catalog
}

// Convention returns the client/server naming convention.
func (m *Manager) Convention() naming.Convention {
	return m.conv
}

// CreateEntity builds a detached entity of the named type. Properties
// start at their catalog defaults; complex values are created empty.
// values are keyed by client name and may hold *ComplexObject or
// map[string]any for complex properties.
func (m *Manager) CreateEntity(typeName string, values map[string]any) (*Entity, error) {
	st, ok := m.catalog.EntityType(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	e := &Entity{typ: st, conv: m.conv, values: map[string]any{}}

	for _, dp := range st.AllDataProperties() {
		name := m.conv.ServerToClient(dp.NameOnServer)

		v, err := m.initialValue(dp, values[name])
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", st.ShortName, err)
		}

		e.values[name] = v
	}

	for name, v := range values {
		if _, ok := e.values[name]; !ok {
			e.values[name] = v
		}
	}

	for _, v := range e.values {
		adopt(e, v)
	}

	return e, nil
}

// CreateComplexObject builds an unowned complex value of the named type.
func (m *Manager) CreateComplexObject(typeName string, values map[string]any) (*ComplexObject, error) {
	st, ok := m.catalog.ResolveTypeName(typeName)
	if !ok || !st.IsComplexType {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	return m.newComplex(st, values)
}

func (m *Manager) newComplex(st *metadata.StructuralType, values map[string]any) (*ComplexObject, error) {
	co := &ComplexObject{typ: st, conv: m.conv, values: map[string]any{}, originals: map[string]any{}}

	for _, dp := range st.AllDataProperties() {
		name := m.conv.ServerToClient(dp.NameOnServer)

		v, err := m.initialValue(dp, values[name])
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", st.ShortName, err)
		}

		co.values[name] = v
	}

	return co, nil
}

func (m *Manager) initialValue(dp *metadata.DataProperty, given any) (any, error) {
	if !dp.IsComplex() {
		if given != nil {
			return given, nil
		}

		return dp.DefaultValue, nil
	}

	ct, ok := m.catalog.StructuralType(dp.ComplexTypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, dp.ComplexTypeName)
	}

	if dp.IsScalar {
		switch v := given.(type) {
		case *ComplexObject:
			return v, nil
		case map[string]any:
			return m.newComplex(ct, v)
		case nil:
			return m.newComplex(ct, nil)
		default:
			return nil, fmt.Errorf("%w: %s", ErrNotComplexObject, dp.NameOnServer)
		}
	}

	switch v := given.(type) {
	case []*ComplexObject:
		return v, nil
	case []map[string]any:
		list := make([]*ComplexObject, 0, len(v))
		for _, item := range v {
			co, err := m.newComplex(ct, item)
			if err != nil {
				return nil, err
			}

			list = append(list, co)
		}

		return list, nil
	case nil:
		return []*ComplexObject{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotComplexObject, dp.NameOnServer)
	}
}

// AddEntity attaches a new entity in the Added state. Entities whose type
// has a store-generated key get a temporary key when theirs is unset.
func (m *Manager) AddEntity(e *Entity) error {
	if e.aspect != nil && e.aspect.State != Detached {
		return ErrAlreadyAttached
	}

	if e.typ.AutoGeneratedKeyType != metadata.KeyTypeNone {
		m.assignTempKey(e)
	}

	return m.attach(e, Added)
}

// AttachEntity attaches an entity that already exists on the server.
func (m *Manager) AttachEntity(e *Entity, state State) error {
	if state == Detached {
		return fmt.Errorf("%w: cannot attach as %s", ErrInvalidState, state)
	}

	if e.aspect != nil && e.aspect.State != Detached {
		return ErrAlreadyAttached
	}

	return m.attach(e, state)
}

func (m *Manager) attach(e *Entity, state State) error {
	key := e.Key()
	if !key.IsComplete() {
		return fmt.Errorf("%w: %s", ErrIncompleteKey, key)
	}

	id := m.indexID(key)
	if _, exists := m.index[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}

	e.conv = m.conv
	e.aspect = &Aspect{State: state, OriginalValues: map[string]any{}, manager: m}
	m.index[id] = e
	m.entities = append(m.entities, e)

	m.notify(Change{Entity: e, OldState: Detached, NewState: state})

	return nil
}

// DetachEntity stops tracking an entity.
func (m *Manager) DetachEntity(e *Entity) error {
	if !m.owns(e) {
		return ErrNotAttached
	}

	old := e.aspect.State
	delete(m.index, m.indexID(e.Key()))

	for i, tracked := range m.entities {
		if tracked == e {
			m.entities = append(m.entities[:i], m.entities[i+1:]...)
			break
		}
	}

	e.aspect.State = Detached
	e.aspect.manager = nil

	m.notify(Change{Entity: e, OldState: old, NewState: Detached})

	return nil
}

// DeleteEntity marks an entity for deletion. Added entities are simply detached.
func (m *Manager) DeleteEntity(e *Entity) error {
	if !m.owns(e) {
		return ErrNotAttached
	}

	if e.aspect.State == Added {
		return m.DetachEntity(e)
	}

	m.setState(e, Deleted)

	return nil
}

// FindEntityByKey looks up an attached entity. Subtypes share the key
// space of their root type.
func (m *Manager) FindEntityByKey(key Key) (*Entity, bool) {
	e, ok := m.index[m.indexID(key)]
	return e, ok
}

// Entities returns all attached entities in attach order.
func (m *Manager) Entities() []*Entity {
	out := make([]*Entity, len(m.entities))
	copy(out, m.entities)

	return out
}

// Changes returns the entities with pending changes in attach order.
func (m *Manager) Changes() []*Entity {
	var out []*Entity

	for _, e := range m.entities {
		if e.aspect.State.IsChanged() {
			out = append(out, e)
		}
	}

	return out
}

// HasChanges reports whether any entity has pending changes.
func (m *Manager) HasChanges() bool {
	for _, e := range m.entities {
		if e.aspect.State.IsChanged() {
			return true
		}
	}

	return false
}

// Suppress turns off change notifications until the returned release
// function runs. Calls nest; release is safe to call more than once.
func (m *Manager) Suppress() (release func()) {
	m.suppressed++

	var once sync.Once

	return func() {
		once.Do(func() {
			m.suppressed--
		})
	}
}

// Suppressed reports whether notifications are currently suppressed.
func (m *Manager) Suppressed() bool {
	return m.suppressed > 0
}

// Subscribe registers a change listener and returns its unsubscribe function.
func (m *Manager) Subscribe(fn func(Change)) (unsubscribe func()) {
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn

	return func() {
		delete(m.subscribers, id)
	}
}

// UpdateValues writes property values without recording originals or
// changing state. Key changes re-index the entity.
func (m *Manager) UpdateValues(e *Entity, values map[string]any) error {
	if !m.owns(e) {
		return ErrNotAttached
	}

	oldID := m.indexID(e.Key())
	old := make(map[string]any, len(values))

	for name, v := range values {
		old[name] = e.values[name]
		e.values[name] = v
		adopt(e, v)
	}

	newID := m.indexID(e.Key())
	if newID != oldID {
		if other, exists := m.index[newID]; exists && other != e {
			clash := e.Key()

			for name, v := range old {
				e.values[name] = v
			}

			return fmt.Errorf("%w: %s", ErrDuplicateKey, clash)
		}

		delete(m.index, oldID)
		m.index[newID] = e
	}

	for name, v := range values {
		m.notify(Change{Entity: e, Property: name, OldValue: old[name], NewValue: v})
	}

	return nil
}

// AcceptChanges makes the current values the new originals. Deleted
// entities are detached.
func (m *Manager) AcceptChanges(e *Entity) {
	if !m.owns(e) {
		return
	}

	if e.aspect.State == Deleted {
		_ = m.DetachEntity(e)
		return
	}

	clear(e.aspect.OriginalValues)
	e.eachComplex((*ComplexObject).acceptChanges)
	m.setState(e, Unchanged)
}

// AcceptAllChanges accepts changes on every tracked entity.
func (m *Manager) AcceptAllChanges() {
	for _, e := range m.Entities() {
		m.AcceptChanges(e)
	}
}

// RejectChanges restores original values. Added entities are detached.
func (m *Manager) RejectChanges(e *Entity) {
	if !m.owns(e) {
		return
	}

	if e.aspect.State == Added {
		_ = m.DetachEntity(e)
		return
	}

	oldID := m.indexID(e.Key())

	for name, v := range e.aspect.OriginalValues {
		e.values[name] = v
	}

	clear(e.aspect.OriginalValues)
	e.eachComplex((*ComplexObject).rejectChanges)

	if newID := m.indexID(e.Key()); newID != oldID {
		delete(m.index, oldID)
		m.index[newID] = e
	}

	m.setState(e, Unchanged)
}

func (m *Manager) owns(e *Entity) bool {
	return e != nil && e.aspect != nil && e.aspect.manager == m && e.aspect.State != Detached
}

func (m *Manager) setState(e *Entity, state State) {
	old := e.aspect.State
	if old == state {
		return
	}

	e.aspect.State = state
	m.notify(Change{Entity: e, OldState: old, NewState: state})
}

func (m *Manager) stateChanged(e *Entity, old State) {
	m.notify(Change{Entity: e, OldState: old, NewState: e.aspect.State})
}

func (m *Manager) propertyChanged(e *Entity, name string, old, value any) {
	if m.isKeyProperty(e.typ, name) && e.aspect.State != Detached {
		oldValues := e.Key()
		for i, dp := range e.typ.KeyProperties() {
			if m.conv.ServerToClient(dp.NameOnServer) == name {
				oldValues.Values[i] = old
			}
		}

		if oldID, newID := m.indexID(oldValues), m.indexID(e.Key()); oldID != newID {
			delete(m.index, oldID)
			m.index[newID] = e
		}
	}

	m.notify(Change{Entity: e, Property: name, OldValue: old, NewValue: value})
}

func (m *Manager) notify(c Change) {
	if m.suppressed > 0 {
		return
	}

	if c.Property == "" {
		c.NewState = c.Entity.State()
	} else {
		c.OldState = c.Entity.State()
		c.NewState = c.OldState
	}

	for _, fn := range m.subscribers {
		fn(c)
	}
}

func (m *Manager) isKeyProperty(st *metadata.StructuralType, name string) bool {
	dp, ok := st.DataProperty(m.conv.ClientToServer(name))
	return ok && dp.IsPartOfKey
}

// indexID returns the index identity of a key, rooted at the top of the
// type's inheritance chain.
func (m *Manager) indexID(key Key) string {
	name := key.TypeName
	if st, ok := m.catalog.ResolveTypeName(name); ok {
		for st.BaseTypeName != "" {
			base, ok := m.catalog.StructuralType(st.BaseTypeName)
			if !ok {
				break
			}

			st = base
		}

		name = st.QualifiedName()
	}

	return name + "|" + key.valuesID()
}

func (m *Manager) assignTempKey(e *Entity) {
	keyProps := e.typ.KeyProperties()
	if len(keyProps) != 1 {
		return
	}

	dp := keyProps[0]
	name := m.conv.ServerToClient(dp.NameOnServer)

	if !isZeroKey(e.values[name]) {
		return
	}

	m.tempSeq--

	var temp any

	switch dp.DataType {
	case "Guid":
		temp = uuid.NewString()
	case "String":
		temp = strconv.FormatInt(m.tempSeq, 10)
	default:
		temp = m.tempSeq
	}

	e.values[name] = temp

	m.logger.Debug("assigned temporary key", "type", e.typ.ShortName, "property", name, "value", temp)
}

func isZeroKey(v any) bool {
	switch k := v.(type) {
	case nil:
		return true
	case string:
		return k == "" || k == uuid.Nil.String()
	case uuid.UUID:
		return k == uuid.Nil
	default:
		f, ok := common.AsFloat(v)
		return ok && f == 0
	}
}

// adopt makes e the owner of a complex value.
func adopt(e *Entity, v any) {
	switch co := v.(type) {
	case *ComplexObject:
		co.setOwner(e)
	case []*ComplexObject:
		for _, c := range co {
			c.setOwner(e)
		}
	}
}
