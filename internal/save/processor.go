package save

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"entity-sync/internal/common"
	"entity-sync/internal/entity"
	"entity-sync/internal/metadata"
	"entity-sync/internal/naming"
)

// EntityStore is the tracked entity graph a save result is applied to.
// *entity.Manager implements it.
type EntityStore interface {
	Convention() naming.Convention
	Entities() []*entity.Entity
	Changes() []*entity.Entity
	FindEntityByKey(key entity.Key) (*entity.Entity, bool)

	// Suppress turns off change notifications until release runs.
	Suppress() (release func())

	UpdateValues(e *entity.Entity, values map[string]any) error
	Merge(e *entity.Entity, doc []byte) error
	Materialize(st *metadata.StructuralType, doc []byte) (*entity.Entity, error)
	AcceptChanges(e *entity.Entity)
}

// ResultProcessor applies save responses to an EntityStore.
type ResultProcessor struct {
	catalog *metadata.Catalog
	store   EntityStore
	logger  *slog.Logger
}

// NewResultProcessor creates a ResultProcessor.
func NewResultProcessor(catalog *metadata.Catalog, store EntityStore, opts ...Option) *ResultProcessor {
	cfg := newConfig(opts)

	return &ResultProcessor{catalog: catalog, store: store, logger: cfg.logger}
}

type parsedMapping struct {
	typ     *metadata.StructuralType
	keyProp *metadata.DataProperty
	mapping KeyMapping
}

type parsedEntity struct {
	typ *metadata.StructuralType
	key entity.Key
	raw []byte
}

type parsedResponse struct {
	mappings []parsedMapping
	entities []parsedEntity
}

// Process reconciles a raw save response with the store.
//
// The whole response is parsed and every type resolved before anything is
// changed, so a *SaveResponseError leaves the graph untouched. Key remapping
// then runs with notifications suppressed: first every entity still holding
// a temporary key is collected, then keys and the foreign keys that point
// at them are rewritten. Returned documents are merged over the local
// values and accepted. Applying the same response twice is a no-op because
// the temporary keys no longer exist.
//
// A failure after remapping started is returned as is and not rolled back.
func (p *ResultProcessor) Process(raw []byte) (*Result, error) {
	parsed, err := p.parse(raw)
	if err != nil {
		return nil, err
	}

	release := p.store.Suppress()
	defer release()

	if err := p.remap(parsed.mappings); err != nil {
		return nil, err
	}

	result := &Result{KeyMappings: make([]KeyMapping, 0, len(parsed.mappings))}
	for _, pm := range parsed.mappings {
		result.KeyMappings = append(result.KeyMappings, pm.mapping)
	}

	for _, pe := range parsed.entities {
		e, err := p.apply(pe)
		if err != nil {
			return nil, err
		}

		result.Entities = append(result.Entities, e)
	}

	p.logger.Debug("processed save result", "keyMappings", len(result.KeyMappings), "entities", len(result.Entities))

	return result, nil
}

func (p *ResultProcessor) parse(raw []byte) (*parsedResponse, error) {
	if !gjson.ValidBytes(raw) {
		return nil, responseErr(nil, "malformed JSON")
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, responseErr(nil, "expected an object, got %s", root.Type)
	}

	out := &parsedResponse{}

	mappings := field(root, "KeyMappings", "keyMappings")
	if mappings.Exists() && !mappings.IsArray() {
		return nil, responseErr(nil, "KeyMappings is not an array")
	}

	for i, km := range mappings.Array() {
		pm, keep, err := p.parseMapping(km)
		if err != nil {
			return nil, responseErr(err, "key mapping %d", i)
		}

		if keep {
			out.mappings = append(out.mappings, pm)
		}
	}

	entities := field(root, "Entities", "entities")
	if entities.Exists() && !entities.IsArray() {
		return nil, responseErr(nil, "Entities is not an array")
	}

	for i, doc := range entities.Array() {
		pe, err := p.parseEntity(doc)
		if err != nil {
			return nil, responseErr(err, "entity %d", i)
		}

		out.entities = append(out.entities, pe)
	}

	return out, nil
}

func (p *ResultProcessor) parseMapping(km gjson.Result) (parsedMapping, bool, error) {
	typeName := field(km, "EntityTypeName", "entityTypeName").String()

	st, ok := p.catalog.EntityType(typeName)
	if !ok {
		return parsedMapping{}, false, fmt.Errorf("%w: %q", metadata.ErrUnknownType, typeName)
	}

	if st.AutoGeneratedKeyType == metadata.KeyTypeNone {
		p.logger.Warn("ignoring key mapping for type without generated keys", "type", st.QualifiedName())
		return parsedMapping{}, false, nil
	}

	keys := st.KeyProperties()
	if len(keys) != 1 {
		return parsedMapping{}, false, fmt.Errorf("key mapping for %s needs a single key property, found %d", st.ShortName, len(keys))
	}

	tempRaw := field(km, "TempValue", "tempValue")
	realRaw := field(km, "RealValue", "realValue")

	if !tempRaw.Exists() || !realRaw.Exists() {
		return parsedMapping{}, false, fmt.Errorf("key mapping for %s lacks TempValue or RealValue", st.ShortName)
	}

	dataType := keys[0].DataType
	qn := st.QualifiedName()

	return parsedMapping{
		typ:     st,
		keyProp: keys[0],
		mapping: KeyMapping{
			Temp: entity.NewKey(qn, metadata.FromJSONValue(dataType, jsonValue(tempRaw))),
			Real: entity.NewKey(qn, metadata.FromJSONValue(dataType, jsonValue(realRaw))),
		},
	}, true, nil
}

func (p *ResultProcessor) parseEntity(doc gjson.Result) (parsedEntity, error) {
	if !doc.IsObject() {
		return parsedEntity{}, fmt.Errorf("expected an object, got %s", doc.Type)
	}

	typeName := doc.Get(`\$type`).String()
	if typeName == "" {
		typeName = doc.Get("entityAspect.entityTypeName").String()
	}

	st, ok := p.catalog.EntityType(typeName)
	if !ok {
		return parsedEntity{}, fmt.Errorf("%w: %q", metadata.ErrUnknownType, typeName)
	}

	keys := st.KeyProperties()
	values := make([]any, len(keys))

	for i, kp := range keys {
		v := doc.Get(gjson.Escape(kp.NameOnServer))
		if !v.Exists() || v.Type == gjson.Null {
			return parsedEntity{}, fmt.Errorf("%s document lacks key property %s", st.ShortName, kp.NameOnServer)
		}

		values[i] = metadata.FromJSONValue(kp.DataType, jsonValue(v))
	}

	return parsedEntity{
		typ: st,
		key: entity.NewKey(st.QualifiedName(), values...),
		raw: []byte(doc.Raw),
	}, nil
}

type remapPair struct {
	pm *parsedMapping
	e  *entity.Entity
}

func (p *ResultProcessor) remap(mappings []parsedMapping) error {
	var pairs []remapPair

	for i := range mappings {
		pm := &mappings[i]

		e, ok := p.store.FindEntityByKey(pm.mapping.Temp)
		if !ok {
			p.logger.Debug("temporary key not tracked", "key", pm.mapping.Temp.String())
			continue
		}

		pairs = append(pairs, remapPair{pm: pm, e: e})
	}

	conv := p.store.Convention()

	for _, pair := range pairs {
		keyName := conv.ServerToClient(pair.pm.keyProp.NameOnServer)
		realValue := pair.pm.mapping.Real.Values[0]

		if err := p.store.UpdateValues(pair.e, map[string]any{keyName: realValue}); err != nil {
			return fmt.Errorf("failed to remap %s: %w", pair.pm.mapping.Temp, err)
		}

		if err := p.fixForeignKeys(pair.pm, conv); err != nil {
			return err
		}
	}

	return nil
}

// fixForeignKeys rewrites foreign key values that still hold the temporary
// key on every entity whose navigation targets the remapped type or one of
// its base types.
func (p *ResultProcessor) fixForeignKeys(pm *parsedMapping, conv naming.Convention) error {
	tempValue := pm.mapping.Temp.Values[0]
	realValue := pm.mapping.Real.Values[0]

	for target := pm.typ; target != nil; target = target.Base() {
		for owner, navs := range p.catalog.NavigationsTo(target.QualifiedName()) {
			for _, e := range p.store.Entities() {
				if !p.catalog.IsA(e.Type(), owner.QualifiedName()) {
					continue
				}

				for _, np := range navs {
					if len(np.ForeignKeyNamesOnServer) != 1 {
						continue
					}

					fk := conv.ServerToClient(np.ForeignKeyNamesOnServer[0])
					if !common.ValuesEqual(e.Get(fk), tempValue) {
						continue
					}

					if err := p.store.UpdateValues(e, map[string]any{fk: realValue}); err != nil {
						return fmt.Errorf("failed to remap %s.%s: %w", e.Type().ShortName, fk, err)
					}
				}
			}
		}
	}

	return nil
}

func (p *ResultProcessor) apply(pe parsedEntity) (*entity.Entity, error) {
	e, ok := p.store.FindEntityByKey(pe.key)
	if ok {
		if err := p.store.Merge(e, pe.raw); err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", pe.key, err)
		}
	} else {
		var err error

		e, err = p.store.Materialize(pe.typ, pe.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to materialize %s: %w", pe.key, err)
		}
	}

	p.store.AcceptChanges(e)

	return e, nil
}

// field returns the first of the given keys present on r.
func field(r gjson.Result, names ...string) gjson.Result {
	for _, name := range names {
		if v := r.Get(name); v.Exists() {
			return v
		}
	}

	return gjson.Result{}
}

// jsonValue keeps numbers as json.Number so large integers survive.
func jsonValue(r gjson.Result) any {
	if r.Type == gjson.Number {
		return json.Number(r.Raw)
	}

	return r.Value()
}
