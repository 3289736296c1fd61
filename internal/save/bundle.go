package save

import (
	"encoding/json"
	"maps"

	"entity-sync/internal/entity"
	"entity-sync/internal/metadata"
)

// DefaultResourceName is the save endpoint used when Options leave it empty.
const DefaultResourceName = "SaveChanges"

// Options are per-save settings. Tag and AllowConcurrentSaves travel in
// the bundle; ResourceName selects the endpoint.
type Options struct {
	ResourceName         string `json:"-"`
	Tag                  any    `json:"tag,omitempty"`
	AllowConcurrentSaves bool   `json:"allowConcurrentSaves,omitempty"`
}

func (o Options) resourceName() string {
	if o.ResourceName == "" {
		return DefaultResourceName
	}

	return o.ResourceName
}

// Bundle is the outbound document for one save.
type Bundle struct {
	Entities    []EntityNode `json:"entities"`
	SaveOptions Options      `json:"saveOptions"`
}

// EntityNode is one entity in a bundle: its field values keyed by server
// name plus the change-tracking envelope.
type EntityNode struct {
	Fields map[string]any
	Aspect AspectNode
}

// AspectNode is the change-tracking envelope sent with every entity.
type AspectNode struct {
	EntityTypeName      string            `json:"entityTypeName"`
	EntityState         entity.State      `json:"entityState"`
	DefaultResourceName string            `json:"defaultResourceName,omitempty"`
	OriginalValuesMap   map[string]any    `json:"originalValuesMap"`
	AutoGeneratedKey    *AutoGeneratedKey `json:"autoGeneratedKey,omitempty"`
}

// AutoGeneratedKey tells the server which key property it must generate.
type AutoGeneratedKey struct {
	PropertyName         string                        `json:"propertyName"`
	AutoGeneratedKeyType metadata.AutoGeneratedKeyType `json:"autoGeneratedKeyType"`
}

// MarshalJSON writes the fields flat with the aspect under "entityAspect".
func (n EntityNode) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(n.Fields)+1)
	maps.Copy(doc, n.Fields)
	doc["entityAspect"] = n.Aspect

	return json.Marshal(doc)
}

// UnmarshalJSON reads a node written by MarshalJSON.
func (n *EntityNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	n.Fields = make(map[string]any, len(raw))

	for name, msg := range raw {
		if name == "entityAspect" {
			if err := json.Unmarshal(msg, &n.Aspect); err != nil {
				return err
			}

			continue
		}

		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return err
		}

		n.Fields[name] = v
	}

	return nil
}

// Marshal encodes the bundle.
func (b *Bundle) Marshal() ([]byte, error) {
	return json.Marshal(b)
}
