package entity

import (
	"strings"

	"entity-sync/internal/common"
)

// Key identifies an entity: its type name plus key values in key order.
type Key struct {
	TypeName string
	Values   []any
}

// NewKey builds a Key.
func NewKey(typeName string, values ...any) Key {
	return Key{TypeName: typeName, Values: values}
}

// String renders the key as Type(v1,v2).
func (k Key) String() string {
	return k.TypeName + "(" + k.valuesID() + ")"
}

// Equal compares type names exactly and values loosely, so an int64 key
// equals the same number decoded from JSON.
func (k Key) Equal(other Key) bool {
	if k.TypeName != other.TypeName || len(k.Values) != len(other.Values) {
		return false
	}

	for i := range k.Values {
		if !common.ValuesEqual(k.Values[i], other.Values[i]) {
			return false
		}
	}

	return true
}

// IsComplete reports whether every key value is set.
func (k Key) IsComplete() bool {
	if len(k.Values) == 0 {
		return false
	}

	for _, v := range k.Values {
		if v == nil {
			return false
		}
	}

	return true
}

func (k Key) valuesID() string {
	parts := make([]string, len(k.Values))
	for i, v := range k.Values {
		parts[i] = common.CanonicalString(v)
	}

	return strings.Join(parts, ",")
}
