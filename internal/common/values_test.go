package common

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and zero", nil, 0, false},
		{"int and float", int64(-1), float64(-1), true},
		{"different numbers", 1, 2, false},
		{"strings", "a", "a", true},
		{"number and string", 1, "1", false},
		{"maps", map[string]any{"a": 1}, map[string]any{"a": 1}, true},
		{"large int64 neighbours", int64(9007199254740992), int64(9007199254740993), false},
		{"large int64 and json number", int64(9007199254740993), json.Number("9007199254740993"), true},
		{"max uint64", uint64(math.MaxUint64), json.Number("18446744073709551615"), true},
		{"int and fraction", 1, 1.5, false},
		{"json fraction", json.Number("1.5"), 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b))
		})
	}
}

func TestCanonicalString(t *testing.T) {
	assert.Equal(t, "-1", CanonicalString(float64(-1)))
	assert.Equal(t, "-1", CanonicalString(int32(-1)))
	assert.Equal(t, "1.5", CanonicalString(1.5))
	assert.Equal(t, `"ALFKI"`, CanonicalString("ALFKI"))
	assert.Equal(t, "null", CanonicalString(nil))
	assert.Equal(t, "9007199254740993", CanonicalString(int64(9007199254740993)))
	assert.Equal(t, "9007199254740992", CanonicalString(float64(9007199254740992)))
	assert.Equal(t, "18446744073709551615", CanonicalString(uint64(math.MaxUint64)))
	assert.Equal(t, "42", CanonicalString(json.Number("42")))
	assert.Equal(t, "0", CanonicalString(math.Copysign(0, -1)))
}
