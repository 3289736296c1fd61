package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"Order", "Order", 0},
		{"Order", "Ordre", 2},
		{"Customer", "Customers", 1},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"Customer", "Order", "OrderDetail", "Product"}

	s, ok := Suggest("Custmer", candidates)
	assert.True(t, ok)
	assert.Equal(t, "Customer", s)

	s, ok = Suggest("order", candidates)
	assert.True(t, ok)
	assert.Equal(t, "Order", s)

	_, ok = Suggest("Shipment", candidates)
	assert.False(t, ok)

	_, ok = Suggest("Order", nil)
	assert.False(t, ok)
}

func TestDidYouMean(t *testing.T) {
	candidates := []string{"Customer", "Order"}

	assert.Equal(t, `type "Custmer" not found; did you mean "Customer"?`,
		DidYouMean(`type "Custmer" not found`, "Custmer", candidates))
	assert.Equal(t, `type "Zzz" not found`, DidYouMean(`type "Zzz" not found`, "Zzz", candidates))
}
