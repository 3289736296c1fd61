package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"OrderID", []string{"Order", "ID"}},
		{"customerName", []string{"customer", "Name"}},
		{"XMLParser", []string{"XML", "Parser"}},
		{"getHTTPResponse", []string{"get", "HTTP", "Response"}},
		{"ship_country", []string{"ship", "country"}},
		{"ShipCountry", []string{"Ship", "Country"}},
		{"ID", []string{"ID"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}
