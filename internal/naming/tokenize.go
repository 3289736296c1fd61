package naming

import (
	"strings"
	"unicode"
)

// Tokenize splits an identifier into its words.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customerName" -> ["customer", "Name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "ship_country" -> ["ship", "country"]
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && startsToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsToken determines if a new token should start at position i.
func startsToken(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prev)

	// "orderID": split before 'I'
	if isUpper && !isPrevUpper && !isSeparator(prev) {
		return true
	}

	// "XMLParser": split before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}
