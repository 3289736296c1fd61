package metadata

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dataTypeAliases folds mapping-layer type names onto catalog data types.
var dataTypeAliases = map[string]string{
	"Byte[]":         "Binary",
	"BinaryBlob":     "Binary",
	"Timestamp":      "DateTime",
	"TimeAsTimeSpan": "Time",
}

// validationTypes maps a data type to the name of its type validator.
var validationTypes = map[string]string{
	"Boolean":        "bool",
	"Byte":           "byte",
	"DateTime":       "date",
	"DateTimeOffset": "date",
	"Decimal":        "number",
	"Guid":           "guid",
	"Int16":          "int16",
	"Int32":          "int32",
	"Int64":          "integer",
	"Single":         "number",
	"Time":           "duration",
	"TimeAsTimeSpan": "duration",
}

// literalTypes lists the data types whose column defaults are literal
// values. Defaults of other types are store expressions such as now().
var literalTypes = map[string]bool{
	"Boolean": true,
	"Byte":    true,
	"Decimal": true,
	"Double":  true,
	"Int16":   true,
	"Int32":   true,
	"Int64":   true,
	"Single":  true,
	"String":  true,
}

// HasLiteralDefault reports whether a column default of the data type is a
// client-side value rather than a store expression.
func HasLiteralDefault(dataType string) bool {
	return literalTypes[NormalizeDataType(dataType)]
}

// NormalizeDataType returns the catalog name of a mapping-layer data type.
func NormalizeDataType(name string) string {
	if alias, ok := dataTypeAliases[name]; ok {
		return alias
	}

	return name
}

// ValidationType returns the type validator name for a data type, if any.
func ValidationType(dataType string) (string, bool) {
	v, ok := validationTypes[dataType]
	return v, ok
}

// CoerceValue converts a column default, as written in the store schema,
// into a value of the given data type. SQL wrapping such as ((0)) or 'x'
// is removed first.
func CoerceValue(dataType, raw string) (any, error) {
	s := unwrapDefault(raw)

	switch dataType {
	case "Byte", "Int16", "Int32", "Int64":
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s default %q: %w", dataType, raw, err)
		}

		return n, nil

	case "Decimal", "Double", "Single":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s default %q: %w", dataType, raw, err)
		}

		return f, nil

	case "Boolean":
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s default %q: %w", dataType, raw, err)
		}

		return b, nil

	default:
		return s, nil
	}
}

func unwrapDefault(raw string) string {
	s := strings.TrimSpace(raw)
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}

	return s
}

// FromJSONValue normalizes a decoded JSON value for a data type. JSON
// numbers arrive as float64; integral types are turned back into int64.
func FromJSONValue(dataType string, v any) any {
	switch dataType {
	case "Byte", "Int16", "Int32", "Int64":
		switch n := v.(type) {
		case float64:
			return int64(n)
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i
			}
		}

	case "Decimal", "Double", "Single":
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				return f
			}
		}

	case "Binary":
		if s, ok := v.(string); ok {
			if b, err := base64.StdEncoding.DecodeString(s); err == nil {
				return b
			}
		}

	case "DateTime", "DateTimeOffset":
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t
			}
		}
	}

	return v
}
