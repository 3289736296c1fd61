package common

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// ValuesEqual compares two loosely typed values.
// Numbers compare by value regardless of their Go type, so an int64(-1) from
// the client graph equals the float64(-1) decoded from a JSON document.
// Two integers are compared exactly, never through float64.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if ia, ok := IntegerText(a); ok {
		if ib, ok := IntegerText(b); ok {
			return ia == ib
		}
	}

	if fa, ok := AsFloat(a); ok {
		if fb, ok := AsFloat(b); ok {
			return fa == fb
		}

		return false
	}

	return reflect.DeepEqual(a, b)
}

// AsFloat converts any Go numeric value to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// IntegerText returns the exact decimal text of an integral number.
// Integral floats qualify too and render without exponent or fraction.
func IntegerText(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return floatInteger(float64(n))
	case float64:
		return floatInteger(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}

		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return strconv.FormatUint(u, 10), true
		}

		if f, err := n.Float64(); err == nil {
			return floatInteger(f)
		}

		return "", false
	default:
		return "", false
	}
}

func floatInteger(f float64) (string, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return "", false
	}

	if f == 0 {
		return "0", true
	}

	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// CanonicalString renders a value so that equal values produce equal strings.
// Integers keep every digit; integral floats render without a fraction.
func CanonicalString(v any) string {
	if v == nil {
		return "null"
	}

	if s, ok := IntegerText(v); ok {
		return s
	}

	if f, ok := AsFloat(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	switch s := v.(type) {
	case string:
		return strconv.Quote(s)
	case fmt.Stringer:
		return strconv.Quote(s.String())
	default:
		return fmt.Sprintf("%v", v)
	}
}
