package metadata

import (
	"slices"
	"strings"
)

const (
	associationPrefix = "AN_"
	oneToOneSuffix    = "_1to1"
)

// Pluralize derives a resource name from a type name: a trailing "y"
// becomes "ies", anything else gets an "s".
func Pluralize(s string) string {
	if s == "" {
		return s
	}

	if strings.HasSuffix(s, "y") {
		return s[:len(s)-1] + "ies"
	}

	return s + "s"
}

// AssociationName returns the name shared by both ends of a relation.
// The two short names are ordered ordinally so either side computes the
// same value.
func AssociationName(a, b string, oneToOne bool) string {
	if b < a {
		a, b = b, a
	}

	name := associationPrefix + a + "_" + b
	if oneToOne {
		name += oneToOneSuffix
	}

	return name
}

// Unbracket strips one level of identifier quoting from a column name:
// [x], "x" and `x` all become x.
func Unbracket(name string) string {
	if len(name) < 2 {
		return name
	}

	switch {
	case name[0] == '[' && name[len(name)-1] == ']',
		name[0] == '"' && name[len(name)-1] == '"',
		name[0] == '`' && name[len(name)-1] == '`':
		return name[1 : len(name)-1]
	default:
		return name
	}
}

// ColumnSignature builds the lookup key for a set of columns. The key does
// not depend on column order or quoting.
func ColumnSignature(columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = strings.ToLower(Unbracket(strings.TrimSpace(c)))
	}

	slices.Sort(parts)

	return strings.Join(parts, ",")
}

// NormalizeTypeName turns a server type name into short name and namespace.
// Assembly qualifiers (", Assembly, Version=...") are dropped and dotted
// names are split at the last dot.
func NormalizeTypeName(name string) (short, namespace string) {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, ","); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	if i := strings.Index(name, ":#"); i >= 0 {
		return name[:i], name[i+2:]
	}

	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:], name[:i]
	}

	return name, ""
}
