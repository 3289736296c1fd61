package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-sync/internal/diagnostic"
)

func codes(diags []diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}

	return out
}

func TestValidate_Valid(t *testing.T) {
	set, err := Parse([]byte(orderYAML))
	require.NoError(t, err)

	diags := Validate(set)
	assert.False(t, diags.HasErrors(), diags.Error())
	assert.Empty(t, diags.Warnings)
}

func TestValidate_Nil(t *testing.T) {
	diags := Validate(nil)
	require.True(t, diags.HasErrors())
	assert.Equal(t, []string{"set_is_nil"}, codes(diags.Errors))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		errors   []string
		warnings []string
	}{
		{
			name: "duplicate type",
			yaml: `
types:
  - name: A
    id: {name: Id, type: Int32}
  - name: A
    id: {name: Id, type: Int32}
`,
			errors: []string{"duplicate_type"},
		},
		{
			name: "missing names",
			yaml: `
types:
  - id: {name: Id, type: Int32}
  - name: B
    id: {name: Id, type: Int32}
    properties:
      - type: String
`,
			errors: []string{"missing_type_name", "missing_property_name"},
		},
		{
			name: "duplicate property and missing type",
			yaml: `
types:
  - name: A
    id: {name: Id, type: Int32}
    properties:
      - name: X
        type: String
      - name: X
`,
			errors: []string{"duplicate_property", "missing_type"},
		},
		{
			name: "invalid kind",
			yaml: `
types:
  - name: A
    id: {name: Id, type: Int32}
    properties:
      - name: X
        kind: blob
`,
			errors: []string{"invalid_kind"},
		},
		{
			name: "unknown base and target",
			yaml: `
types:
  - name: A
    base: Nope
    properties:
      - name: B
        association: {target: Missing}
        columns: BId
`,
			errors: []string{"unknown_base_type", "unknown_target"},
		},
		{
			name: "scalar association without columns",
			yaml: `
types:
  - name: A
    id: {name: Id, type: Int32}
    properties:
      - name: Self
        association: {target: A}
      - name: Twin
        association: {target: A, one_to_one: true}
      - name: Children
        association: {target: A, collection: true}
`,
			errors: []string{"missing_fk_columns"},
		},
		{
			name: "empty target",
			yaml: `
types:
  - name: A
    id: {name: Id, type: Int32}
    properties:
      - name: B
        kind: association
`,
			errors: []string{"missing_target"},
		},
		{
			name: "association inside component",
			yaml: `
types:
  - name: A
    id: {name: Id, type: Int32}
    properties:
      - name: Loc
        component:
          name: Location
          properties:
            - name: Owner
              association: {target: A}
              columns: OwnerId
`,
			errors: []string{"association_in_component"},
		},
		{
			name: "empty identifier",
			yaml: `
types:
  - name: A
    id: {type: Int32}
`,
			errors: []string{"empty_identifier"},
		},
		{
			name: "warnings",
			yaml: `
types:
  - name: A
    natural_key: [Code]
    version: Stamp
`,
			warnings: []string{"no_identifier", "unknown_natural_key", "unknown_version"},
		},
		{
			name:     "empty set",
			yaml:     `namespace: X`,
			warnings: []string{"no_types"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			diags := Validate(set)
			assert.Equal(t, tt.errors, nilIfEmpty(codes(diags.Errors)))
			assert.Equal(t, tt.warnings, nilIfEmpty(codes(diags.Warnings)))
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}

	return s
}

func TestValidate_Suggestions(t *testing.T) {
	set, err := Parse([]byte(`
types:
  - name: Customer
    id: {name: CustomerID, type: Int32}
  - name: Order
    id: {name: OrderID, type: Int32}
    version: RowVersoin
    properties:
      - name: RowVersion
        type: Int32
      - name: Customer
        association: {target: Custmer}
        columns: CustomerID
`))
	require.NoError(t, err)

	diags := Validate(set)
	require.Len(t, diags.Errors, 1)
	assert.Contains(t, diags.Errors[0].Message, `did you mean "Customer"?`)

	require.Len(t, diags.Warnings, 1)
	assert.Contains(t, diags.Warnings[0].Message, `did you mean "RowVersion"?`)
}
