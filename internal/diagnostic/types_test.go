package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_Error(t *testing.T) {
	var d Diagnostics
	assert.NoError(t, d.Error())

	d.AddWarning("no_key", "type has no identifier", "Region", "")
	assert.NoError(t, d.Error())

	d.AddError("missing_name", "property name is required", "Order", "")
	d.AddError("unknown_kind", `unknown kind "blob"`, "Order", "Photo")

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t, `Order: [missing_name] property name is required; Order.Photo: [unknown_kind] unknown kind "blob"`, err.Error())
}

func TestDiagnostics_MergeAndAll(t *testing.T) {
	var a, b Diagnostics
	a.AddInfo("defaulted", "namespace defaulted", "Order", "")
	b.AddError("dup", "duplicate type", "Order", "")
	b.AddWarning("w", "warn", "", "")

	a.Merge(b)

	all := a.All()
	require.Len(t, all, 3)
	assert.Equal(t, SeverityError, all[0].Severity)
	assert.Equal(t, SeverityWarning, all[1].Severity)
	assert.Equal(t, SeverityInfo, all[2].Severity)
	assert.Equal(t, "[w] warn", all[1].String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
