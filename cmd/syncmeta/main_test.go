package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"entity-sync/internal/save"
)

const northwindYAML = "../../internal/metadata/testdata/northwind.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"sample models", []string{"check", "--sample"}, "ok: 8 entity types"},
		{"static package", []string{"check", "--package", "entity-sync/northwind"}, "ok: 8 entity types"},
		{"descriptor file", []string{"check", "-d", northwindYAML}, "ok:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCheck_SourceFlags(t *testing.T) {
	_, err := run(t, "check")
	require.Error(t, err)

	_, err = run(t, "check", "--sample", "-d", northwindYAML)
	require.Error(t, err)
}

func TestCheck_InvalidDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
namespace: Shop
types:
  - name: Order
    id: {name: OrderID, type: Int32}
    properties:
      - name: Customer
        association: {target: Missing}
`), 0o600))

	out, err := run(t, "check", "-d", path)
	require.Error(t, err)
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "Missing")
}

func TestCatalog_JSON(t *testing.T) {
	out, err := run(t, "catalog", "--sample")
	require.NoError(t, err)

	require.True(t, gjson.Valid(out))
	assert.Equal(t, "caseInsensitiveSQL", gjson.Get(out, "localQueryComparisonOptions").String())
	assert.Equal(t, "Customer:#Northwind.Model", gjson.Get(out, "resourceEntityTypeMap.Customers").String())
	assert.Equal(t, "CustomerID", gjson.Get(out, `fkMap.Order\.Customer`).String())
}

func TestCatalog_YAMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	out, err := run(t, "catalog", "-d", northwindYAML, "-f", "yaml", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "structuralTypes:")
}

func TestCatalog_UnknownFormat(t *testing.T) {
	_, err := run(t, "catalog", "--sample", "-f", "xml")
	require.ErrorContains(t, err, "unknown format")
}

func TestDescribe_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "northwind.yaml")

	_, err := run(t, "describe", "--sample", "-o", path)
	require.NoError(t, err)

	out, err := run(t, "check", "-d", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 8 entity types")
}

func writeBundle(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "entities": [{
    "CustomerID": -1,
    "CompanyName": "Acme",
    "entityAspect": {
      "entityTypeName": "Customer:#Northwind.Model",
      "entityState": "Added",
      "originalValuesMap": {}
    }
  }],
  "saveOptions": {}
}`), 0o600))

	return path
}

func TestSend(t *testing.T) {
	var got []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/SaveChanges", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Token"))

		got, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "KeyMappings": [{"EntityTypeName": "Customer:#Northwind.Model", "TempValue": -1, "RealValue": 42}],
  "Entities": [{"CustomerID": 42, "CompanyName": "Acme"}]
}`))
	}))
	defer srv.Close()

	out, err := run(t, "send", "-u", srv.URL+"/api", "-H", "X-Token=secret", writeBundle(t))
	require.NoError(t, err)

	assert.Contains(t, out, "saved: 1 entities, 1 key mappings")
	assert.Contains(t, out, "Customer:#Northwind.Model -1 -> 42")

	var sent map[string]any
	require.NoError(t, json.Unmarshal(got, &sent))
	assert.Equal(t, "Added", gjson.GetBytes(got, "entities.0.entityAspect.entityState").String())
}

func TestSend_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{
  "Message": "validation failed",
  "EntityErrors": [{"ErrorName": "required", "EntityTypeName": "Customer:#Northwind.Model",
    "KeyValues": [-1], "PropertyName": "CompanyName", "ErrorMessage": "CompanyName is required"}]
}`))
	}))
	defer srv.Close()

	out, err := run(t, "send", "--url", srv.URL, writeBundle(t))
	require.Error(t, err)

	var rej *save.ServerValidationRejection
	require.True(t, errors.As(err, &rej))
	assert.Len(t, rej.EntityErrors, 1)

	assert.Contains(t, out, "rejected: validation failed")
	assert.Contains(t, out, "Customer:#Northwind.Model [-1].CompanyName: CompanyName is required")
}

func TestSend_BadBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entities": []}`), 0o600))

	_, err := run(t, "send", "--url", "http://localhost:1", path)
	require.ErrorContains(t, err, "no entities")

	_, err = run(t, "send", path)
	require.Error(t, err)
}
