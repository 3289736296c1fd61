package entity

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument(t *testing.T) {
	m := NewManager(testCatalog(t))

	e, err := m.CreateEntity("Customer", map[string]any{
		"CustomerID":  int64(1),
		"CompanyName": "Acme",
		"Address":     map[string]any{"City": "Oslo"},
		"Phones":      []map[string]any{{"Kind": "home", "Number": "1"}},
	})
	require.NoError(t, err)

	want := map[string]any{
		"CustomerID":  int64(1),
		"CompanyName": "Acme",
		"Status":      "active",
		"Address": map[string]any{
			"Street": nil,
			"City":   "Oslo",
			"Geo":    map[string]any{"Lat": nil, "Lng": nil},
		},
		"Phones": []any{
			map[string]any{"Kind": "home", "Number": "1"},
		},
	}

	if diff := cmp.Diff(want, e.Document()); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_ServerWins(t *testing.T) {
	m := NewManager(testCatalog(t))

	placed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	o, err := m.CreateEntity("Order", map[string]any{
		"OrderID":    int64(10),
		"CustomerID": int64(1),
		"Freight":    12.5,
		"PlacedAt":   placed,
	})
	require.NoError(t, err)
	require.NoError(t, m.AttachEntity(o, Unchanged))

	require.NoError(t, o.Set("Freight", 20.0))

	server := []byte(`{"$type":"Shop.Order, Shop","OrderID":10,"Freight":25.75,"CustomerID":null}`)
	require.NoError(t, m.Merge(o, server))

	assert.Equal(t, 25.75, o.Get("Freight"))
	assert.Nil(t, o.Get("CustomerID"))
	assert.Equal(t, int64(10), o.Get("OrderID"))
	got, ok := o.Get("PlacedAt").(time.Time)
	require.True(t, ok)
	assert.True(t, placed.Equal(got))
	// merge does not change tracking
	assert.Equal(t, Modified, o.State())
	assert.Equal(t, map[string]any{"Freight": 12.5}, o.OriginalValues())
}

func TestMerge_ComplexValues(t *testing.T) {
	m := NewManager(testCatalog(t))

	c, err := m.CreateEntity("Customer", map[string]any{
		"CustomerID": int64(1),
		"Address":    map[string]any{"City": "Oslo", "Street": "Main 1"},
	})
	require.NoError(t, err)
	require.NoError(t, m.AttachEntity(c, Unchanged))

	server := []byte(`{"Address":{"City":"Bergen"},"Phones":[{"Kind":"work","Number":"5"}]}`)
	require.NoError(t, m.Merge(c, server))

	addr := c.Complex("Address")
	assert.Equal(t, "Bergen", addr.Get("City"))
	assert.Equal(t, "Main 1", addr.Get("Street"))
	assert.Same(t, c, addr.Owner())

	phones := c.ComplexList("Phones")
	require.Len(t, phones, 1)
	assert.Equal(t, "5", phones[0].Get("Number"))
	assert.Same(t, c, phones[0].Owner())
}

func TestMerge_Errors(t *testing.T) {
	m := NewManager(testCatalog(t))

	c := newCustomer(t, m, 1, "Acme")
	require.ErrorIs(t, m.Merge(c, []byte(`{}`)), ErrNotAttached)

	require.NoError(t, m.AttachEntity(c, Unchanged))
	require.ErrorIs(t, m.Merge(c, []byte(`not json`)), ErrInvalidDocument)
}

func TestMaterialize(t *testing.T) {
	cat := testCatalog(t)
	m := NewManager(cat)

	st, _ := cat.EntityType("VipCustomer")

	e, err := m.Materialize(st, []byte(`{"CustomerID":9,"CompanyName":"Big","Level":3,"Address":{"City":"Rome"}}`))
	require.NoError(t, err)

	assert.Equal(t, Unchanged, e.State())
	assert.Equal(t, int64(9), e.Get("CustomerID"))
	assert.Equal(t, int64(3), e.Get("Level"))
	assert.Equal(t, "Rome", e.Complex("Address").Get("City"))
	assert.Same(t, e, e.Complex("Address").Owner())

	found, ok := m.FindEntityByKey(NewKey("Customer", int64(9)))
	require.True(t, ok)
	assert.Same(t, e, found)

	_, err = m.Materialize(st, []byte(`{"CompanyName":"No key"}`))
	require.ErrorIs(t, err, ErrIncompleteKey)

	_, err = m.Materialize(st, []byte(`[]`))
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestRevertToOriginalValues(t *testing.T) {
	m := NewManager(testCatalog(t))

	c, err := m.CreateEntity("Customer", map[string]any{
		"CustomerID":  int64(1),
		"CompanyName": "Acme",
		"Address":     map[string]any{"City": "Oslo"},
		"Phones":      []map[string]any{{"Kind": "home", "Number": "1"}, {"Kind": "work", "Number": "2"}},
	})
	require.NoError(t, err)
	require.NoError(t, m.AttachEntity(c, Unchanged))

	require.NoError(t, c.Set("CompanyName", "Changed"))
	require.NoError(t, c.Complex("Address").Complex("Geo").Set("Lat", 1.5))
	require.NoError(t, c.ComplexList("Phones")[1].Set("Number", "3"))

	err = m.RevertToOriginalValues(c, map[string]any{
		"CompanyName": "Acme",
		"Address":     map[string]any{"Geo": map[string]any{"Lat": nil}},
		"Phones":      []any{map[string]any{}, map[string]any{"Number": "2"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", c.Get("CompanyName"))
	assert.Nil(t, c.Complex("Address").Complex("Geo").Get("Lat"))
	assert.Equal(t, "2", c.ComplexList("Phones")[1].Get("Number"))

	err = m.RevertToOriginalValues(c, map[string]any{"Nope": 1})
	require.ErrorIs(t, err, ErrUnknownProperty)
}
