package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderYAML = `
namespace: Northwind.Model
types:
  - name: Order
    id:
      name: OrderID
      type: Int32
      generator: identity
    version: RowVersion
    properties:
      - name: ShipCountry
        type: String
        nullable: true
        columns:
          - name: ShipCountry
            length: 15
      - name: Freight
        type: Decimal
        columns:
          - name: Freight
            default: "0"
      - name: RowVersion
        type: Int32
      - name: ShipAddress
        component:
          name: Location
          properties:
            - name: City
              type: String
              nullable: true
      - name: Customer
        association:
          target: Customer
        columns: CustomerID
  - name: Customer
    namespace: Northwind.Crm
    id:
      name: CustomerID
      type: Guid
      generator: guid.comb
    properties:
      - name: Orders
        association:
          target: Order
          collection: true
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(orderYAML))
	require.NoError(t, err)
	require.NotNil(t, set)

	assert.Equal(t, CurrentVersion, set.Version)
	require.Len(t, set.Types, 2)

	order := set.Types[0]
	assert.Equal(t, "Order:#Northwind.Model", order.QualifiedName())
	require.NotNil(t, order.Identifier)
	assert.Equal(t, []string{"OrderID"}, order.Identifier.ColumnNames())
	assert.Equal(t, "identity", order.Identifier.Generator)

	require.Len(t, order.Properties, 5)

	ship := order.Properties[0]
	assert.Equal(t, KindScalar, ship.Kind)
	assert.True(t, ship.Nullable)
	require.NotNil(t, ship.Columns.Single())
	assert.Equal(t, 15, ship.Columns.Single().Length)

	freight := order.Properties[1]
	require.NotNil(t, freight.Columns.Single().Default)
	assert.Equal(t, "0", *freight.Columns.Single().Default)

	// default column named after the property
	assert.Equal(t, []string{"RowVersion"}, order.Properties[2].Columns.Names())

	addr := order.Properties[3]
	assert.Equal(t, KindComponent, addr.Kind)
	assert.Equal(t, "Location:#Northwind.Model", addr.Component.QualifiedName())
	assert.Equal(t, KindScalar, addr.Component.Properties[0].Kind)

	cust := order.Properties[4]
	assert.True(t, cust.IsAssociation())
	assert.Equal(t, []string{"CustomerID"}, cust.Columns.Names())

	customer := set.Types[1]
	assert.Equal(t, "Customer:#Northwind.Crm", customer.QualifiedName())
	assert.True(t, customer.Properties[0].Association.Collection)
	assert.Empty(t, customer.Properties[0].Columns)
}

func TestParse_CompositeKey(t *testing.T) {
	set, err := Parse([]byte(`
namespace: Shop
types:
  - name: OrderLine
    id:
      members:
        - name: Order
          association:
            target: Order
          columns: OrderID
        - name: LineNo
          type: Int16
    natural_key: LineNo
`))
	require.NoError(t, err)

	id := set.Types[0].Identifier
	require.NotNil(t, id)
	assert.True(t, id.IsComposite())
	assert.Empty(t, id.Columns)
	assert.Equal(t, []string{"OrderID", "LineNo"}, id.ColumnNames())
	assert.Equal(t, StringOrArray{"LineNo"}, set.Types[0].NaturalKey)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("types: [name: {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse descriptor YAML")
}

func TestWriteAndLoadFile(t *testing.T) {
	set, err := Parse([]byte(orderYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, WriteFile(set, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// single column without length or default is written as a bare name
	assert.Contains(t, string(data), "columns: CustomerID")

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, set, loaded)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	set := &MappingSet{Types: []TypeDescriptor{
		{Name: "Order", Namespace: "A"},
		{Name: "Order", Namespace: "B"},
		{Name: "Customer", Namespace: "A"},
	}}

	td, ok := set.Lookup("Customer")
	require.True(t, ok)
	assert.Equal(t, "A", td.Namespace)

	_, ok = set.Lookup("Order")
	assert.False(t, ok, "ambiguous short name")

	td, ok = set.Lookup("Order:#B")
	require.True(t, ok)
	assert.Equal(t, "B", td.Namespace)

	td, ok = set.Lookup("A.Order")
	require.True(t, ok)
	assert.Equal(t, "A", td.Namespace)
}

func TestOwns(t *testing.T) {
	td := &TypeDescriptor{Name: "Employee", Namespace: "HR"}

	assert.True(t, td.Owns(""))
	assert.True(t, td.Owns("Employee"))
	assert.True(t, td.Owns("Employee:#HR"))
	assert.False(t, td.Owns("Person:#HR"))
	assert.False(t, td.Owns("Employee:#Other"))
}
