package entity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"entity-sync/internal/descriptor"
	"entity-sync/internal/metadata"
)

const testModel = `
namespace: Shop
types:
  - name: Customer
    id: {name: CustomerID, type: Int32, generator: identity}
    properties:
      - name: CompanyName
        type: String
      - name: Status
        type: String
        columns:
          - name: Status
            default: "'active'"
      - name: Address
        component:
          name: Location
          properties:
            - {name: Street, type: String, nullable: true}
            - {name: City, type: String, nullable: true}
            - name: Geo
              component:
                name: GeoPoint
                properties:
                  - {name: Lat, type: Double}
                  - {name: Lng, type: Double}
      - name: Phones
        component:
          name: Phone
          collection: true
          properties:
            - {name: Kind, type: String}
            - {name: Number, type: String}
      - name: Orders
        association: {target: Order, collection: true}
  - name: VipCustomer
    base: Customer
    properties:
      - {name: Level, type: Int16}
  - name: Order
    id: {name: OrderID, type: Int32, generator: identity}
    properties:
      - {name: CustomerID, type: Int32, nullable: true}
      - name: Freight
        type: Decimal
        columns:
          - name: Freight
            default: "0"
      - {name: PlacedAt, type: DateTime, nullable: true}
      - name: Customer
        association: {target: Customer}
        columns: CustomerID
  - name: Tag
    id: {name: Code, type: String, generator: assigned}
    properties:
      - {name: Label, type: String}
  - name: Token
    id: {name: TokenID, type: Guid, generator: guid.comb}
  - name: Ledger
    id: {name: LedgerID, type: Int64, generator: assigned}
    properties:
      - {name: Label, type: String, nullable: true}
`

func testCatalog(t *testing.T) *metadata.Catalog {
	t.Helper()

	set, err := descriptor.Parse([]byte(testModel))
	require.NoError(t, err)

	cat, err := metadata.Build(set)
	require.NoError(t, err)

	return cat
}

func newCustomer(t *testing.T, m *Manager, id int64, name string) *Entity {
	t.Helper()

	e, err := m.CreateEntity("Customer", map[string]any{"CustomerID": id, "CompanyName": name})
	require.NoError(t, err)

	return e
}
