package save

import (
	"testing"

	"github.com/stretchr/testify/require"

	"entity-sync/internal/descriptor"
	"entity-sync/internal/entity"
	"entity-sync/internal/metadata"
)

const shopModel = `
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
      - {name: Freight, type: Decimal}
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
    id: {name: LedgerID, type: Int64, generator: identity}
  - name: Entry
    id: {name: EntryID, type: Int32, generator: identity}
    properties:
      - {name: LedgerID, type: Int64, nullable: true}
      - name: Ledger
        association: {target: Ledger}
        columns: LedgerID
`

func testCatalog(t *testing.T) *metadata.Catalog {
	t.Helper()

	set, err := descriptor.Parse([]byte(shopModel))
	require.NoError(t, err)

	cat, err := metadata.Build(set)
	require.NoError(t, err)

	return cat
}

func addEntity(t *testing.T, m *entity.Manager, typeName string, values map[string]any) *entity.Entity {
	t.Helper()

	e, err := m.CreateEntity(typeName, values)
	require.NoError(t, err)
	require.NoError(t, m.AddEntity(e))

	return e
}

func attachEntity(t *testing.T, m *entity.Manager, typeName string, values map[string]any) *entity.Entity {
	t.Helper()

	e, err := m.CreateEntity(typeName, values)
	require.NoError(t, err)
	require.NoError(t, m.AttachEntity(e, entity.Unchanged))

	return e
}
