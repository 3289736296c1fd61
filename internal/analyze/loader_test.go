package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const northwindPkg = "entity-sync/northwind"

func loadNorthwind(t *testing.T) (*Analyzer, *TypeGraph) {
	t.Helper()

	analyzer := NewAnalyzer()
	paths, err := analyzer.LoadPackages(context.Background(), northwindPkg)
	require.NoError(t, err)
	require.Equal(t, []string{northwindPkg}, paths)

	return analyzer, analyzer.Graph()
}

func field(t *testing.T, info *TypeInfo, name string) *FieldInfo {
	t.Helper()

	for i := range info.Fields {
		if info.Fields[i].Name == name {
			return &info.Fields[i]
		}
	}

	require.Failf(t, "field not found", "%s.%s", info.ID.Name, name)

	return nil
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	_, graph := loadNorthwind(t)

	assert.Contains(t, graph.Packages, northwindPkg)
	assert.Contains(t, graph.Types, TypeID{PkgPath: northwindPkg, Name: "Order"})
	assert.Contains(t, graph.Types, TypeID{PkgPath: northwindPkg, Name: "Location"})
	assert.NotContains(t, graph.Types, TypeID{PkgPath: northwindPkg, Name: "Models"})

	// scope names are sorted
	pkg := graph.Packages[northwindPkg]
	assert.Equal(t, "Badge", pkg.Types[0].Name)
}

func TestAnalyzer_LoadPackages_Error(t *testing.T) {
	_, err := NewAnalyzer().LoadPackages(context.Background(), "entity-sync/does/not/exist")
	require.Error(t, err)
}

func TestAnalyzer_FieldKinds(t *testing.T) {
	analyzer, _ := loadNorthwind(t)

	order, err := analyzer.GetStruct(northwindPkg, "Order")
	require.NoError(t, err)
	assert.Equal(t, TypeKindStruct, order.Kind)

	customerID := field(t, order, "CustomerID")
	assert.Equal(t, TypeKindPointer, customerID.Type.Kind)
	assert.Equal(t, "*github.com/google/uuid.UUID", customerID.Type.String())
	assert.Equal(t, TypeKindExternal, customerID.Type.ElemType.Kind)

	placedAt := field(t, order, "PlacedAt")
	assert.Equal(t, "*time.Time", placedAt.Type.String())

	customer, err := analyzer.GetStruct(northwindPkg, "Customer")
	require.NoError(t, err)

	phones := field(t, customer, "PhoneNumbers")
	assert.Equal(t, TypeKindSlice, phones.Type.Kind)
	assert.Equal(t, TypeKindStruct, phones.Type.ElemType.Kind)
	assert.Equal(t, "[]entity-sync/northwind.Phone", phones.Type.String())
}

func TestAnalyzer_EmbeddedAndTags(t *testing.T) {
	analyzer, _ := loadNorthwind(t)

	intl, err := analyzer.GetStruct(northwindPkg, "InternationalOrder")
	require.NoError(t, err)

	order := field(t, intl, "Order")
	assert.True(t, order.Embedded)

	product, err := analyzer.GetStruct(northwindPkg, "Product")
	require.NoError(t, err)

	code := field(t, product, "ProductCode")
	assert.True(t, code.HasTag("gorm"))

	settings := code.GormSettings()
	assert.Equal(t, "20", settings["SIZE"])
	assert.Contains(t, settings, "NATURALKEY")

	status := field(t, product, "Status")
	assert.Equal(t, TypeKindAlias, status.Type.Kind)
	assert.Equal(t, TypeKindBasic, status.Type.Underlying.Kind)
}

func TestAnalyzer_GetStruct_Errors(t *testing.T) {
	analyzer, _ := loadNorthwind(t)

	_, err := analyzer.GetStruct(northwindPkg, "Missing")
	require.ErrorContains(t, err, "not found")

	_, err = analyzer.GetStruct(northwindPkg, "ProductStatus")
	require.ErrorContains(t, err, "not a struct")
}

func TestTypeID_String(t *testing.T) {
	id := TypeID{PkgPath: northwindPkg, Name: "Order"}
	assert.Equal(t, "entity-sync/northwind.Order", id.String())

	idNoPkg := TypeID{Name: "int"}
	assert.Equal(t, "int", idNoPkg.String())
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "basic", TypeKindBasic.String())
	assert.Equal(t, "struct", TypeKindStruct.String())
	assert.Equal(t, "pointer", TypeKindPointer.String())
	assert.Equal(t, "slice", TypeKindSlice.String())
	assert.Equal(t, "array", TypeKindArray.String())
	assert.Equal(t, "alias", TypeKindAlias.String())
	assert.Equal(t, "external", TypeKindExternal.String())
	assert.Equal(t, "unknown", TypeKindUnknown.String())
}

func TestTypeInfo_String_Nil(t *testing.T) {
	var info *TypeInfo
	assert.Equal(t, "<nil>", info.String())
}
