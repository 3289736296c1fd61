package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Category", "Categories"},
		{"Order", "Orders"},
		{"Territory", "Territories"},
		{"Employee", "Employees"},
		{"Day", "Daies"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Pluralize(tt.in))
		})
	}
}

func TestAssociationName(t *testing.T) {
	assert.Equal(t, "AN_Customer_Order", AssociationName("Order", "Customer", false))
	assert.Equal(t, "AN_Customer_Order", AssociationName("Customer", "Order", false))
	assert.Equal(t, "AN_Badge_Employee_1to1", AssociationName("Employee", "Badge", true))
	assert.Equal(t, "AN_Employee_Employee", AssociationName("Employee", "Employee", false))
	// ordinal comparison: upper case sorts before lower case
	assert.Equal(t, "AN_Zeta_alpha", AssociationName("alpha", "Zeta", false))
}

func TestColumnSignature(t *testing.T) {
	tests := []struct {
		name string
		cols []string
		want string
	}{
		{"single", []string{"CustomerID"}, "customerid"},
		{"brackets", []string{"[CustomerID]"}, "customerid"},
		{"quotes", []string{`"OrderID"`, "`ProductID`"}, "orderid,productid"},
		{"order independent", []string{"B", "a"}, "a,b"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnSignature(tt.cols))
		})
	}
}

func TestUnbracket(t *testing.T) {
	assert.Equal(t, "x", Unbracket("[x]"))
	assert.Equal(t, "[x", Unbracket("[x"))
	assert.Equal(t, "x", Unbracket("x"))
	assert.Equal(t, "", Unbracket(""))
}

func TestNormalizeTypeName(t *testing.T) {
	tests := []struct {
		in        string
		short, ns string
	}{
		{"Customer", "Customer", ""},
		{"Customer:#Northwind.Model", "Customer", "Northwind.Model"},
		{"Northwind.Model.Customer", "Customer", "Northwind.Model"},
		{"Northwind.Model.Customer, Northwind.Model, Version=1.0.0.0", "Customer", "Northwind.Model"},
		{" Customer , Model", "Customer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			short, ns := NormalizeTypeName(tt.in)
			assert.Equal(t, tt.short, short)
			assert.Equal(t, tt.ns, ns)
		})
	}
}
