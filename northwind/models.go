// Package northwind holds the sample domain model used by the descriptor
// sources and the CLI examples.
package northwind

import (
	"time"

	"github.com/google/uuid"
)

// Customer places orders.
type Customer struct {
	CustomerID   uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CompanyName  string    `gorm:"size:40;not null"`
	Address      Location  `gorm:"embedded"`
	PhoneNumbers []Phone   `gorm:"serializer:json"`
	Orders       []Order
}

// Location is a postal address with an optional position.
type Location struct {
	Street *string  `gorm:"column:address;size:60"`
	City   *string  `gorm:"size:15"`
	Geo    GeoPoint `gorm:"embedded;embeddedPrefix:geo_"`
}

type GeoPoint struct {
	Lat float64
	Lng float64
}

// Phone is stored inline with its customer.
type Phone struct {
	Kind   string
	Number string
}

// Order is a customer order. RowVersion guards concurrent updates.
type Order struct {
	OrderID     int32      `gorm:"primaryKey"`
	CustomerID  *uuid.UUID `gorm:"type:uuid"`
	Customer    *Customer
	EmployeeID  *int32
	Employee    *Employee
	ShipCountry *string `gorm:"size:15"`
	Freight     float64 `gorm:"not null;default:0"`
	RowVersion  int32   `gorm:"not null;version"`
	PlacedAt    *time.Time
}

// InternationalOrder adds customs data to an order.
type InternationalOrder struct {
	Order

	CustomsDescription *string `gorm:"size:100"`
	ExciseTax          float64
}

// OrderDetail is one order line, keyed by order and product.
type OrderDetail struct {
	OrderID   int32 `gorm:"primaryKey"`
	Order     *Order
	ProductID int32 `gorm:"primaryKey"`
	Product   *Product
	Quantity  int16 `gorm:"not null;default:1"`
	UnitPrice float64
	Discount  float32
}

type Product struct {
	ProductID   int32  `gorm:"primaryKey"`
	ProductCode string `gorm:"size:20;uniqueIndex;naturalKey"`
	ProductName string `gorm:"size:40;not null"`
	CategoryID  *int32
	Category    *Category
	Status      ProductStatus `gorm:"size:12;default:'active'"`
}

// ProductStatus is the sales status of a product.
type ProductStatus string

const (
	ProductActive       ProductStatus = "active"
	ProductDiscontinued ProductStatus = "discontinued"
)

type Category struct {
	CategoryID   int32  `gorm:"primaryKey"`
	CategoryName string `gorm:"size:15;not null"`
	Picture      []byte
	Products     []Product
}

// Employee reports to another employee and may hold a badge.
type Employee struct {
	EmployeeID  int32  `gorm:"primaryKey"`
	LastName    string `gorm:"size:20;not null"`
	ReportsTo   *int32
	Manager     *Employee `gorm:"foreignKey:ReportsTo"`
	Badge       *Badge
	ShiftLength time.Duration
}

// Badge is assigned by security, so its key is not generated.
type Badge struct {
	BadgeID    string `gorm:"primaryKey;size:10"`
	EmployeeID int32
	IssuedAt   time.Time
}

// Models lists every model in dependency-friendly order.
func Models() []any {
	return []any{
		&Customer{},
		&Order{},
		&OrderDetail{},
		&Product{},
		&Category{},
		&Employee{},
		&Badge{},
		&InternationalOrder{},
	}
}
