//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source defines the raw operational records consumed by the
// transform pipeline, and reads and writes them in the operational
// database.
package source

import (
	"strings"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
)

// Column names of the extracted tables, lower-cased. Matching against
// extracted result columns is case-insensitive.
const (
	ColID           = "id"
	ColUsername     = "username"
	ColFirstName    = "firstname"
	ColLastName     = "lastname"
	ColGender       = "gender"
	ColCity         = "city"
	ColCountry      = "country"
	ColCreatedAt    = "createdat"
	ColUpdatedAt    = "updatedat"
	ColName         = "name"
	ColCategory     = "category"
	ColDescription  = "description"
	ColProductCode  = "productcode"
	ColPrice        = "price"
	ColStock        = "stock"
	ColRiderName    = "rider_name"
	ColVehicleType  = "vehicletype"
	ColAge          = "age"
	ColCourierName  = "courier_name"
	ColOrderNumber  = "ordernumber"
	ColUserID       = "userid"
	ColProductID    = "productid"
	ColRiderID      = "deliveryriderid"
	ColDeliveryDate = "deliverydate"
	ColQuantity     = "quantity"
)

// Column sets produced by the extraction queries.
var (
	UserColumns = []string{
		ColID, ColUsername, ColFirstName, ColLastName, ColGender, ColCity, ColCountry, ColCreatedAt,
	}
	ProductColumns = []string{
		ColID, ColName, ColCategory, ColDescription, ColProductCode, ColPrice, ColStock,
		ColCreatedAt, ColUpdatedAt,
	}
	RiderColumns = []string{
		ColID, ColFirstName, ColLastName, ColVehicleType, ColGender, ColAge, ColCourierName,
	}
	OrderLineColumns = []string{
		ColQuantity, ColPrice, ColOrderNumber, ColUserID, ColProductID, ColRiderID, ColDeliveryDate,
	}
)

// User is a raw users row.
type User struct {
	ID        *int64  `col:"id" validate:"required"`
	Username  *string `col:"username"`
	FirstName *string `col:"firstName"`
	LastName  *string `col:"lastName"`
	Gender    *string `col:"gender"`
	City      *string `col:"city"`
	Country   *string `col:"country"`
	CreatedAt calendar.Value
}

// Product is a raw products row. Price and Stock stay textual until the
// transform parses them.
type Product struct {
	ID          *int64  `col:"id" validate:"required"`
	Code        *string `col:"productCode"`
	Name        *string `col:"name"`
	Category    *string `col:"category"`
	Description *string `col:"description"`
	Price       *string `col:"price"`
	Stock       *string `col:"stock"`
	CreatedAt   calendar.Value
	UpdatedAt   calendar.Value
}

// Rider is a raw rider row joined to its courier. Name is set when the
// source already concatenated the name parts.
type Rider struct {
	ID          *int64  `col:"id" validate:"required"`
	Name        *string `col:"rider_name"`
	FirstName   *string `col:"firstName"`
	LastName    *string `col:"lastName"`
	VehicleType *string `col:"vehicleType"`
	Gender      *string `col:"gender"`
	Age         *string `col:"age"`
	Courier     *string `col:"courier_name"`
}

// OrderLine is one order item joined to its order header and product
// price.
type OrderLine struct {
	OrderNumber  *string `col:"orderNumber" validate:"required"`
	UserID       *int64  `col:"userId"`
	ProductID    *int64  `col:"ProductId"`
	RiderID      *int64  `col:"deliveryRiderId"`
	DeliveryDate calendar.Value
	Quantity     *string `col:"quantity"`
	UnitPrice    *string `col:"price"`
}

// Columns is the set of lower-cased column names present in an extracted
// table.
type Columns map[string]struct{}

// NewColumns builds a column set, lower-casing every name.
func NewColumns(names ...string) Columns {
	c := make(Columns, len(names))
	for _, n := range names {
		c[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	return c
}

// Has reports whether the named column was present.
func (c Columns) Has(name string) bool {
	_, ok := c[strings.ToLower(name)]
	return ok
}

// Table is an extracted table: its rows plus the columns the source
// actually returned.
type Table[T any] struct {
	Name    string
	Columns Columns
	Rows    []T
}

// NewTable builds a table with the given columns.
func NewTable[T any](name string, columns []string, rows []T) Table[T] {
	return Table[T]{Name: name, Columns: NewColumns(columns...), Rows: rows}
}

// Snapshot is one full extraction of the operational data.
type Snapshot struct {
	Users      Table[User]
	Products   Table[Product]
	Riders     Table[Rider]
	OrderLines Table[OrderLine]
}

// Value helpers for building raw rows.

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int64) *int64 { return &n }
