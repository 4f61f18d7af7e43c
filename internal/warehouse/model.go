//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse defines the star schema records and persists them in
// PostgreSQL.
package warehouse

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
)

// DimUser is a row of dim_user.
type DimUser struct {
	UserKey    int64      `json:"user_key"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	Gender     string     `json:"gender"`
	City       string     `json:"city"`
	Country    string     `json:"country"`
	Continent  string     `json:"continent"`
	SignupDate *time.Time `json:"signup_date"`
}

// DimProduct is a row of dim_product.
type DimProduct struct {
	ProductKey    int64               `json:"product_key"`
	ProductCode   string              `json:"product_code"`
	ProductName   string              `json:"product_name"`
	Category      string              `json:"category"`
	Description   string              `json:"description"`
	Price         decimal.NullDecimal `json:"price"`
	StockQuantity int64               `json:"stock_quantity"`
	CreatedAt     *time.Time          `json:"created_at"`
	UpdatedAt     *time.Time          `json:"updated_at"`
}

// DimRider is a row of dim_rider.
type DimRider struct {
	RiderKey    int64  `json:"rider_key"`
	RiderName   string `json:"rider_name"`
	VehicleType string `json:"vehicle_type"`
	Gender      string `json:"gender"`
	Age         *int   `json:"age"`
	CourierName string `json:"courier_name"`
}

// DimDate is a row of dim_date.
type DimDate struct {
	DateKey   int       `json:"date_key"`
	FullDate  time.Time `json:"full_date"`
	DayName   string    `json:"day_name"`
	MonthName string    `json:"month_name"`
	Day       int       `json:"day"`
	Month     int       `json:"month"`
	Quarter   int       `json:"quarter"`
	Year      int       `json:"year"`
	IsWeekend bool      `json:"is_weekend"`
}

// NewDimDate builds the dimension row for a calendar date.
func NewDimDate(d calendar.Date) DimDate {
	return DimDate{
		DateKey:   d.Key,
		FullDate:  d.Time,
		DayName:   d.DayName,
		MonthName: d.MonthName,
		Day:       d.Day,
		Month:     d.Month,
		Quarter:   d.Quarter,
		Year:      d.Year,
		IsWeekend: d.Weekend,
	}
}

// FactSales is one order line. Several rows may carry the same
// OrderNumber. DateKey is nil when the delivery date was unparseable.
type FactSales struct {
	CustomerKey int64           `json:"customer_key"`
	ProductKey  int64           `json:"product_key"`
	RiderKey    int64           `json:"rider_key"`
	DateKey     *int            `json:"date_key"`
	OrderNumber string          `json:"order_number"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SalesAmount decimal.Decimal `json:"sales_amount"`
}

// SalesAmount returns quantity x unit price rounded to two places.
func SalesAmount(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(quantity).Mul(unitPrice).Round(2)
}

// Snapshot is a complete warehouse image. It is not modified after it is
// built, so it may be read from many goroutines.
type Snapshot struct {
	Users    []DimUser
	Products []DimProduct
	Riders   []DimRider
	Dates    []DimDate
	Sales    []FactSales
}

// Counts returns the row count of every table, keyed by table name.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		TableUser:    len(s.Users),
		TableProduct: len(s.Products),
		TableRider:   len(s.Riders),
		TableDate:    len(s.Dates),
		TableSales:   len(s.Sales),
	}
}
