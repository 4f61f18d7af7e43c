//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"strconv"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
)

// Courier is a couriers row.
type Courier struct {
	ID   int64
	Name string
}

// RiderRow is a riders row as stored, referencing its courier by id.
type RiderRow struct {
	ID          int64
	FirstName   *string
	LastName    *string
	VehicleType *string
	Gender      *string
	Age         *int64
	CourierID   *int64
}

// Order is an orders header row.
type Order struct {
	ID           int64
	OrderNumber  string
	UserID       *int64
	RiderID      *int64
	DeliveryDate calendar.Value
}

// OrderItem is an orderitems row.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  *int64
}

// Dataset is an image of the operational database, one slice per table.
type Dataset struct {
	Users      []User
	Products   []Product
	Couriers   []Courier
	Riders     []RiderRow
	Orders     []Order
	OrderItems []OrderItem
}

// Snapshot joins the dataset the same way the extraction queries do, so a
// generated dataset can be transformed without a round trip through a
// database.
func (d *Dataset) Snapshot() *Snapshot {
	couriers := make(map[int64]string, len(d.Couriers))
	for _, c := range d.Couriers {
		couriers[c.ID] = c.Name
	}

	riders := make([]Rider, 0, len(d.Riders))
	for _, r := range d.Riders {
		rider := Rider{
			ID:          Int(r.ID),
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			VehicleType: r.VehicleType,
			Gender:      r.Gender,
		}
		if r.Age != nil {
			rider.Age = String(strconv.FormatInt(*r.Age, 10))
		}
		if r.CourierID != nil {
			if name, ok := couriers[*r.CourierID]; ok {
				rider.Courier = String(name)
			}
		}
		riders = append(riders, rider)
	}

	orders := make(map[int64]Order, len(d.Orders))
	for _, o := range d.Orders {
		orders[o.ID] = o
	}
	prices := make(map[int64]*string, len(d.Products))
	for _, p := range d.Products {
		if p.ID != nil {
			prices[*p.ID] = p.Price
		}
	}

	lines := make([]OrderLine, 0, len(d.OrderItems))
	for _, item := range d.OrderItems {
		line := OrderLine{
			ProductID: Int(item.ProductID),
			UnitPrice: prices[item.ProductID],
		}
		if item.Quantity != nil {
			line.Quantity = String(strconv.FormatInt(*item.Quantity, 10))
		}
		if o, ok := orders[item.OrderID]; ok {
			line.OrderNumber = String(o.OrderNumber)
			line.UserID = o.UserID
			line.RiderID = o.RiderID
			line.DeliveryDate = o.DeliveryDate
		}
		lines = append(lines, line)
	}

	return &Snapshot{
		Users:      NewTable("users", UserColumns, d.Users),
		Products:   NewTable("products", ProductColumns, d.Products),
		Riders:     NewTable("riders", RiderColumns, riders),
		OrderLines: NewTable("order_lines", OrderLineColumns, lines),
	}
}
