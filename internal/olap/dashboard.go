package olap

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// KPI holds the headline figures of the whole fact table.
type KPI struct {
	TotalOrders   int
	TotalSales    decimal.Decimal
	AvgOrderValue decimal.Decimal
	Users         int
	Riders        int
	Products      int
}

// KPIs computes the headline figures. The average order value divides by
// distinct orders, not by order lines.
func (e *Engine) KPIs() KPI {
	m := newMeasure()
	users := make(map[int64]struct{})
	riders := make(map[int64]struct{})
	products := make(map[int64]struct{})
	e.each(func(f *warehouse.FactSales) {
		m.add(f)
		users[f.CustomerKey] = struct{}{}
		riders[f.RiderKey] = struct{}{}
		products[f.ProductKey] = struct{}{}
	})
	return KPI{
		TotalOrders:   len(m.orders),
		TotalSales:    m.sales,
		AvgOrderValue: averageOrderValue(m.sales, len(m.orders)),
		Users:         len(users),
		Riders:        len(riders),
		Products:      len(products),
	}
}

// Performer is one entry of a top-N ranking.
type Performer struct {
	Key         int64
	Name        string
	TotalSales  decimal.Decimal
	TotalOrders int
}

// TopUsers ranks users by total sales. n <= 0 returns every user with
// sales.
func (e *Engine) TopUsers(n int) []Performer {
	return e.top(n, func(f *warehouse.FactSales) int64 { return f.CustomerKey }, func(key int64) string {
		if u, ok := e.users[key]; ok {
			return u.FullName
		}
		return ""
	})
}

// TopRiders ranks riders by total sales.
func (e *Engine) TopRiders(n int) []Performer {
	return e.top(n, func(f *warehouse.FactSales) int64 { return f.RiderKey }, func(key int64) string {
		if r, ok := e.riders[key]; ok {
			return r.RiderName
		}
		return ""
	})
}

// TopProducts ranks products by total sales.
func (e *Engine) TopProducts(n int) []Performer {
	return e.top(n, func(f *warehouse.FactSales) int64 { return f.ProductKey }, func(key int64) string {
		if p, ok := e.products[key]; ok {
			return p.ProductName
		}
		return ""
	})
}

func (e *Engine) top(n int, key func(*warehouse.FactSales) int64, name func(int64) string) []Performer {
	g := newGroups[int64]()
	e.each(func(f *warehouse.FactSales) { g.add(key(f), f) })

	out := make([]Performer, 0, len(g.keys))
	for _, k := range g.keys {
		m := g.get(k)
		out = append(out, Performer{Key: k, Name: name(k), TotalSales: m.sales, TotalOrders: len(m.orders)})
	}
	sort.Slice(out, func(i, j int) bool {
		return bySalesDesc(out[i].TotalSales, out[j].TotalSales, out[i].Key < out[j].Key)
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// RiderOrder is one order, its lines summed, with the rider and date of
// the order's first line.
type RiderOrder struct {
	OrderNumber string
	Lines       int
	Quantity    int64
	TotalSales  decimal.Decimal

	RiderKey    int64
	RiderName   string
	VehicleType string
	Gender      string
	Age         *int
	CourierName string

	DateKey   int
	FullDate  time.Time
	Year      int
	Month     int
	MonthName string
	DayName   string
	IsWeekend bool
}

// RiderOrders returns one row per order number, ordered by order number.
func (e *Engine) RiderOrders() []RiderOrder {
	index := make(map[string]int)
	var out []RiderOrder
	e.each(func(f *warehouse.FactSales) {
		d, ok := e.date(f)
		if !ok {
			return
		}
		r, ok := e.riders[f.RiderKey]
		if !ok {
			return
		}
		if i, seen := index[f.OrderNumber]; seen {
			o := &out[i]
			o.Lines++
			o.Quantity += f.Quantity
			o.TotalSales = o.TotalSales.Add(f.SalesAmount)
			return
		}
		index[f.OrderNumber] = len(out)
		out = append(out, RiderOrder{
			OrderNumber: f.OrderNumber,
			Lines:       1,
			Quantity:    f.Quantity,
			TotalSales:  f.SalesAmount,
			RiderKey:    r.RiderKey,
			RiderName:   r.RiderName,
			VehicleType: r.VehicleType,
			Gender:      r.Gender,
			Age:         r.Age,
			CourierName: r.CourierName,
			DateKey:     d.DateKey,
			FullDate:    d.FullDate,
			Year:        d.Year,
			Month:       d.Month,
			MonthName:   d.MonthName,
			DayName:     d.DayName,
			IsWeekend:   d.IsWeekend,
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out
}

// ProductDay is one product's sales on one date.
type ProductDay struct {
	ProductKey  int64
	ProductName string
	Category    string
	DateKey     int
	FullDate    time.Time
	TotalSales  decimal.Decimal
	Quantity    int64
}

// ProductDaily groups sales by (product, date), ordered by product key and
// then date.
func (e *Engine) ProductDaily() []ProductDay {
	type productDate struct {
		product int64
		date    int
	}
	g := newGroups[productDate]()
	e.each(func(f *warehouse.FactSales) {
		d, ok := e.date(f)
		if !ok {
			return
		}
		if _, ok := e.products[f.ProductKey]; !ok {
			return
		}
		g.add(productDate{f.ProductKey, d.DateKey}, f)
	})

	out := make([]ProductDay, 0, len(g.keys))
	for _, k := range g.keys {
		p := e.products[k.product]
		m := g.get(k)
		out = append(out, ProductDay{
			ProductKey:  p.ProductKey,
			ProductName: p.ProductName,
			Category:    p.Category,
			DateKey:     k.date,
			FullDate:    e.dates[k.date].FullDate,
			TotalSales:  m.sales,
			Quantity:    m.quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductKey != out[j].ProductKey {
			return out[i].ProductKey < out[j].ProductKey
		}
		return out[i].DateKey < out[j].DateKey
	})
	return out
}
