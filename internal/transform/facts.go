//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package transform

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// Dimensions are the built dimensions a fact transform resolves its
// foreign keys against.
type Dimensions struct {
	Users    []warehouse.DimUser
	Products *ProductResult
	Riders   []warehouse.DimRider
}

// Facts builds fact_sales with one row per accepted order line, in input
// order. Any foreign key that does not resolve fails the whole batch.
func (t *Transformer) Facts(in source.Table[source.OrderLine], dims Dimensions) (*Result[warehouse.FactSales], error) {
	for _, col := range source.OrderLineColumns {
		if !in.Columns.Has(col) {
			return nil, missingColumn(in.Name, col)
		}
	}

	users := make(map[int64]struct{}, len(dims.Users))
	for _, u := range dims.Users {
		users[u.UserKey] = struct{}{}
	}
	riders := make(map[int64]struct{}, len(dims.Riders))
	for _, r := range dims.Riders {
		riders[r.RiderKey] = struct{}{}
	}
	products := make(map[int64]struct{})
	if dims.Products != nil {
		for _, p := range dims.Products.Rows {
			products[p.ProductKey] = struct{}{}
		}
	}

	meanQty, meanPrice := means(in.Rows)

	res := &Result[warehouse.FactSales]{Rows: make([]warehouse.FactSales, 0, len(in.Rows))}
	for i, raw := range in.Rows {
		if err := source.Validate(raw); err != nil {
			res.reject(in.Name, i, err.Error())
			continue
		}
		orderNumber := strings.TrimSpace(*raw.OrderNumber)
		if orderNumber == "" {
			res.reject(in.Name, i, source.ColOrderNumber+" is blank")
			continue
		}

		customer, err := resolve(in.Name, i, source.ColUserID, raw.UserID, users, nil)
		if err != nil {
			return nil, err
		}
		product, err := resolve(in.Name, i, source.ColProductID, raw.ProductID, products, dims.Products)
		if err != nil {
			return nil, err
		}
		rider, err := resolve(in.Name, i, source.ColRiderID, raw.RiderID, riders, nil)
		if err != nil {
			return nil, err
		}

		qty := meanQty
		if q, ok := parseDecimal(raw.Quantity); ok {
			qty = q.Round(0)
		}
		price := meanPrice
		if p, ok := parseDecimal(raw.UnitPrice); ok {
			price = p.Round(2)
		}
		if qty.IsNegative() {
			res.reject(in.Name, i, "negative quantity")
			continue
		}
		if price.IsNegative() {
			res.reject(in.Name, i, "negative unit price")
			continue
		}

		f := warehouse.FactSales{
			CustomerKey: customer,
			ProductKey:  product,
			RiderKey:    rider,
			OrderNumber: orderNumber,
			Quantity:    qty.IntPart(),
			UnitPrice:   price,
		}
		f.SalesAmount = warehouse.SalesAmount(f.Quantity, f.UnitPrice)
		if d, ok := calendar.Parse(raw.DeliveryDate); ok {
			key := d.Key
			f.DateKey = &key
		}
		res.Rows = append(res.Rows, f)
	}

	return res, nil
}

func resolve(table string, row int, col string, id *int64, known map[int64]struct{}, aliases *ProductResult) (int64, error) {
	if id == nil {
		return 0, &StructuralError{Table: table, Column: col, Row: row, Reason: "foreign key is null"}
	}
	key := *id
	if aliases != nil {
		key = aliases.Resolve(key)
	}
	if _, ok := known[key]; !ok {
		return 0, &StructuralError{Table: table, Column: col, Row: row,
			Reason: "foreign key " + strconv.FormatInt(*id, 10) + " does not resolve"}
	}
	return key, nil
}

// means returns the batch means used to impute a missing quantity (rounded
// to a whole number) or unit price (rounded to cents), taken over the lines
// that will not be rejected. Both are zero when no such line carries a value.
func means(lines []source.OrderLine) (qty, price decimal.Decimal) {
	var qtySum, priceSum decimal.Decimal
	var qtyN, priceN int64
	for _, l := range lines {
		if !imputable(l) {
			continue
		}
		if q, ok := parseDecimal(l.Quantity); ok {
			qtySum = qtySum.Add(q)
			qtyN++
		}
		if p, ok := parseDecimal(l.UnitPrice); ok {
			priceSum = priceSum.Add(p)
			priceN++
		}
	}
	if qtyN > 0 {
		qty = qtySum.Div(decimal.NewFromInt(qtyN)).Round(0)
	}
	if priceN > 0 {
		price = priceSum.Div(decimal.NewFromInt(priceN)).Round(2)
	}
	return qty, price
}

// imputable reports whether l passes the row checks Facts applies, so its
// values may feed the imputation means.
func imputable(l source.OrderLine) bool {
	if source.Validate(l) != nil || strings.TrimSpace(*l.OrderNumber) == "" {
		return false
	}
	if q, ok := parseDecimal(l.Quantity); ok && q.Round(0).IsNegative() {
		return false
	}
	if p, ok := parseDecimal(l.UnitPrice); ok && p.Round(2).IsNegative() {
		return false
	}
	return true
}

func parseDecimal(s *string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
