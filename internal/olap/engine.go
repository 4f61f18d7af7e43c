//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package olap answers analytical queries over an in-memory warehouse
// snapshot. Every query is read-only and deterministic, and an Engine may
// be shared between goroutines.
//
// Joins behave like SQL inner joins: a fact whose date key is null takes
// part in queries that do not touch dim_date and is left out of those
// that do.
package olap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// ErrInvalidFilter is returned when a filter names an attribute the query
// does not support.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter attributes.
const (
	AttrContinent = "continent"
	AttrCountry   = "country"
	AttrCity      = "city"
	AttrGender    = "gender"
	AttrYear      = "year"
	AttrCategory  = "category"
	AttrCourier   = "courier"
)

// UserAttributes are the filter attributes of user queries.
var UserAttributes = []string{AttrContinent, AttrCountry, AttrCity, AttrGender}

// DiceAttributes are the filter attributes of Dice.
var DiceAttributes = []string{AttrYear, AttrCategory, AttrCity, AttrCourier}

// Filter maps an attribute to its allowed values. Attributes are ANDed;
// values of one attribute are ORed. An attribute with no values does not
// filter. Matching ignores case and surrounding whitespace.
type Filter map[string][]string

// Validate returns ErrInvalidFilter when f names an attribute outside
// allowed.
func (f Filter) Validate(allowed ...string) error {
	_, err := f.compile(allowed...)
	return err
}

type matcher map[string]map[string]struct{}

func (f Filter) compile(allowed ...string) (matcher, error) {
	m := make(matcher)
	for attr, values := range f {
		name := strings.ToLower(strings.TrimSpace(attr))
		if !contains(allowed, name) {
			return nil, fmt.Errorf("%w: unknown attribute %q (allowed: %s)",
				ErrInvalidFilter, attr, strings.Join(allowed, ", "))
		}
		if len(values) == 0 {
			continue
		}
		set, ok := m[name]
		if !ok {
			set = make(map[string]struct{}, len(values))
			m[name] = set
		}
		for _, v := range values {
			set[fold(v)] = struct{}{}
		}
	}
	return m, nil
}

func (m matcher) allows(attr, value string) bool {
	set, ok := m[attr]
	if !ok {
		return true
	}
	_, ok = set[fold(value)]
	return ok
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Engine indexes a warehouse snapshot for querying.
type Engine struct {
	snap     *warehouse.Snapshot
	users    map[int64]*warehouse.DimUser
	products map[int64]*warehouse.DimProduct
	riders   map[int64]*warehouse.DimRider
	dates    map[int]*warehouse.DimDate
}

// New indexes snap. The snapshot must not be modified afterwards.
func New(snap *warehouse.Snapshot) *Engine {
	if snap == nil {
		snap = &warehouse.Snapshot{}
	}
	e := &Engine{
		snap:     snap,
		users:    make(map[int64]*warehouse.DimUser, len(snap.Users)),
		products: make(map[int64]*warehouse.DimProduct, len(snap.Products)),
		riders:   make(map[int64]*warehouse.DimRider, len(snap.Riders)),
		dates:    make(map[int]*warehouse.DimDate, len(snap.Dates)),
	}
	for i := range snap.Users {
		e.users[snap.Users[i].UserKey] = &snap.Users[i]
	}
	for i := range snap.Products {
		e.products[snap.Products[i].ProductKey] = &snap.Products[i]
	}
	for i := range snap.Riders {
		e.riders[snap.Riders[i].RiderKey] = &snap.Riders[i]
	}
	for i := range snap.Dates {
		e.dates[snap.Dates[i].DateKey] = &snap.Dates[i]
	}
	return e
}

// Snapshot returns the indexed snapshot.
func (e *Engine) Snapshot() *warehouse.Snapshot {
	return e.snap
}

func (e *Engine) date(f *warehouse.FactSales) (*warehouse.DimDate, bool) {
	if f.DateKey == nil {
		return nil, false
	}
	d, ok := e.dates[*f.DateKey]
	return d, ok
}

func (e *Engine) each(fn func(f *warehouse.FactSales)) {
	for i := range e.snap.Sales {
		fn(&e.snap.Sales[i])
	}
}

// Summary holds the measures shared by the rollup queries.
type Summary struct {
	TotalOrders   int
	TotalSales    decimal.Decimal
	TotalQuantity int64
	AvgOrderValue decimal.Decimal
}

// measure accumulates sales, quantity and distinct orders.
type measure struct {
	sales    decimal.Decimal
	quantity int64
	orders   map[string]struct{}
}

func newMeasure() *measure {
	return &measure{orders: make(map[string]struct{})}
}

func (m *measure) add(f *warehouse.FactSales) {
	m.sales = m.sales.Add(f.SalesAmount)
	m.quantity += f.Quantity
	m.orders[f.OrderNumber] = struct{}{}
}

func (m *measure) summary() Summary {
	return Summary{
		TotalOrders:   len(m.orders),
		TotalSales:    m.sales,
		TotalQuantity: m.quantity,
		AvgOrderValue: averageOrderValue(m.sales, len(m.orders)),
	}
}

// averageOrderValue divides total sales by the distinct order count,
// rounded to cents. It is zero when there are no orders.
func averageOrderValue(total decimal.Decimal, orders int) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(orders)), 2)
}

// groups is an insertion-ordered set of measures.
type groups[K comparable] struct {
	index map[K]*measure
	keys  []K
}

func newGroups[K comparable]() *groups[K] {
	return &groups[K]{index: make(map[K]*measure)}
}

func (g *groups[K]) add(k K, f *warehouse.FactSales) {
	m, ok := g.index[k]
	if !ok {
		m = newMeasure()
		g.index[k] = m
		g.keys = append(g.keys, k)
	}
	m.add(f)
}

func (g *groups[K]) get(k K) *measure {
	return g.index[k]
}

func sortedDistinct(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// bySalesDesc orders by sales descending; equal sales fall back to less.
func bySalesDesc(a, b decimal.Decimal, less bool) bool {
	if c := a.Cmp(b); c != 0 {
		return c > 0
	}
	return less
}
