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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
	"github.com/pgEdge/pgedge-salesmart/internal/normalize"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// NoDescription replaces a blank product description.
const NoDescription = "No description available"

// Transformer holds the lookup tables shared by every transform.
type Transformer struct {
	tables *normalize.Tables
}

// New returns a transformer using tables, or the built-in tables when
// tables is nil.
func New(tables *normalize.Tables) *Transformer {
	if tables == nil {
		tables = normalize.Default()
	}
	return &Transformer{tables: tables}
}

// Users builds dim_user. Duplicate ids keep the row with the latest signup
// date.
func (t *Transformer) Users(in source.Table[source.User]) (*Result[warehouse.DimUser], error) {
	if !in.Columns.Has(source.ColID) {
		return nil, missingColumn(in.Name, source.ColID)
	}

	res := &Result[warehouse.DimUser]{}
	byKey := make(map[int64]warehouse.DimUser)
	signedUp := make(map[int64]*time.Time)

	for i, raw := range in.Rows {
		if err := source.Validate(raw); err != nil {
			res.reject(in.Name, i, err.Error())
			continue
		}

		country := normalize.FreeText(value(raw.Country))
		u := warehouse.DimUser{
			UserKey:    *raw.ID,
			Username:   orUnknown(value(raw.Username)),
			FullName:   FullName(raw.FirstName, raw.LastName),
			Gender:     t.tables.Gender.Normalize(value(raw.Gender)),
			City:       normalize.FreeText(value(raw.City)),
			Country:    country,
			Continent:  t.tables.ContinentOf(country),
			SignupDate: parseDate(raw.CreatedAt),
		}

		stamp := parseTimestamp(raw.CreatedAt)
		if prev, ok := signedUp[u.UserKey]; ok && laterOf(prev, stamp) < 0 {
			continue
		}
		byKey[u.UserKey] = u
		signedUp[u.UserKey] = stamp
	}

	res.Rows = sortedValues(byKey, func(u warehouse.DimUser) int64 { return u.UserKey })
	return res, nil
}

// ProductResult is the dim_product output plus the alias map from every
// discarded storage id to the key that survived deduplication.
type ProductResult struct {
	Result[warehouse.DimProduct]
	Aliases map[int64]int64
}

// Resolve maps a product storage id to its product key.
func (p *ProductResult) Resolve(id int64) int64 {
	if key, ok := p.Aliases[id]; ok {
		return key
	}
	return id
}

// Products builds dim_product, keeping one row per product code: the one
// with the greatest updated_at. The comparison uses the full timestamp even
// though only the date is stored.
func (t *Transformer) Products(in source.Table[source.Product]) (*ProductResult, error) {
	for _, col := range []string{source.ColID, source.ColProductCode} {
		if !in.Columns.Has(col) {
			return nil, missingColumn(in.Name, col)
		}
	}

	res := &ProductResult{Aliases: make(map[int64]int64)}

	type group struct {
		winner  warehouse.DimProduct
		updated *time.Time
		members []int64
	}
	groups := make(map[string]*group)
	var order []string

	for i, raw := range in.Rows {
		if err := source.Validate(raw); err != nil {
			res.reject(in.Name, i, err.Error())
			continue
		}

		p := warehouse.DimProduct{
			ProductKey:    *raw.ID,
			ProductCode:   strings.TrimSpace(value(raw.Code)),
			ProductName:   strings.TrimSpace(value(raw.Name)),
			Category:      t.tables.Category.Normalize(value(raw.Category)),
			Description:   strings.TrimSpace(value(raw.Description)),
			Price:         parseMoney(raw.Price),
			StockQuantity: parseStock(raw.Stock),
			CreatedAt:     parseDate(raw.CreatedAt),
			UpdatedAt:     parseDate(raw.UpdatedAt),
		}
		if p.Description == "" {
			p.Description = NoDescription
		}

		// A blank code cannot be matched, so the row is its own group.
		groupKey := "code:" + p.ProductCode
		if p.ProductCode == "" {
			groupKey = "id:" + strconv.FormatInt(p.ProductKey, 10)
		}

		updated := parseTimestamp(raw.UpdatedAt)
		g, ok := groups[groupKey]
		if !ok {
			groups[groupKey] = &group{winner: p, updated: updated, members: []int64{p.ProductKey}}
			order = append(order, groupKey)
			continue
		}
		g.members = append(g.members, p.ProductKey)
		if laterOf(g.updated, updated) >= 0 {
			g.winner, g.updated = p, updated
		}
	}

	byKey := make(map[int64]warehouse.DimProduct, len(groups))
	for _, k := range order {
		g := groups[k]
		byKey[g.winner.ProductKey] = g.winner
		for _, id := range g.members {
			if id != g.winner.ProductKey {
				res.Aliases[id] = g.winner.ProductKey
			}
		}
	}

	res.Rows = sortedValues(byKey, func(p warehouse.DimProduct) int64 { return p.ProductKey })
	return res, nil
}

// Riders builds dim_rider. Duplicate ids keep the last row.
func (t *Transformer) Riders(in source.Table[source.Rider]) (*Result[warehouse.DimRider], error) {
	if !in.Columns.Has(source.ColID) {
		return nil, missingColumn(in.Name, source.ColID)
	}

	res := &Result[warehouse.DimRider]{}
	byKey := make(map[int64]warehouse.DimRider)

	for i, raw := range in.Rows {
		if err := source.Validate(raw); err != nil {
			res.reject(in.Name, i, err.Error())
			continue
		}

		name := strings.Join(strings.Fields(value(raw.Name)), " ")
		if name == "" {
			name = FullName(raw.FirstName, raw.LastName)
		}

		byKey[*raw.ID] = warehouse.DimRider{
			RiderKey:    *raw.ID,
			RiderName:   name,
			VehicleType: t.tables.Vehicle.Normalize(value(raw.VehicleType)),
			Gender:      t.tables.Gender.Normalize(value(raw.Gender)),
			Age:         parseAge(raw.Age),
			CourierName: t.tables.Courier.Apply(value(raw.Courier)),
		}
	}

	res.Rows = sortedValues(byKey, func(r warehouse.DimRider) int64 { return r.RiderKey })
	return res, nil
}

// Dates builds dim_date from the distinct parsable delivery dates of the
// order lines.
func (t *Transformer) Dates(in source.Table[source.OrderLine]) (*Result[warehouse.DimDate], error) {
	if !in.Columns.Has(source.ColDeliveryDate) {
		return nil, missingColumn(in.Name, source.ColDeliveryDate)
	}

	byKey := make(map[int64]warehouse.DimDate)
	for _, line := range in.Rows {
		if d, ok := calendar.Parse(line.DeliveryDate); ok {
			byKey[int64(d.Key)] = warehouse.NewDimDate(d)
		}
	}

	return &Result[warehouse.DimDate]{
		Rows: sortedValues(byKey, func(d warehouse.DimDate) int64 { return int64(d.DateKey) }),
	}, nil
}

// FullName joins the trimmed name parts. It returns Unknown when both are
// blank.
func FullName(first, last *string) string {
	name := strings.Join(strings.Fields(value(first)+" "+value(last)), " ")
	return orUnknown(name)
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return normalize.Unknown
	}
	return s
}

func parseDate(v calendar.Value) *time.Time {
	d, ok := calendar.Parse(v)
	if !ok {
		return nil
	}
	return &d.Time
}

func parseTimestamp(v calendar.Value) *time.Time {
	t, ok := calendar.ParseTimestamp(v)
	if !ok {
		return nil
	}
	return &t
}

func parseMoney(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseStock(s *string) int64 {
	if n := source.ParseInt(s); n != nil {
		return *n
	}
	return 0
}

func parseAge(s *string) *int {
	n := source.ParseInt(s)
	if n == nil || *n < 0 {
		return nil
	}
	age := int(*n)
	return &age
}

// laterOf compares two nullable timestamps for "keep newest" policies: it
// returns a negative number when b is older than a, and zero or more when
// b should replace a. Null sorts first and ties favour b.
func laterOf(a, b *time.Time) int {
	switch {
	case b == nil && a != nil:
		return -1
	case b == nil || a == nil:
		return 0
	case b.Before(*a):
		return -1
	default:
		return 0
	}
}

func sortedValues[T any](m map[int64]T, key func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}
