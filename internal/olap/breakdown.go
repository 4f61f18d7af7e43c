package olap

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// Rollup labels.
const (
	AllCouriers     = "All Couriers"
	AllVehicleTypes = "All Vehicle Types"
)

// CategorySummary holds the measures of one product category.
type CategorySummary struct {
	Category string
	Summary
	ProductCount int
}

// CourierSummary holds the measures of one courier.
type CourierSummary struct {
	CourierName string
	Summary
	RiderCount int
}

// RegionSummary holds the measures of one continent.
type RegionSummary struct {
	Continent string
	Summary
	CountryCount int
}

// CategoryRollup summarizes sales per category, highest sales first.
func (e *Engine) CategoryRollup() []CategorySummary {
	g := newGroups[string]()
	members := make(map[string]map[int64]struct{})
	e.each(func(f *warehouse.FactSales) {
		p, ok := e.products[f.ProductKey]
		if !ok {
			return
		}
		g.add(p.Category, f)
		addMember(members, p.Category, p.ProductKey)
	})

	out := make([]CategorySummary, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, CategorySummary{Category: k, Summary: g.get(k).summary(), ProductCount: len(members[k])})
	}
	sort.Slice(out, func(i, j int) bool {
		return bySalesDesc(out[i].TotalSales, out[j].TotalSales, out[i].Category < out[j].Category)
	})
	return out
}

// CourierRollup summarizes sales per courier, highest sales first.
func (e *Engine) CourierRollup() []CourierSummary {
	g := newGroups[string]()
	members := make(map[string]map[int64]struct{})
	e.each(func(f *warehouse.FactSales) {
		r, ok := e.riders[f.RiderKey]
		if !ok {
			return
		}
		g.add(r.CourierName, f)
		addMember(members, r.CourierName, r.RiderKey)
	})

	out := make([]CourierSummary, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, CourierSummary{CourierName: k, Summary: g.get(k).summary(), RiderCount: len(members[k])})
	}
	sort.Slice(out, func(i, j int) bool {
		return bySalesDesc(out[i].TotalSales, out[j].TotalSales, out[i].CourierName < out[j].CourierName)
	})
	return out
}

// RegionRollup summarizes sales per customer continent, highest sales
// first.
func (e *Engine) RegionRollup() []RegionSummary {
	g := newGroups[string]()
	countries := make(map[string]map[string]struct{})
	e.each(func(f *warehouse.FactSales) {
		u, ok := e.users[f.CustomerKey]
		if !ok {
			return
		}
		g.add(u.Continent, f)
		set, ok := countries[u.Continent]
		if !ok {
			set = make(map[string]struct{})
			countries[u.Continent] = set
		}
		set[u.Country] = struct{}{}
	})

	out := make([]RegionSummary, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, RegionSummary{Continent: k, Summary: g.get(k).summary(), CountryCount: len(countries[k])})
	}
	sort.Slice(out, func(i, j int) bool {
		return bySalesDesc(out[i].TotalSales, out[j].TotalSales, out[i].Continent < out[j].Continent)
	})
	return out
}

func addMember(members map[string]map[int64]struct{}, group string, key int64) {
	set, ok := members[group]
	if !ok {
		set = make(map[int64]struct{})
		members[group] = set
	}
	set[key] = struct{}{}
}

// CourierVehicleSales is one row of the courier/vehicle rollup.
type CourierVehicleSales struct {
	CourierName string
	VehicleType string
	TotalSales  decimal.Decimal
}

// CourierVehicleRollup totals sales per (courier, vehicle type), with a
// subtotal row per courier labelled AllVehicleTypes and a final grand
// total labelled AllCouriers. Couriers and vehicle types are sorted.
func (e *Engine) CourierVehicleRollup() []CourierVehicleSales {
	type pair struct{ courier, vehicle string }
	detail := newGroups[pair]()
	subtotal := newGroups[string]()
	total := decimal.Zero
	e.each(func(f *warehouse.FactSales) {
		r, ok := e.riders[f.RiderKey]
		if !ok {
			return
		}
		detail.add(pair{r.CourierName, r.VehicleType}, f)
		subtotal.add(r.CourierName, f)
		total = total.Add(f.SalesAmount)
	})

	pairs := append([]pair(nil), detail.keys...)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].courier != pairs[j].courier {
			return pairs[i].courier < pairs[j].courier
		}
		return pairs[i].vehicle < pairs[j].vehicle
	})

	out := make([]CourierVehicleSales, 0, len(pairs)+len(subtotal.keys)+1)
	for i, p := range pairs {
		out = append(out, CourierVehicleSales{CourierName: p.courier, VehicleType: p.vehicle, TotalSales: detail.get(p).sales})
		if i == len(pairs)-1 || pairs[i+1].courier != p.courier {
			out = append(out, CourierVehicleSales{
				CourierName: p.courier,
				VehicleType: AllVehicleTypes,
				TotalSales:  subtotal.get(p.courier).sales,
			})
		}
	}
	if len(pairs) > 0 {
		out = append(out, CourierVehicleSales{CourierName: AllCouriers, VehicleType: AllVehicleTypes, TotalSales: total})
	}
	return out
}

// CourierGender is one courier's sales split by rider gender.
type CourierGender struct {
	CourierName string
	MaleSales   decimal.Decimal
	FemaleSales decimal.Decimal
	TotalSales  decimal.Decimal
}

// CourierGenderPivot pivots rider gender into columns, one row per
// courier in name order. Riders of any other gender count toward the
// total only.
func (e *Engine) CourierGenderPivot() []CourierGender {
	index := make(map[string]*CourierGender)
	e.each(func(f *warehouse.FactSales) {
		r, ok := e.riders[f.RiderKey]
		if !ok {
			return
		}
		row, ok := index[r.CourierName]
		if !ok {
			row = &CourierGender{CourierName: r.CourierName}
			index[r.CourierName] = row
		}
		switch r.Gender {
		case "Male":
			row.MaleSales = row.MaleSales.Add(f.SalesAmount)
		case "Female":
			row.FemaleSales = row.FemaleSales.Add(f.SalesAmount)
		}
		row.TotalSales = row.TotalSales.Add(f.SalesAmount)
	})

	out := make([]CourierGender, 0, len(index))
	for _, row := range index {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourierName < out[j].CourierName })
	return out
}

// DiceRow is one cell of the multi-dimensional dice.
type DiceRow struct {
	Year        int
	Month       int
	MonthName   string
	Category    string
	ProductKey  int64
	ProductName string
	City        string
	CourierName string
	VehicleType string
	Summary
}

// Dice restricts facts by year, category, customer city and courier, then
// groups them by (year, month, category, product, city, courier,
// vehicle). Rows are ordered by sales descending, then by the grouping
// columns with the product key last.
func (e *Engine) Dice(f Filter) ([]DiceRow, error) {
	m, err := f.compile(DiceAttributes...)
	if err != nil {
		return nil, err
	}

	type cell struct {
		year, month int
		product     int64
		city        string
		courier     string
		vehicle     string
	}
	g := newGroups[cell]()
	e.each(func(fact *warehouse.FactSales) {
		d, ok := e.date(fact)
		if !ok {
			return
		}
		p, ok := e.products[fact.ProductKey]
		if !ok {
			return
		}
		u, ok := e.users[fact.CustomerKey]
		if !ok {
			return
		}
		r, ok := e.riders[fact.RiderKey]
		if !ok {
			return
		}
		if !m.allows(AttrYear, strconv.Itoa(d.Year)) || !m.allows(AttrCategory, p.Category) ||
			!m.allows(AttrCity, u.City) || !m.allows(AttrCourier, r.CourierName) {
			return
		}
		g.add(cell{d.Year, d.Month, p.ProductKey, u.City, r.CourierName, r.VehicleType}, fact)
	})

	out := make([]DiceRow, 0, len(g.keys))
	for _, k := range g.keys {
		p := e.products[k.product]
		out = append(out, DiceRow{
			Year:        k.year,
			Month:       k.month,
			MonthName:   time.Month(k.month).String(),
			Category:    p.Category,
			ProductKey:  k.product,
			ProductName: p.ProductName,
			City:        k.city,
			CourierName: k.courier,
			VehicleType: k.vehicle,
			Summary:     g.get(k).summary(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.TotalSales.Cmp(b.TotalSales); c != 0 {
			return c > 0
		}
		switch {
		case a.Year != b.Year:
			return a.Year < b.Year
		case a.Month != b.Month:
			return a.Month < b.Month
		case a.Category != b.Category:
			return a.Category < b.Category
		case a.ProductName != b.ProductName:
			return a.ProductName < b.ProductName
		case a.City != b.City:
			return a.City < b.City
		case a.CourierName != b.CourierName:
			return a.CourierName < b.CourierName
		case a.VehicleType != b.VehicleType:
			return a.VehicleType < b.VehicleType
		default:
			return a.ProductKey < b.ProductKey
		}
	})
	return out, nil
}

// FilterValues lists the values offered by the dice filters.
type FilterValues struct {
	Years        []int    `json:"years"`
	Categories   []string `json:"categories"`
	Cities       []string `json:"cities"`
	Couriers     []string `json:"couriers"`
	VehicleTypes []string `json:"vehicle_types"`
}

// FilterOptions returns the sorted distinct years of dim_date, categories
// of dim_product, cities of dim_user, and couriers and vehicle types of
// dim_rider.
func (e *Engine) FilterOptions() FilterValues {
	years := make(map[int]struct{})
	for _, d := range e.snap.Dates {
		years[d.Year] = struct{}{}
	}
	categories := make(map[string]struct{})
	for _, p := range e.snap.Products {
		categories[p.Category] = struct{}{}
	}
	cities := make(map[string]struct{})
	for _, u := range e.snap.Users {
		cities[u.City] = struct{}{}
	}
	couriers := make(map[string]struct{})
	vehicles := make(map[string]struct{})
	for _, r := range e.snap.Riders {
		couriers[r.CourierName] = struct{}{}
		vehicles[r.VehicleType] = struct{}{}
	}

	out := FilterValues{
		Years:        make([]int, 0, len(years)),
		Categories:   sortedDistinct(categories),
		Cities:       sortedDistinct(cities),
		Couriers:     sortedDistinct(couriers),
		VehicleTypes: sortedDistinct(vehicles),
	}
	for y := range years {
		out.Years = append(out.Years, y)
	}
	sort.Ints(out.Years)
	return out
}
