package olap

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// AttrMonth filters by calendar month, given as a number (1-12) or a month
// name.
const AttrMonth = "month"

// Filter attributes of the drill-down queries. The filter selects the
// parent members to open; an empty filter opens all of them.
var (
	MonthDrillAttributes   = []string{AttrYear}
	DayDrillAttributes     = []string{AttrYear, AttrMonth}
	ProductDrillAttributes = []string{AttrCategory}
	VehicleDrillAttributes = []string{AttrCourier}
	CountryDrillAttributes = []string{AttrContinent}
)

// MonthSummary holds the measures of one month of a year.
type MonthSummary struct {
	Year      int
	Month     int
	MonthName string
	Summary
}

// DaySummary holds the measures of one calendar date.
type DaySummary struct {
	DateKey   int
	FullDate  time.Time
	DayName   string
	IsWeekend bool
	Summary
}

// ProductSummary holds the measures of one product within its category.
type ProductSummary struct {
	Category    string
	ProductKey  int64
	ProductName string
	Price       decimal.NullDecimal
	Summary
}

// VehicleSummary holds the measures of one vehicle type of a courier.
type VehicleSummary struct {
	CourierName string
	VehicleType string
	Summary
	RiderCount int
}

// CountrySummary holds the measures of one country of a continent.
type CountrySummary struct {
	Continent string
	Country   string
	Summary
	CityCount int
}

// CityCategorySales is one cell of the city by category pivot.
type CityCategorySales struct {
	City        string
	Category    string
	TotalSales  decimal.Decimal
	TotalOrders int
}

// DrillYearToMonth breaks the selected years down to months, in calendar
// order.
func (e *Engine) DrillYearToMonth(f Filter) ([]MonthSummary, error) {
	m, err := f.compile(MonthDrillAttributes...)
	if err != nil {
		return nil, err
	}

	g := newGroups[yearMonth]()
	e.each(func(fact *warehouse.FactSales) {
		d, ok := e.date(fact)
		if !ok || !m.allows(AttrYear, strconv.Itoa(d.Year)) {
			return
		}
		g.add(yearMonth{d.Year, d.Month}, fact)
	})

	out := make([]MonthSummary, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, MonthSummary{
			Year:      k.year,
			Month:     k.month,
			MonthName: time.Month(k.month).String(),
			Summary:   g.get(k).summary(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

// DrillMonthToDay breaks the selected months down to dates, in calendar
// order.
func (e *Engine) DrillMonthToDay(f Filter) ([]DaySummary, error) {
	m, err := f.compile(DayDrillAttributes...)
	if err != nil {
		return nil, err
	}

	g := newGroups[int]()
	e.each(func(fact *warehouse.FactSales) {
		d, ok := e.date(fact)
		if !ok || !m.allows(AttrYear, strconv.Itoa(d.Year)) {
			return
		}
		if !m.allows(AttrMonth, strconv.Itoa(d.Month)) && !m.allows(AttrMonth, d.MonthName) {
			return
		}
		g.add(d.DateKey, fact)
	})

	out := make([]DaySummary, 0, len(g.keys))
	for _, k := range g.keys {
		d := e.dates[k]
		out = append(out, DaySummary{
			DateKey:   d.DateKey,
			FullDate:  d.FullDate,
			DayName:   d.DayName,
			IsWeekend: d.IsWeekend,
			Summary:   g.get(k).summary(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateKey < out[j].DateKey })
	return out, nil
}

// DrillCategoryToProduct breaks the selected categories down to products,
// highest sales first.
func (e *Engine) DrillCategoryToProduct(f Filter) ([]ProductSummary, error) {
	m, err := f.compile(ProductDrillAttributes...)
	if err != nil {
		return nil, err
	}

	g := newGroups[int64]()
	e.each(func(fact *warehouse.FactSales) {
		p, ok := e.products[fact.ProductKey]
		if !ok || !m.allows(AttrCategory, p.Category) {
			return
		}
		g.add(p.ProductKey, fact)
	})

	out := make([]ProductSummary, 0, len(g.keys))
	for _, k := range g.keys {
		p := e.products[k]
		out = append(out, ProductSummary{
			Category:    p.Category,
			ProductKey:  p.ProductKey,
			ProductName: p.ProductName,
			Price:       p.Price,
			Summary:     g.get(k).summary(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return bySalesDesc(out[i].TotalSales, out[j].TotalSales, out[i].ProductKey < out[j].ProductKey)
	})
	return out, nil
}

// DrillCourierToVehicle breaks the selected couriers down to vehicle
// types, highest sales first.
func (e *Engine) DrillCourierToVehicle(f Filter) ([]VehicleSummary, error) {
	m, err := f.compile(VehicleDrillAttributes...)
	if err != nil {
		return nil, err
	}

	type courierVehicle struct{ courier, vehicle string }
	g := newGroups[courierVehicle]()
	riders := make(map[courierVehicle]map[int64]struct{})
	e.each(func(fact *warehouse.FactSales) {
		r, ok := e.riders[fact.RiderKey]
		if !ok || !m.allows(AttrCourier, r.CourierName) {
			return
		}
		k := courierVehicle{r.CourierName, r.VehicleType}
		g.add(k, fact)
		set, ok := riders[k]
		if !ok {
			set = make(map[int64]struct{})
			riders[k] = set
		}
		set[r.RiderKey] = struct{}{}
	})

	out := make([]VehicleSummary, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, VehicleSummary{
			CourierName: k.courier,
			VehicleType: k.vehicle,
			Summary:     g.get(k).summary(),
			RiderCount:  len(riders[k]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.TotalSales.Cmp(b.TotalSales); c != 0 {
			return c > 0
		}
		if a.CourierName != b.CourierName {
			return a.CourierName < b.CourierName
		}
		return a.VehicleType < b.VehicleType
	})
	return out, nil
}

// DrillRegionToCountry breaks the selected continents down to customer
// countries, highest sales first.
func (e *Engine) DrillRegionToCountry(f Filter) ([]CountrySummary, error) {
	m, err := f.compile(CountryDrillAttributes...)
	if err != nil {
		return nil, err
	}

	type region struct{ continent, country string }
	g := newGroups[region]()
	cities := make(map[region]map[string]struct{})
	e.each(func(fact *warehouse.FactSales) {
		u, ok := e.users[fact.CustomerKey]
		if !ok || !m.allows(AttrContinent, u.Continent) {
			return
		}
		k := region{u.Continent, u.Country}
		g.add(k, fact)
		set, ok := cities[k]
		if !ok {
			set = make(map[string]struct{})
			cities[k] = set
		}
		set[u.City] = struct{}{}
	})

	out := make([]CountrySummary, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, CountrySummary{
			Continent: k.continent,
			Country:   k.country,
			Summary:   g.get(k).summary(),
			CityCount: len(cities[k]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.TotalSales.Cmp(b.TotalSales); c != 0 {
			return c > 0
		}
		if a.Continent != b.Continent {
			return a.Continent < b.Continent
		}
		return a.Country < b.Country
	})
	return out, nil
}

// CityCategoryPivot returns sales and distinct orders per (customer city,
// product category), ordered by city and then category.
func (e *Engine) CityCategoryPivot() []CityCategorySales {
	type cityCategory struct{ city, category string }
	g := newGroups[cityCategory]()
	e.each(func(fact *warehouse.FactSales) {
		u, ok := e.users[fact.CustomerKey]
		if !ok {
			return
		}
		p, ok := e.products[fact.ProductKey]
		if !ok {
			return
		}
		g.add(cityCategory{u.City, p.Category}, fact)
	})

	out := make([]CityCategorySales, 0, len(g.keys))
	for _, k := range g.keys {
		s := g.get(k).summary()
		out = append(out, CityCategorySales{
			City:        k.city,
			Category:    k.category,
			TotalSales:  s.TotalSales,
			TotalOrders: s.TotalOrders,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Category < out[j].Category
	})
	return out
}
