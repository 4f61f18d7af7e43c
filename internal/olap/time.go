package olap

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// MonthSales is the sales total of one calendar month.
type MonthSales struct {
	Year       int
	Month      int
	MonthName  string
	TotalSales decimal.Decimal
}

// YearSales is the sales total of one year.
type YearSales struct {
	Year       int
	TotalSales decimal.Decimal
}

// QuarterSummary holds the measures of one calendar quarter.
type QuarterSummary struct {
	Year    int
	Quarter int
	Summary
}

// WeekendSales is the sales total of weekdays or of weekends.
type WeekendSales struct {
	IsWeekend  bool
	TotalSales decimal.Decimal
}

// DaySales is the sales total of one day of the week.
type DaySales struct {
	DayName    string
	TotalSales decimal.Decimal
}

// DailySales is the sales total of one calendar date.
type DailySales struct {
	DateKey    int
	FullDate   time.Time
	TotalSales decimal.Decimal
}

type yearMonth struct{ year, month int }

// MonthlyRollup groups sales by (year, month) in calendar order.
func (e *Engine) MonthlyRollup() []MonthSales {
	g := newGroups[yearMonth]()
	names := make(map[yearMonth]string)
	e.each(func(f *warehouse.FactSales) {
		d, ok := e.date(f)
		if !ok {
			return
		}
		k := yearMonth{d.Year, d.Month}
		names[k] = d.MonthName
		g.add(k, f)
	})

	out := make([]MonthSales, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, MonthSales{Year: k.year, Month: k.month, MonthName: names[k], TotalSales: g.get(k).sales})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// YearlyRollup groups sales by year in ascending order.
func (e *Engine) YearlyRollup() []YearSales {
	g := newGroups[int]()
	e.each(func(f *warehouse.FactSales) {
		if d, ok := e.date(f); ok {
			g.add(d.Year, f)
		}
	})

	out := make([]YearSales, 0, len(g.keys))
	for _, y := range g.keys {
		out = append(out, YearSales{Year: y, TotalSales: g.get(y).sales})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// QuarterlyRollup summarizes each (year, quarter) in calendar order.
func (e *Engine) QuarterlyRollup() []QuarterSummary {
	type yearQuarter struct{ year, quarter int }
	g := newGroups[yearQuarter]()
	e.each(func(f *warehouse.FactSales) {
		if d, ok := e.date(f); ok {
			g.add(yearQuarter{d.Year, d.Quarter}, f)
		}
	})

	out := make([]QuarterSummary, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, QuarterSummary{Year: k.year, Quarter: k.quarter, Summary: g.get(k).summary()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Quarter < out[j].Quarter
	})
	return out
}

// WeekendSplit totals weekday and weekend sales, weekdays first. A group
// with no sales is omitted.
func (e *Engine) WeekendSplit() []WeekendSales {
	g := newGroups[bool]()
	e.each(func(f *warehouse.FactSales) {
		if d, ok := e.date(f); ok {
			g.add(d.IsWeekend, f)
		}
	})

	var out []WeekendSales
	for _, weekend := range []bool{false, true} {
		if m := g.get(weekend); m != nil {
			out = append(out, WeekendSales{IsWeekend: weekend, TotalSales: m.sales})
		}
	}
	return out
}

// DayOfWeek totals sales per day name, Monday through Sunday.
func (e *Engine) DayOfWeek() []DaySales {
	g := newGroups[string]()
	e.each(func(f *warehouse.FactSales) {
		if d, ok := e.date(f); ok {
			g.add(d.DayName, f)
		}
	})

	out := make([]DaySales, 0, len(g.keys))
	for _, name := range g.keys {
		out = append(out, DaySales{DayName: name, TotalSales: g.get(name).sales})
	}
	sort.Slice(out, func(i, j int) bool {
		return calendar.WeekdayIndex(out[i].DayName) < calendar.WeekdayIndex(out[j].DayName)
	})
	return out
}

// DailyTrend totals sales per calendar date in chronological order.
func (e *Engine) DailyTrend() []DailySales {
	g := newGroups[int]()
	e.each(func(f *warehouse.FactSales) {
		if d, ok := e.date(f); ok {
			g.add(d.DateKey, f)
		}
	})

	out := make([]DailySales, 0, len(g.keys))
	for _, key := range g.keys {
		out = append(out, DailySales{DateKey: key, FullDate: e.dates[key].FullDate, TotalSales: g.get(key).sales})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullDate.Before(out[j].FullDate) })
	return out
}

// MonthCategorySales is one category's sales in one month.
type MonthCategorySales struct {
	Year       int
	Month      int
	MonthName  string
	Category   string
	TotalSales decimal.Decimal
}

// MonthCourierSales is one courier's sales and delivered orders in one
// month.
type MonthCourierSales struct {
	Year            int
	Month           int
	MonthName       string
	CourierName     string
	TotalSales      decimal.Decimal
	OrdersDelivered int
}

type monthLabel struct {
	yearMonth
	label string
}

// MonthlyByCategory groups sales by (year, month, category).
func (e *Engine) MonthlyByCategory() []MonthCategorySales {
	g, names := e.monthly(func(f *warehouse.FactSales) (string, bool) {
		p, ok := e.products[f.ProductKey]
		if !ok {
			return "", false
		}
		return p.Category, true
	})

	out := make([]MonthCategorySales, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, MonthCategorySales{
			Year: k.year, Month: k.month, MonthName: names[k.yearMonth],
			Category: k.label, TotalSales: g.get(k).sales,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return monthLess(out[i].Year, out[i].Month, out[i].Category, out[j].Year, out[j].Month, out[j].Category)
	})
	return out
}

// MonthlyByCourier groups sales and distinct orders by (year, month,
// courier).
func (e *Engine) MonthlyByCourier() []MonthCourierSales {
	g, names := e.monthly(func(f *warehouse.FactSales) (string, bool) {
		r, ok := e.riders[f.RiderKey]
		if !ok {
			return "", false
		}
		return r.CourierName, true
	})

	out := make([]MonthCourierSales, 0, len(g.keys))
	for _, k := range g.keys {
		m := g.get(k)
		out = append(out, MonthCourierSales{
			Year: k.year, Month: k.month, MonthName: names[k.yearMonth],
			CourierName: k.label, TotalSales: m.sales, OrdersDelivered: len(m.orders),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return monthLess(out[i].Year, out[i].Month, out[i].CourierName, out[j].Year, out[j].Month, out[j].CourierName)
	})
	return out
}

func (e *Engine) monthly(label func(*warehouse.FactSales) (string, bool)) (*groups[monthLabel], map[yearMonth]string) {
	g := newGroups[monthLabel]()
	names := make(map[yearMonth]string)
	e.each(func(f *warehouse.FactSales) {
		d, ok := e.date(f)
		if !ok {
			return
		}
		l, ok := label(f)
		if !ok {
			return
		}
		ym := yearMonth{d.Year, d.Month}
		names[ym] = d.MonthName
		g.add(monthLabel{ym, l}, f)
	})
	return g, names
}

func monthLess(y1, m1 int, l1 string, y2, m2 int, l2 string) bool {
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return l1 < l2
}
