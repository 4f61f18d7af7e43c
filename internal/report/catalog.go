package report

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/olap"
)

func init() {
	for _, def := range catalog {
		Register(def)
	}
}

var summaryColumns = []string{"total_orders", "total_sales", "total_quantity", "avg_order_value"}

var catalog = []Definition{
	{
		Name:        "user_sales",
		Description: "Sales and distinct orders per user",
		Filters:     olap.UserAttributes,
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			rows, err := e.UserSales(p.Filter)
			if err != nil {
				return nil, err
			}
			t := newTable("user_key", "username", "full_name", "gender", "city", "country",
				"continent", "sales_amount", "total_orders")
			for _, r := range rows {
				t.add(r.UserKey, r.Username, r.FullName, r.Gender, r.City, r.Country,
					r.Continent, money(r.SalesAmount), r.TotalOrders)
			}
			return t, nil
		},
	},
	{
		Name:        "user_attributes",
		Description: "Distinct values of every user filter attribute",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			v := e.DistinctUserAttributes()
			t := newTable("attribute", "value")
			t.addValues(olap.AttrContinent, v.Continents)
			t.addValues(olap.AttrCountry, v.Countries)
			t.addValues(olap.AttrCity, v.Cities)
			t.addValues(olap.AttrGender, v.Genders)
			return t, nil
		},
	},
	{
		Name:        "rider_orders",
		Description: "One row per order with its rider and delivery date",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("order_number", "lines", "quantity", "total_sales", "rider_key",
				"rider_name", "vehicle_type", "gender", "age", "courier_name", "full_date",
				"year", "month_name", "day_name", "is_weekend")
			for _, o := range e.RiderOrders() {
				t.add(o.OrderNumber, o.Lines, o.Quantity, money(o.TotalSales), o.RiderKey,
					o.RiderName, o.VehicleType, o.Gender, optionalInt(o.Age), o.CourierName,
					day(o.FullDate), o.Year, o.MonthName, o.DayName, o.IsWeekend)
			}
			return t, nil
		},
	},
	{
		Name:        "product_daily",
		Description: "Sales per product and delivery date",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("product_key", "product_name", "category", "full_date", "total_sales", "quantity")
			for _, r := range e.ProductDaily() {
				t.add(r.ProductKey, r.ProductName, r.Category, day(r.FullDate), money(r.TotalSales), r.Quantity)
			}
			return t, nil
		},
	},
	{
		Name:        "monthly_sales",
		Description: "Sales per year and month",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("year", "month", "month_name", "total_sales")
			for _, r := range e.MonthlyRollup() {
				t.add(r.Year, r.Month, r.MonthName, money(r.TotalSales))
			}
			return t, nil
		},
	},
	{
		Name:        "yearly_sales",
		Description: "Sales per year",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("year", "total_sales")
			for _, r := range e.YearlyRollup() {
				t.add(r.Year, money(r.TotalSales))
			}
			return t, nil
		},
	},
	{
		Name:        "quarterly_sales",
		Description: "Orders, sales, quantity and average order value per quarter",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable(append([]string{"year", "quarter"}, summaryColumns...)...)
			for _, r := range e.QuarterlyRollup() {
				t.add(append([]any{r.Year, r.Quarter}, summaryCells(r.Summary)...)...)
			}
			return t, nil
		},
	},
	{
		Name:        "weekend_sales",
		Description: "Weekday against weekend sales",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("is_weekend", "total_sales")
			for _, r := range e.WeekendSplit() {
				t.add(r.IsWeekend, money(r.TotalSales))
			}
			return t, nil
		},
	},
	{
		Name:        "day_of_week_sales",
		Description: "Sales per day of the week, Monday first",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("day_name", "total_sales")
			for _, r := range e.DayOfWeek() {
				t.add(r.DayName, money(r.TotalSales))
			}
			return t, nil
		},
	},
	{
		Name:        "daily_trend",
		Description: "Sales per delivery date in chronological order",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("full_date", "total_sales")
			for _, r := range e.DailyTrend() {
				t.add(day(r.FullDate), money(r.TotalSales))
			}
			return t, nil
		},
	},
	{
		Name:        "kpis",
		Description: "Headline figures over the whole fact table",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			k := e.KPIs()
			t := newTable("total_orders", "total_sales", "avg_order_value", "users", "riders", "products")
			t.add(k.TotalOrders, money(k.TotalSales), money(k.AvgOrderValue), k.Users, k.Riders, k.Products)
			return t, nil
		},
	},
	{
		Name:        "top_users",
		Description: "Users ranked by total sales",
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			return performerTable("user_key", "full_name", e.TopUsers(p.Limit)), nil
		},
	},
	{
		Name:        "top_riders",
		Description: "Riders ranked by total sales",
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			return performerTable("rider_key", "rider_name", e.TopRiders(p.Limit)), nil
		},
	},
	{
		Name:        "top_products",
		Description: "Products ranked by total sales",
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			return performerTable("product_key", "product_name", e.TopProducts(p.Limit)), nil
		},
	},
	{
		Name:        "monthly_category_sales",
		Description: "Sales per month and product category",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("year", "month", "month_name", "category", "total_sales")
			for _, r := range e.MonthlyByCategory() {
				t.add(r.Year, r.Month, r.MonthName, r.Category, money(r.TotalSales))
			}
			return t, nil
		},
	},
	{
		Name:        "monthly_courier_sales",
		Description: "Sales and orders delivered per month and courier",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("year", "month", "month_name", "courier_name", "total_sales", "orders_delivered")
			for _, r := range e.MonthlyByCourier() {
				t.add(r.Year, r.Month, r.MonthName, r.CourierName, money(r.TotalSales), r.OrdersDelivered)
			}
			return t, nil
		},
	},
	{
		Name:        "category_rollup",
		Description: "Measures per product category",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable(append(append([]string{"category"}, summaryColumns...), "product_count")...)
			for _, r := range e.CategoryRollup() {
				t.add(append(append([]any{r.Category}, summaryCells(r.Summary)...), r.ProductCount)...)
			}
			return t, nil
		},
	},
	{
		Name:        "courier_rollup",
		Description: "Measures per courier",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable(append(append([]string{"courier_name"}, summaryColumns...), "rider_count")...)
			for _, r := range e.CourierRollup() {
				t.add(append(append([]any{r.CourierName}, summaryCells(r.Summary)...), r.RiderCount)...)
			}
			return t, nil
		},
	},
	{
		Name:        "region_rollup",
		Description: "Measures per customer continent",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable(append(append([]string{"continent"}, summaryColumns...), "country_count")...)
			for _, r := range e.RegionRollup() {
				t.add(append(append([]any{r.Continent}, summaryCells(r.Summary)...), r.CountryCount)...)
			}
			return t, nil
		},
	},
	{
		Name:        "courier_vehicle_rollup",
		Description: "Sales per courier and vehicle type with subtotals and a grand total",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("courier_name", "vehicle_type", "total_sales")
			for _, r := range e.CourierVehicleRollup() {
				t.add(r.CourierName, r.VehicleType, money(r.TotalSales))
			}
			return t, nil
		},
	},
	{
		Name:        "courier_gender_pivot",
		Description: "Sales by male and female riders per courier",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("courier_name", "male_sales", "female_sales", "total_sales")
			for _, r := range e.CourierGenderPivot() {
				t.add(r.CourierName, money(r.MaleSales), money(r.FemaleSales), money(r.TotalSales))
			}
			return t, nil
		},
	},
	{
		Name:        "year_to_month",
		Description: "Drill down from year to month",
		Filters:     olap.MonthDrillAttributes,
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			rows, err := e.DrillYearToMonth(p.Filter)
			if err != nil {
				return nil, err
			}
			t := newTable(append([]string{"year", "month", "month_name"}, summaryColumns...)...)
			for _, r := range rows {
				t.add(append([]any{r.Year, r.Month, r.MonthName}, summaryCells(r.Summary)...)...)
			}
			return t, nil
		},
	},
	{
		Name:        "month_to_day",
		Description: "Drill down from month to day",
		Filters:     olap.DayDrillAttributes,
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			rows, err := e.DrillMonthToDay(p.Filter)
			if err != nil {
				return nil, err
			}
			t := newTable(append([]string{"full_date", "day_name", "is_weekend"}, summaryColumns...)...)
			for _, r := range rows {
				t.add(append([]any{day(r.FullDate), r.DayName, r.IsWeekend}, summaryCells(r.Summary)...)...)
			}
			return t, nil
		},
	},
	{
		Name:        "category_to_product",
		Description: "Drill down from category to product",
		Filters:     olap.ProductDrillAttributes,
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			rows, err := e.DrillCategoryToProduct(p.Filter)
			if err != nil {
				return nil, err
			}
			t := newTable(append([]string{"category", "product_key", "product_name", "price"}, summaryColumns...)...)
			for _, r := range rows {
				t.add(append([]any{r.Category, r.ProductKey, r.ProductName, optionalMoney(r.Price)},
					summaryCells(r.Summary)...)...)
			}
			return t, nil
		},
	},
	{
		Name:        "courier_to_vehicle",
		Description: "Drill down from courier to vehicle type",
		Filters:     olap.VehicleDrillAttributes,
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			rows, err := e.DrillCourierToVehicle(p.Filter)
			if err != nil {
				return nil, err
			}
			t := newTable(append(append([]string{"courier_name", "vehicle_type"}, summaryColumns...), "rider_count")...)
			for _, r := range rows {
				cells := append([]any{r.CourierName, r.VehicleType}, summaryCells(r.Summary)...)
				t.add(append(cells, r.RiderCount)...)
			}
			return t, nil
		},
	},
	{
		Name:        "region_to_country",
		Description: "Drill down from continent to customer country",
		Filters:     olap.CountryDrillAttributes,
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			rows, err := e.DrillRegionToCountry(p.Filter)
			if err != nil {
				return nil, err
			}
			t := newTable(append(append([]string{"continent", "country"}, summaryColumns...), "city_count")...)
			for _, r := range rows {
				cells := append([]any{r.Continent, r.Country}, summaryCells(r.Summary)...)
				t.add(append(cells, r.CityCount)...)
			}
			return t, nil
		},
	},
	{
		Name:        "city_category_pivot",
		Description: "Sales and orders per customer city and product category",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			t := newTable("city", "category", "total_sales", "total_orders")
			for _, r := range e.CityCategoryPivot() {
				t.add(r.City, r.Category, money(r.TotalSales), r.TotalOrders)
			}
			return t, nil
		},
	},
	{
		Name:        "dice",
		Description: "Measures by year, month, category, product, city, courier and vehicle",
		Filters:     olap.DiceAttributes,
		Run: func(e *olap.Engine, p Params) (*Table, error) {
			rows, err := e.Dice(p.Filter)
			if err != nil {
				return nil, err
			}
			t := newTable(append([]string{"year", "month_name", "category", "product_key", "product_name",
				"city", "courier_name", "vehicle_type"}, summaryColumns...)...)
			for _, r := range rows {
				t.add(append([]any{r.Year, r.MonthName, r.Category, r.ProductKey, r.ProductName,
					r.City, r.CourierName, r.VehicleType}, summaryCells(r.Summary)...)...)
			}
			return t, nil
		},
	},
	{
		Name:        "filter_options",
		Description: "Values offered by the dice filters",
		Run: func(e *olap.Engine, _ Params) (*Table, error) {
			v := e.FilterOptions()
			t := newTable("attribute", "value")
			for _, y := range v.Years {
				t.add(olap.AttrYear, y)
			}
			t.addValues(olap.AttrCategory, v.Categories)
			t.addValues(olap.AttrCity, v.Cities)
			t.addValues(olap.AttrCourier, v.Couriers)
			t.addValues("vehicle_type", v.VehicleTypes)
			return t, nil
		},
	},
}

func newTable(columns ...string) *Table {
	return &Table{Columns: columns, Rows: [][]any{}}
}

func (t *Table) add(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

func (t *Table) addValues(attribute string, values []string) {
	for _, v := range values {
		t.add(attribute, v)
	}
}

func performerTable(keyColumn, nameColumn string, ps []olap.Performer) *Table {
	t := newTable(keyColumn, nameColumn, "total_sales", "total_orders")
	for _, p := range ps {
		t.add(p.Key, p.Name, money(p.TotalSales), p.TotalOrders)
	}
	return t
}

func summaryCells(s olap.Summary) []any {
	return []any{s.TotalOrders, money(s.TotalSales), s.TotalQuantity, money(s.AvgOrderValue)}
}

// money renders an amount with exactly two decimals. json.Number keeps it
// a JSON number without a float round trip.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func optionalMoney(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return money(d.Decimal)
}

func day(t time.Time) string {
	return t.Format(time.DateOnly)
}

func optionalInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
