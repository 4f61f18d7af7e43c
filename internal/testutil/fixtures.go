//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// SeedSource returns a small dirty operational snapshot: three users,
// three products, three riders and five order lines over four orders.
// Transforming it yields exactly SeedSnapshot.
func SeedSource() *source.Snapshot {
	s := source.String
	id := source.Int

	users := []source.User{
		{ID: id(1), Username: s("juan"), FirstName: s("Juan"), LastName: s("Cruz"),
			Gender: s("M"), City: s("manila"), Country: s("philippines"),
			CreatedAt: calendar.Text("2020-01-15")},
		{ID: id(2), Username: s("aiko"), FirstName: s(" Aiko"), LastName: s("Tanaka "),
			Gender: s("female"), City: s("Tokyo"), Country: s("Japan"),
			CreatedAt: calendar.Text("02/20/2020")},
		{ID: id(3), Username: s("greta"), FirstName: s("Greta"), LastName: s("Berg"),
			Gender: s(" F "), City: s("berlin"), Country: s("GERMANY"),
			CreatedAt: calendar.Text("2020-03-05")},
	}

	products := []source.Product{
		{ID: id(10), Code: s("P001"), Name: s(" Laptop "), Category: s("gadgets"),
			Description: s("15 inch laptop"), Price: s("1200.00"), Stock: s("5"),
			CreatedAt: calendar.Text("2020-01-01"), UpdatedAt: calendar.Text("2020-06-01")},
		{ID: id(11), Code: s("P002"), Name: s("Toy Car"), Category: s("toy"),
			Description: s("Die-cast car"), Price: s("15.00"), Stock: s("50"),
			CreatedAt: calendar.Text("2020-01-01"), UpdatedAt: calendar.Text("2020-06-01")},
		{ID: id(12), Code: s("P003"), Name: s("Handbag"), Category: s("BAG"),
			Description: s(""), Price: s("60"), Stock: nil,
			CreatedAt: calendar.Text("2020-01-01"), UpdatedAt: calendar.Text("2020-06-01")},
	}

	riders := []source.Rider{
		{ID: id(100), FirstName: s("John"), LastName: s("Doe"), VehicleType: s("motorbike"),
			Gender: s("m"), Age: s("28"), Courier: s("FEDEZ")},
		{ID: id(101), FirstName: s("Jane"), LastName: s("Smith"), VehicleType: s("bike"),
			Gender: s("Female"), Age: s("32"), Courier: s("DHL")},
		{ID: id(102), FirstName: s("Bob"), LastName: s("Lee"), VehicleType: s("car"),
			Gender: s("male"), Age: s("45"), Courier: s("UPS")},
	}

	line := func(order string, user, product, rider int64, date, qty, price string) source.OrderLine {
		return source.OrderLine{
			OrderNumber:  s(order),
			UserID:       id(user),
			ProductID:    id(product),
			RiderID:      id(rider),
			DeliveryDate: calendar.Text(date),
			Quantity:     s(qty),
			UnitPrice:    s(price),
		}
	}
	lines := []source.OrderLine{
		line("ORD-1", 1, 10, 100, "2021-01-02", "2", "50"),
		line("ORD-2", 1, 11, 101, "01/03/2021", "4", "50"),
		line("ORD-2", 1, 12, 101, "01/03/2021", "1", "50"),
		line("ORD-3", 2, 10, 102, "2021-05-10 08:30:00", "5", "60"),
		line("ORD-4", 3, 11, 100, "2021-01-02", "2", "200"),
	}

	return &source.Snapshot{
		Users:      source.NewTable("users", source.UserColumns, users),
		Products:   source.NewTable("products", source.ProductColumns, products),
		Riders:     source.NewTable("riders", source.RiderColumns, riders),
		OrderLines: source.NewTable("order_lines", source.OrderLineColumns, lines),
	}
}

// SeedSnapshot returns the warehouse built from SeedSource.
//
// Expected aggregates: user 1 has 350.00 over two orders, user 2 300.00
// over one, user 3 400.00 over one; weekend sales are 750.00 and weekday
// sales 300.00; rider 100 leads with 500.00; total sales are 1050.00 over
// four orders.
func SeedSnapshot() *warehouse.Snapshot {
	day := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	age := func(n int) *int { return &n }
	price := func(s string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(s))
	}

	dates := make([]warehouse.DimDate, 0, 3)
	for _, key := range []int{20210102, 20210103, 20210510} {
		d, _ := calendar.FromKey(key)
		dates = append(dates, warehouse.NewDimDate(d))
	}

	fact := func(order string, user, product, rider int64, date int, qty int64, unit string) warehouse.FactSales {
		u := decimal.RequireFromString(unit)
		return warehouse.FactSales{
			CustomerKey: user,
			ProductKey:  product,
			RiderKey:    rider,
			DateKey:     &date,
			OrderNumber: order,
			Quantity:    qty,
			UnitPrice:   u,
			SalesAmount: warehouse.SalesAmount(qty, u),
		}
	}

	return &warehouse.Snapshot{
		Users: []warehouse.DimUser{
			{UserKey: 1, Username: "juan", FullName: "Juan Cruz", Gender: "Male",
				City: "Manila", Country: "Philippines", Continent: "Asia",
				SignupDate: day(2020, time.January, 15)},
			{UserKey: 2, Username: "aiko", FullName: "Aiko Tanaka", Gender: "Female",
				City: "Tokyo", Country: "Japan", Continent: "Asia",
				SignupDate: day(2020, time.February, 20)},
			{UserKey: 3, Username: "greta", FullName: "Greta Berg", Gender: "Female",
				City: "Berlin", Country: "Germany", Continent: "Europe",
				SignupDate: day(2020, time.March, 5)},
		},
		Products: []warehouse.DimProduct{
			{ProductKey: 10, ProductCode: "P001", ProductName: "Laptop", Category: "Electronics",
				Description: "15 inch laptop", Price: price("1200"), StockQuantity: 5,
				CreatedAt: day(2020, time.January, 1), UpdatedAt: day(2020, time.June, 1)},
			{ProductKey: 11, ProductCode: "P002", ProductName: "Toy Car", Category: "Toys",
				Description: "Die-cast car", Price: price("15"), StockQuantity: 50,
				CreatedAt: day(2020, time.January, 1), UpdatedAt: day(2020, time.June, 1)},
			{ProductKey: 12, ProductCode: "P003", ProductName: "Handbag", Category: "Bags",
				Description: "No description available", Price: price("60"), StockQuantity: 0,
				CreatedAt: day(2020, time.January, 1), UpdatedAt: day(2020, time.June, 1)},
		},
		Riders: []warehouse.DimRider{
			{RiderKey: 100, RiderName: "John Doe", VehicleType: "Motorcycle", Gender: "Male",
				Age: age(28), CourierName: "FEDEX"},
			{RiderKey: 101, RiderName: "Jane Smith", VehicleType: "Bicycle", Gender: "Female",
				Age: age(32), CourierName: "DHL"},
			{RiderKey: 102, RiderName: "Bob Lee", VehicleType: "Car", Gender: "Male",
				Age: age(45), CourierName: "UPS"},
		},
		Dates: dates,
		Sales: []warehouse.FactSales{
			fact("ORD-1", 1, 10, 100, 20210102, 2, "50"),
			fact("ORD-2", 1, 11, 101, 20210103, 4, "50"),
			fact("ORD-2", 1, 12, 101, 20210103, 1, "50"),
			fact("ORD-3", 2, 10, 102, 20210510, 5, "60"),
			fact("ORD-4", 3, 11, 100, 20210102, 2, "200"),
		},
	}
}
