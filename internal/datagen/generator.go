package datagen

import (
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
)

// Counts sets how many rows of each entity are generated.
type Counts struct {
	Users    int `mapstructure:"users"`
	Products int `mapstructure:"products"`
	Riders   int `mapstructure:"riders"`
	Orders   int `mapstructure:"orders"`
}

// DefaultCounts returns a small but varied data set.
func DefaultCounts() Counts {
	return Counts{
		Users:    200,
		Products: 60,
		Riders:   25,
		Orders:   1000,
	}
}

// Validate checks that every count is positive.
func (c Counts) Validate() error {
	switch {
	case c.Users < 1:
		return fmt.Errorf("users must be at least 1")
	case c.Products < 1:
		return fmt.Errorf("products must be at least 1")
	case c.Riders < 1:
		return fmt.Errorf("riders must be at least 1")
	case c.Orders < 1:
		return fmt.Errorf("orders must be at least 1")
	}
	return nil
}

// Value pools. Each holds the spellings the operational systems actually
// produce for one canonical value.
var (
	genders    = []string{"M", "m", "male", "Male", "F", "f", "female", "FEMALE", "Female"}
	vehicles   = []string{"motorbike", "Motorcycle", "MOTORCYCLE", "bike", "Bicycle", "car", "Car", "trike", "van"}
	categories = []string{"electronics", "gadgets", "Gadget", "toys", "toy", "bag", "Bags", "makeup",
		"Make-Up", "clothes", "Clothing", "mens apparel", "Men's Apparel", "garden"}
	couriers  = []string{"FEDEX", "FEDEZ", "DHL", "UPS", "LBC", "J&T"}
	countries = []string{"Philippines", "Japan", "Germany", "France", "United States", "Canada",
		"Brazil", "Australia", "Kenya", "India", "Atlantis"}
)

// Generation window for timestamps.
var (
	windowStart = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// RawGenerator produces a dirty operational data set. Output is
// deterministic for a given seed.
type RawGenerator struct {
	f      *Faker
	counts Counts
}

// NewRawGenerator creates a generator seeded with seed.
func NewRawGenerator(seed uint64, counts Counts) *RawGenerator {
	return &RawGenerator{f: NewFakerWithSeed(seed), counts: counts}
}

// Generate builds the data set. Every order references an existing user,
// rider and product; the defects are confined to attribute values.
func (g *RawGenerator) Generate() *source.Dataset {
	ds := &source.Dataset{}
	ds.Users = g.users()
	ds.Products = g.products()
	ds.Couriers = g.couriers()
	ds.Riders = g.riders(len(ds.Couriers))
	ds.Orders, ds.OrderItems = g.orders(ds)

	logging.Info().
		Int("users", len(ds.Users)).
		Int("products", len(ds.Products)).
		Int("riders", len(ds.Riders)).
		Int("orders", len(ds.Orders)).
		Int("order_items", len(ds.OrderItems)).
		Msg("Generated source data")
	return ds
}

// maybe returns a pointer to s, or nil with probability p.
func (g *RawGenerator) maybe(p float64, s string) *string {
	if g.f.Chance(p) {
		return nil
	}
	return &s
}

// date renders t in one of the layouts the source systems use.
func (g *RawGenerator) date(t time.Time) calendar.Value {
	switch n := g.f.Int(0, 99); {
	case n < 2:
		return calendar.Null()
	case n < 3:
		return calendar.Text("not a date")
	case n < 40:
		return calendar.Text(t.Format(time.DateOnly))
	case n < 65:
		return calendar.Text(t.Format("01/02/2006"))
	case n < 80:
		return calendar.Text(t.Format(time.DateTime))
	default:
		return calendar.Time(t)
	}
}

func (g *RawGenerator) users() []source.User {
	out := make([]source.User, 0, g.counts.Users)
	for i := 1; i <= g.counts.Users; i++ {
		out = append(out, source.User{
			ID:        source.Int(int64(i)),
			Username:  g.maybe(0.03, g.f.Username()),
			FirstName: g.maybe(0.05, g.f.Garble(g.f.FirstName())),
			LastName:  g.maybe(0.05, g.f.LastName()),
			Gender:    g.maybe(0.05, g.f.Garble(Choose(g.f, genders))),
			City:      g.maybe(0.05, g.f.Garble(g.f.City())),
			Country:   g.maybe(0.05, g.f.Garble(Choose(g.f, countries))),
			CreatedAt: g.date(g.f.DateRange(windowStart.AddDate(-2, 0, 0), windowStart)),
		})
	}
	return out
}

// products generates the catalog. Some codes are re-issued under a new id
// with a later update time, the way a re-listed product appears.
func (g *RawGenerator) products() []source.Product {
	out := make([]source.Product, 0, g.counts.Products+g.counts.Products/10)
	id := int64(1)
	for i := 1; i <= g.counts.Products; i++ {
		code := fmt.Sprintf("P%04d", i)
		created := g.f.DateRange(windowStart.AddDate(-1, 0, 0), windowStart)
		updated := created.AddDate(0, g.f.Int(1, 6), 0)
		p := source.Product{
			ID:          source.Int(id),
			Code:        source.String(code),
			Name:        source.String(g.f.Garble(g.f.ProductName())),
			Category:    g.maybe(0.04, Choose(g.f, categories)),
			Description: g.maybe(0.1, g.f.ProductDescription()),
			Price:       g.maybe(0.03, g.f.Price(5, 1500)),
			Stock:       g.maybe(0.05, fmt.Sprint(g.f.Int(0, 500))),
			CreatedAt:   g.date(created),
			UpdatedAt:   calendar.Time(updated),
		}
		out = append(out, p)
		id++

		if g.f.Chance(0.1) {
			dup := p
			dup.ID = source.Int(id)
			dup.Price = source.String(g.f.Price(5, 1500))
			dup.UpdatedAt = calendar.Time(updated.AddDate(0, 1, 0))
			out = append(out, dup)
			id++
		}
	}
	return out
}

func (g *RawGenerator) couriers() []source.Courier {
	out := make([]source.Courier, 0, len(couriers))
	for i, name := range couriers {
		out = append(out, source.Courier{ID: int64(i + 1), Name: name})
	}
	return out
}

func (g *RawGenerator) riders(courierCount int) []source.RiderRow {
	out := make([]source.RiderRow, 0, g.counts.Riders)
	for i := 1; i <= g.counts.Riders; i++ {
		r := source.RiderRow{
			ID:          int64(i),
			FirstName:   g.maybe(0.03, g.f.FirstName()),
			LastName:    g.maybe(0.03, g.f.LastName()),
			VehicleType: g.maybe(0.05, Choose(g.f, vehicles)),
			Gender:      g.maybe(0.05, g.f.Garble(Choose(g.f, genders))),
		}
		if !g.f.Chance(0.05) {
			age := int64(g.f.Int(18, 60))
			r.Age = &age
		}
		if !g.f.Chance(0.03) {
			c := int64(g.f.Int(1, courierCount))
			r.CourierID = &c
		}
		out = append(out, r)
	}
	return out
}

func (g *RawGenerator) orders(ds *source.Dataset) ([]source.Order, []source.OrderItem) {
	orders := make([]source.Order, 0, g.counts.Orders)
	items := make([]source.OrderItem, 0, g.counts.Orders*2)
	itemID := int64(1)
	for i := 1; i <= g.counts.Orders; i++ {
		user := *Choose(g.f, ds.Users).ID
		rider := Choose(g.f, ds.Riders).ID
		orders = append(orders, source.Order{
			ID:           int64(i),
			OrderNumber:  fmt.Sprintf("ORD-%06d", i),
			UserID:       &user,
			RiderID:      &rider,
			DeliveryDate: g.date(g.f.DateRange(windowStart, windowEnd)),
		})

		for n := g.f.Int(1, 4); n > 0; n-- {
			item := source.OrderItem{
				ID:        itemID,
				OrderID:   int64(i),
				ProductID: *Choose(g.f, ds.Products).ID,
			}
			if !g.f.Chance(0.03) {
				q := int64(g.f.Int(1, 10))
				item.Quantity = &q
			}
			items = append(items, item)
			itemID++
		}
	}
	return orders, items
}
