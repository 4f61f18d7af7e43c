package datagen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
	"github.com/pgEdge/pgedge-salesmart/internal/transform"
)

var testCounts = Counts{Users: 300, Products: 500, Riders: 50, Orders: 2000}

func TestNewFakerWithSeed(t *testing.T) {
	f1 := NewFakerWithSeed(12345)
	f2 := NewFakerWithSeed(12345)

	for i := 0; i < 10; i++ {
		require.Equal(t, f1.Int(0, 1000), f2.Int(0, 1000))
	}
}

func TestFakerValues(t *testing.T) {
	f := NewFaker()
	require.NotEmpty(t, f.FirstName())
	require.NotEmpty(t, f.LastName())
	require.NotEmpty(t, f.Username())
	require.NotEmpty(t, f.City())
	require.NotEmpty(t, f.ProductName())

	price := f.Price(5, 10)
	require.Regexp(t, `^\d+\.\d{2}$`, price)

	for i := 0; i < 100; i++ {
		n := f.Int(3, 5)
		require.GreaterOrEqual(t, n, 3)
		require.LessOrEqual(t, n, 5)
	}
}

func TestChance(t *testing.T) {
	f := NewFakerWithSeed(1)
	for i := 0; i < 50; i++ {
		require.False(t, f.Chance(0))
		require.True(t, f.Chance(1))
	}
}

func TestChoose(t *testing.T) {
	f := NewFakerWithSeed(1)
	items := []string{"a", "b", "c"}
	for i := 0; i < 20; i++ {
		require.Contains(t, items, Choose(f, items))
	}
	require.Equal(t, "", Choose(f, []string{}))
}

func TestGarble(t *testing.T) {
	f := NewFakerWithSeed(7)
	for i := 0; i < 50; i++ {
		require.True(t, strings.EqualFold("Female", strings.TrimSpace(f.Garble("Female"))))
	}
}

func TestCountsValidate(t *testing.T) {
	require.NoError(t, DefaultCounts().Validate())

	tests := []struct {
		name   string
		counts Counts
	}{
		{"users", Counts{Users: 0, Products: 1, Riders: 1, Orders: 1}},
		{"products", Counts{Users: 1, Products: 0, Riders: 1, Orders: 1}},
		{"riders", Counts{Users: 1, Products: 1, Riders: 0, Orders: 1}},
		{"orders", Counts{Users: 1, Products: 1, Riders: 1, Orders: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.counts.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewRawGenerator(42, DefaultCounts()).Generate()
	b := NewRawGenerator(42, DefaultCounts()).Generate()
	require.Equal(t, a, b)

	c := NewRawGenerator(43, DefaultCounts()).Generate()
	require.NotEqual(t, a.Users, c.Users)
}

func TestGenerateReferentialIntegrity(t *testing.T) {
	ds := NewRawGenerator(5, testCounts).Generate()
	require.Len(t, ds.Users, testCounts.Users)
	require.Len(t, ds.Riders, testCounts.Riders)
	require.Len(t, ds.Orders, testCounts.Orders)
	require.GreaterOrEqual(t, len(ds.Products), testCounts.Products)

	users := make(map[int64]bool)
	for _, u := range ds.Users {
		users[*u.ID] = true
	}
	riders := make(map[int64]bool)
	for _, r := range ds.Riders {
		riders[r.ID] = true
	}
	products := make(map[int64]bool)
	for _, p := range ds.Products {
		products[*p.ID] = true
	}
	orders := make(map[int64]bool)
	for _, o := range ds.Orders {
		require.True(t, users[*o.UserID])
		require.True(t, riders[*o.RiderID])
		require.NotEmpty(t, o.OrderNumber)
		orders[o.ID] = true
	}
	for _, it := range ds.OrderItems {
		require.True(t, orders[it.OrderID])
		require.True(t, products[it.ProductID])
	}
}

func TestGenerateIsDirty(t *testing.T) {
	ds := NewRawGenerator(9, testCounts).Generate()

	codes := make(map[string]int)
	for _, p := range ds.Products {
		codes[*p.Code]++
	}
	duplicated := 0
	for _, n := range codes {
		if n > 1 {
			duplicated++
		}
	}
	require.Positive(t, duplicated)

	var usDates, unparsable, nullDates int
	for _, o := range ds.Orders {
		switch s := o.DeliveryDate.String(); {
		case o.DeliveryDate.IsNull():
			nullDates++
		case strings.Contains(s, "/"):
			usDates++
		default:
			if _, ok := calendar.Parse(o.DeliveryDate); !ok {
				unparsable++
			}
		}
	}
	require.Positive(t, usDates)
	require.Positive(t, unparsable)
	require.Positive(t, nullDates)

	fedez := 0
	for _, c := range ds.Couriers {
		if c.Name == "FEDEZ" {
			fedez++
		}
	}
	require.Equal(t, 1, fedez)

	var missingQuantity int
	for _, it := range ds.OrderItems {
		if it.Quantity == nil {
			missingQuantity++
		}
	}
	require.Positive(t, missingQuantity)
}

func TestGeneratedDataTransforms(t *testing.T) {
	ds := NewRawGenerator(11, testCounts).Generate()

	snap, report, err := transform.New(nil).Run(context.Background(), ds.Snapshot(), transform.Options{})
	require.NoError(t, err)
	require.Zero(t, report.RejectedCount())
	require.Len(t, snap.Sales, len(ds.OrderItems))
	require.Len(t, snap.Users, testCounts.Users)
	require.Len(t, snap.Products, testCounts.Products)
	require.Len(t, snap.Riders, testCounts.Riders)

	for _, f := range snap.Sales {
		require.False(t, f.SalesAmount.IsNegative())
	}
}
