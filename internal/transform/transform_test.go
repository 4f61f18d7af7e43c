package transform

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
	"github.com/pgEdge/pgedge-salesmart/internal/testutil"
	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

var (
	s  = source.String
	id = source.Int
)

func TestRunSeed(t *testing.T) {
	got, report, err := New(nil).Run(context.Background(), testutil.SeedSource(), Options{Workers: 2})
	require.NoError(t, err)

	if diff := cmp.Diff(testutil.SeedSnapshot(), got); diff != "" {
		t.Errorf("warehouse mismatch (-want +got):\n%s", diff)
	}
	require.Zero(t, report.RejectedCount())
	require.Len(t, report.Tables, 5)
	require.Equal(t, warehouse.TableSales, report.Tables[4].Table)
	require.Equal(t, 5, report.Tables[4].Output)
}

func TestRunStopsOnStructuralError(t *testing.T) {
	snap := testutil.SeedSource()
	snap.Riders = source.NewTable("riders", []string{source.ColFirstName}, snap.Riders.Rows)

	_, _, err := New(nil).Run(context.Background(), snap, Options{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrStructural)

	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, source.ColID, serr.Column)
}

func TestUsersMissingIDColumn(t *testing.T) {
	in := source.NewTable("users", []string{source.ColUsername}, []source.User{{Username: s("x")}})
	_, err := New(nil).Users(in)
	require.ErrorIs(t, err, ErrStructural)
}

func TestUsersDefaultsAndRejections(t *testing.T) {
	in := source.NewTable("users", source.UserColumns, []source.User{
		{ID: id(1)},
		{Username: s("orphan")},
		{ID: id(2), Username: s("  "), FirstName: s("Ann"), Gender: s("x"), Country: s("narnia")},
	})

	res, err := New(nil).Users(in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Len(t, res.Rejected, 1)
	require.Equal(t, 1, res.Rejected[0].Row)
	require.Contains(t, res.Rejected[0].Reason, "id is missing")

	first := res.Rows[0]
	require.Equal(t, "Unknown", first.Username)
	require.Equal(t, "Unknown", first.FullName)
	require.Equal(t, "Unknown", first.City)
	require.Equal(t, "Unknown", first.Country)
	require.Equal(t, "Other", first.Gender)
	require.Nil(t, first.SignupDate)

	second := res.Rows[1]
	require.Equal(t, "Ann", second.FullName)
	require.Equal(t, "Narnia", second.Country)
	require.Equal(t, "Other", second.Continent)
}

func TestUsersDuplicateKeepsLatestSignup(t *testing.T) {
	in := source.NewTable("users", source.UserColumns, []source.User{
		{ID: id(1), Username: s("newest"), CreatedAt: calendar.Text("2021-03-01")},
		{ID: id(1), Username: s("older"), CreatedAt: calendar.Text("2021-01-01")},
		{ID: id(1), Username: s("null"), CreatedAt: calendar.Null()},
		{ID: id(2), Username: s("first"), CreatedAt: calendar.Text("2021-01-01")},
		{ID: id(2), Username: s("tie"), CreatedAt: calendar.Text("01/01/2021")},
	})

	res, err := New(nil).Users(in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Equal(t, "newest", res.Rows[0].Username)
	require.Equal(t, "tie", res.Rows[1].Username)
}

func TestProductsDeduplicateByCode(t *testing.T) {
	in := source.NewTable("products", source.ProductColumns, []source.Product{
		{ID: id(1), Code: s("P1"), Name: s("old"), UpdatedAt: calendar.Text("2021-01-01")},
		{ID: id(2), Code: s("P1"), Name: s("new"), UpdatedAt: calendar.Text("2021-03-01")},
		{ID: id(3), Code: s("P1"), Name: s("undated")},
		{ID: id(4), Code: s(""), Name: s("blank a")},
		{ID: id(5), Code: nil, Name: s("blank b")},
		{ID: id(6), Code: s("P2"), Name: s("only"), Price: s("abc"), Stock: s("many")},
	})

	res, err := New(nil).Products(in)
	require.NoError(t, err)

	keys := make([]int64, 0, len(res.Rows))
	for _, p := range res.Rows {
		keys = append(keys, p.ProductKey)
	}
	require.Equal(t, []int64{2, 4, 5, 6}, keys)
	require.Equal(t, "new", res.Rows[0].ProductName)
	require.Equal(t, map[int64]int64{1: 2, 3: 2}, res.Aliases)
	require.Equal(t, int64(2), res.Resolve(1))
	require.Equal(t, int64(6), res.Resolve(6))

	only := res.Rows[3]
	require.False(t, only.Price.Valid)
	require.Zero(t, only.StockQuantity)
	require.Equal(t, NoDescription, only.Description)
	require.Equal(t, "Uncategorized", only.Category)
}

func TestProductsSameDayKeepsLatestTime(t *testing.T) {
	in := source.NewTable("products", source.ProductColumns, []source.Product{
		{ID: id(1), Code: s("P1"), Name: s("newest"), UpdatedAt: calendar.Text("2024-04-03 15:00:00")},
		{ID: id(2), Code: s("P1"), Name: s("older"), UpdatedAt: calendar.Text("2024-04-03 09:00:00")},
		{ID: id(3), Code: s("P2"), Name: s("morning"),
			UpdatedAt: calendar.Time(time.Date(2024, 4, 3, 9, 0, 0, 0, time.UTC))},
		{ID: id(4), Code: s("P2"), Name: s("evening"),
			UpdatedAt: calendar.Time(time.Date(2024, 4, 3, 21, 0, 0, 0, time.UTC))},
	})

	res, err := New(nil).Products(in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Equal(t, "newest", res.Rows[0].ProductName)
	require.Equal(t, "evening", res.Rows[1].ProductName)
	require.Equal(t, map[int64]int64{2: 1, 3: 4}, res.Aliases)

	// Only the date is stored.
	require.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), *res.Rows[0].UpdatedAt)
}

func TestUsersSameDayKeepsLatestTime(t *testing.T) {
	in := source.NewTable("users", source.UserColumns, []source.User{
		{ID: id(1), Username: s("later"), CreatedAt: calendar.Text("2021-03-01 18:00:00")},
		{ID: id(1), Username: s("earlier"), CreatedAt: calendar.Text("2021-03-01 07:00:00")},
	})

	res, err := New(nil).Users(in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "later", res.Rows[0].Username)
}

func TestProductsDeterministic(t *testing.T) {
	in := testutil.SeedSource().Products
	tr := New(nil)

	a, err := tr.Products(in)
	require.NoError(t, err)
	b, err := tr.Products(in)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

// asSourceProducts writes dim_product rows back in the raw form.
func asSourceProducts(rows []warehouse.DimProduct) source.Table[source.Product] {
	date := func(t *time.Time) calendar.Value {
		if t == nil {
			return calendar.Null()
		}
		return calendar.Time(*t)
	}
	out := make([]source.Product, 0, len(rows))
	for _, p := range rows {
		raw := source.Product{
			ID:          id(p.ProductKey),
			Code:        s(p.ProductCode),
			Name:        s(p.ProductName),
			Category:    s(p.Category),
			Description: s(p.Description),
			Stock:       s(strconv.FormatInt(p.StockQuantity, 10)),
			CreatedAt:   date(p.CreatedAt),
			UpdatedAt:   date(p.UpdatedAt),
		}
		if p.Price.Valid {
			raw.Price = s(p.Price.Decimal.String())
		}
		out = append(out, raw)
	}
	return source.NewTable("products", source.ProductColumns, out)
}

func TestProductsIdempotentOnOwnOutput(t *testing.T) {
	inputs := map[string]source.Table[source.Product]{
		"seed": testutil.SeedSource().Products,
		"duplicates": source.NewTable("products", source.ProductColumns, []source.Product{
			{ID: id(1), Code: s("P1"), Name: s(" old "), Category: s("gadgets"),
				UpdatedAt: calendar.Text("2021-01-01 10:00:00")},
			{ID: id(2), Code: s("P1"), Name: s("new"), Category: s("toy"), Price: s("9.50"),
				UpdatedAt: calendar.Text("2021-01-01 11:00:00")},
			{ID: id(3), Code: s(""), Name: s("blank"), Stock: s("many")},
			{ID: id(4), Code: s("P2"), Name: s("only"), Price: s("abc"), Description: s("  ")},
		}),
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			tr := New(nil)
			first, err := tr.Products(in)
			require.NoError(t, err)

			second, err := tr.Products(asSourceProducts(first.Rows))
			require.NoError(t, err)
			require.Empty(t, second.Rejected)
			require.Empty(t, second.Aliases)
			if diff := cmp.Diff(first.Rows, second.Rows); diff != "" {
				t.Errorf("rerun on own output differs (-first +second):\n%s", diff)
			}
		})
	}
}

func TestProductsMissingCodeColumn(t *testing.T) {
	in := source.NewTable("products", []string{source.ColID, source.ColName}, []source.Product{{ID: id(1)}})
	_, err := New(nil).Products(in)

	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, source.ColProductCode, serr.Column)
	require.Equal(t, -1, serr.Row)
}

func TestRiders(t *testing.T) {
	in := source.NewTable("riders", append(source.RiderColumns, source.ColRiderName), []source.Rider{
		{ID: id(1), Name: s("  Pre  Joined "), FirstName: s("ignored"), Courier: s("fedez express")},
		{ID: id(2), FirstName: s("Ana"), LastName: s("  "), Age: s("n/a"), VehicleType: s("TRUCK")},
		{ID: id(2), FirstName: s("Ana"), LastName: s("Reyes"), Age: s("30"), VehicleType: s("Trike")},
		{ID: id(3)},
	})

	res, err := New(nil).Riders(in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	require.Equal(t, "Pre Joined", res.Rows[0].RiderName)
	require.Equal(t, "FEDEX express", res.Rows[0].CourierName)

	require.Equal(t, "Ana Reyes", res.Rows[1].RiderName)
	require.Equal(t, "Tricycle", res.Rows[1].VehicleType)
	require.NotNil(t, res.Rows[1].Age)
	require.Equal(t, 30, *res.Rows[1].Age)

	require.Equal(t, "Unknown", res.Rows[2].RiderName)
	require.Equal(t, "Unknown", res.Rows[2].CourierName)
	require.Equal(t, "Unknown", res.Rows[2].VehicleType)
	require.Nil(t, res.Rows[2].Age)
}

func TestDates(t *testing.T) {
	in := source.NewTable("order_lines", source.OrderLineColumns, []source.OrderLine{
		{DeliveryDate: calendar.Text("2021-05-10")},
		{DeliveryDate: calendar.Text("01/02/2021")},
		{DeliveryDate: calendar.Text("2021-01-02")},
		{DeliveryDate: calendar.Text("soon")},
		{DeliveryDate: calendar.Null()},
	})

	res, err := New(nil).Dates(in)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Equal(t, 20210102, res.Rows[0].DateKey)
	require.True(t, res.Rows[0].IsWeekend)
	require.Equal(t, 20210510, res.Rows[1].DateKey)
	require.Equal(t, "Monday", res.Rows[1].DayName)
}

func seedDimensions(t *testing.T) Dimensions {
	t.Helper()
	tr := New(nil)
	snap := testutil.SeedSource()

	users, err := tr.Users(snap.Users)
	require.NoError(t, err)
	products, err := tr.Products(snap.Products)
	require.NoError(t, err)
	riders, err := tr.Riders(snap.Riders)
	require.NoError(t, err)

	return Dimensions{Users: users.Rows, Products: products, Riders: riders.Rows}
}

func lines(rows ...source.OrderLine) source.Table[source.OrderLine] {
	return source.NewTable("order_lines", source.OrderLineColumns, rows)
}

func orderLine(order string, qty, price *string) source.OrderLine {
	return source.OrderLine{
		OrderNumber:  s(order),
		UserID:       id(1),
		ProductID:    id(10),
		RiderID:      id(100),
		DeliveryDate: calendar.Text("2021-01-02"),
		Quantity:     qty,
		UnitPrice:    price,
	}
}

func TestFactsImputeMissingValues(t *testing.T) {
	in := lines(
		orderLine("A", s("2"), s("10")),
		orderLine("B", nil, s("20")),
		orderLine("C", s("5"), nil),
	)

	res, err := New(nil).Facts(in, seedDimensions(t))
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	// Mean quantity 3.5 rounds to 4; mean price is 15.00.
	require.Equal(t, int64(4), res.Rows[1].Quantity)
	require.True(t, decimal.NewFromInt(80).Equal(res.Rows[1].SalesAmount))
	require.True(t, decimal.NewFromInt(15).Equal(res.Rows[2].UnitPrice))
	require.True(t, decimal.NewFromInt(75).Equal(res.Rows[2].SalesAmount))
}

func TestFactsMeansIgnoreRejectedLines(t *testing.T) {
	noOrder := orderLine("", s("50"), s("500"))
	noOrder.OrderNumber = nil

	in := lines(
		orderLine("A", s("2"), s("10")),
		orderLine("B", s("4"), s("20")),
		orderLine("C", s("9"), s("-100")),
		orderLine("D", s("-9"), s("90")),
		orderLine(" ", s("30"), s("300")),
		noOrder,
		orderLine("E", nil, nil),
	)

	res, err := New(nil).Facts(in, seedDimensions(t))
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	require.Len(t, res.Rejected, 4)

	// Only A and B feed the means: quantity 3, price 15.00.
	imputed := res.Rows[2]
	require.Equal(t, "E", imputed.OrderNumber)
	require.Equal(t, int64(3), imputed.Quantity)
	require.True(t, decimal.NewFromInt(15).Equal(imputed.UnitPrice))
	require.True(t, decimal.NewFromInt(45).Equal(imputed.SalesAmount))
}

func TestFactsSalesAmountRounding(t *testing.T) {
	in := lines(orderLine("A", s("3"), s("0.335")))

	res, err := New(nil).Facts(in, seedDimensions(t))
	require.NoError(t, err)
	// 0.335 is stored as 0.34, so the line is 3 x 0.34.
	require.Equal(t, "0.34", res.Rows[0].UnitPrice.StringFixed(2))
	require.Equal(t, "1.02", res.Rows[0].SalesAmount.StringFixed(2))
}

func TestFactsRejections(t *testing.T) {
	noOrder := orderLine("", s("1"), s("1"))
	noOrder.OrderNumber = nil

	in := lines(
		orderLine("A", s("-1"), s("10")),
		orderLine("B", s("1"), s("-10")),
		noOrder,
		orderLine("   ", s("1"), s("1")),
		orderLine("C", s("1"), s("1")),
	)

	res, err := New(nil).Facts(in, seedDimensions(t))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "C", res.Rows[0].OrderNumber)

	rows := make([]int, 0, len(res.Rejected))
	for _, r := range res.Rejected {
		rows = append(rows, r.Row)
	}
	require.Equal(t, []int{0, 1, 2, 3}, rows)
}

func TestFactsUnparseableDateKeepsRow(t *testing.T) {
	line := orderLine("A", s("1"), s("5"))
	line.DeliveryDate = calendar.Text("31/31/2021")

	res, err := New(nil).Facts(lines(line), seedDimensions(t))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Nil(t, res.Rows[0].DateKey)
}

func TestFactsForeignKeys(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*source.OrderLine)
		column string
	}{
		{"unknown user", func(l *source.OrderLine) { l.UserID = id(99) }, source.ColUserID},
		{"null product", func(l *source.OrderLine) { l.ProductID = nil }, source.ColProductID},
		{"unknown rider", func(l *source.OrderLine) { l.RiderID = id(7) }, source.ColRiderID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := orderLine("A", s("1"), s("1"))
			tt.mutate(&line)

			_, err := New(nil).Facts(lines(line), seedDimensions(t))
			var serr *StructuralError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, tt.column, serr.Column)
			require.Equal(t, 0, serr.Row)
		})
	}
}

func TestFactsResolveProductAliases(t *testing.T) {
	dims := seedDimensions(t)
	dims.Products.Aliases = map[int64]int64{55: 10}

	line := orderLine("A", s("1"), s("1"))
	line.ProductID = id(55)

	res, err := New(nil).Facts(lines(line), dims)
	require.NoError(t, err)
	require.Equal(t, int64(10), res.Rows[0].ProductKey)
}

func TestFactsMissingColumn(t *testing.T) {
	in := source.NewTable("order_lines", []string{source.ColOrderNumber, source.ColUserID}, []source.OrderLine{})
	_, err := New(nil).Facts(in, seedDimensions(t))
	require.True(t, errors.Is(err, ErrStructural))
}
