package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   *string
		want *int64
	}{
		{nil, nil},
		{String(""), nil},
		{String("12"), Int(12)},
		{String(" 12 "), Int(12)},
		{String("12.0"), Int(12)},
		{String("12.5"), nil},
		{String("abc"), nil},
		{String("-3"), Int(-3)},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseInt(tt.in))
	}
}

func TestDecodeUser(t *testing.T) {
	u := DecodeUser(Record{
		"id":        String("7"),
		"firstname": String("Ana"),
		"gender":    nil,
		"createdat": String("01/15/2021"),
	})

	require.Equal(t, Int(7), u.ID)
	require.Equal(t, "Ana", *u.FirstName)
	require.Nil(t, u.Gender)
	require.Nil(t, u.LastName)
	d, ok := calendar.Parse(u.CreatedAt)
	require.True(t, ok)
	require.Equal(t, 20210115, d.Key)
}

func TestDecodeOrderLine(t *testing.T) {
	l := DecodeOrderLine(Record{
		"ordernumber":     String("ORD-1"),
		"userid":          String("1"),
		"productid":       String("10"),
		"deliveryriderid": String("100"),
		"deliverydate":    nil,
		"quantity":        String("2"),
		"price":           String("50.00"),
	})

	require.Equal(t, "ORD-1", *l.OrderNumber)
	require.Equal(t, Int(10), l.ProductID)
	require.True(t, l.DeliveryDate.IsNull())
	require.Equal(t, "50.00", *l.UnitPrice)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(User{ID: Int(1)}))

	err := Validate(User{})
	require.Error(t, err)
	require.Equal(t, "id is missing", err.Error())

	err = Validate(OrderLine{})
	require.Error(t, err)
	require.Equal(t, "orderNumber is missing", err.Error())
}

func TestColumns(t *testing.T) {
	cols := NewColumns("ID", " ProductCode ")
	require.True(t, cols.Has("id"))
	require.True(t, cols.Has("productcode"))
	require.True(t, cols.Has("ProductCode"))
	require.False(t, cols.Has("price"))
}

func TestDatasetSnapshotJoins(t *testing.T) {
	ds := &Dataset{
		Products: []Product{
			{ID: Int(10), Code: String("P001"), Price: String("1200.00")},
		},
		Couriers: []Courier{{ID: 1, Name: "FEDEZ"}},
		Riders: []RiderRow{
			{ID: 100, FirstName: String("John"), LastName: String("Doe"), Age: Int(28), CourierID: Int(1)},
			{ID: 101, CourierID: Int(9)},
		},
		Orders: []Order{
			{ID: 1, OrderNumber: "ORD-1", UserID: Int(1), RiderID: Int(100), DeliveryDate: calendar.Text("2021-01-02")},
		},
		OrderItems: []OrderItem{
			{ID: 1, OrderID: 1, ProductID: 10, Quantity: Int(2)},
			{ID: 2, OrderID: 99, ProductID: 11},
		},
	}

	snap := ds.Snapshot()

	require.Len(t, snap.Riders.Rows, 2)
	require.Equal(t, "FEDEZ", *snap.Riders.Rows[0].Courier)
	require.Equal(t, "28", *snap.Riders.Rows[0].Age)
	require.Nil(t, snap.Riders.Rows[1].Courier)

	require.Len(t, snap.OrderLines.Rows, 2)
	first := snap.OrderLines.Rows[0]
	require.Equal(t, "ORD-1", *first.OrderNumber)
	require.Equal(t, "2", *first.Quantity)
	require.Equal(t, "1200.00", *first.UnitPrice)
	require.Equal(t, Int(100), first.RiderID)

	orphan := snap.OrderLines.Rows[1]
	require.Nil(t, orphan.OrderNumber)
	require.Nil(t, orphan.UnitPrice)

	for _, c := range OrderLineColumns {
		require.True(t, snap.OrderLines.Columns.Has(c), c)
	}
}

func TestInsertStatement(t *testing.T) {
	rows := [][]any{{int64(1), "a"}, {int64(2), nil}}

	stmt, args := insertStatement(Postgres, "couriers", []string{"id", "name"}, rows)
	require.Equal(t, "INSERT INTO couriers (id, name) VALUES ($1, $2), ($3, $4)", stmt)
	require.Equal(t, []any{int64(1), "a", int64(2), nil}, args)

	stmt, _ = insertStatement(MySQL, "couriers", []string{"id", "name"}, rows)
	require.Equal(t, "INSERT INTO couriers (id, name) VALUES (?, ?), (?, ?)", stmt)
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"": Postgres, "pgx": Postgres, "PostgreSQL": Postgres, "mysql": MySQL} {
		d, err := ParseDialect(in)
		require.NoError(t, err)
		require.Equal(t, want, d)
	}
	_, err := ParseDialect("oracle")
	require.Error(t, err)
}
