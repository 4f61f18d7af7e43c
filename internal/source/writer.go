//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
)

// BatchConfig configures batch insert behavior.
type BatchConfig struct {
	// BatchSize is the number of rows per INSERT statement.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch insert configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		BatchSize:        500,
		ProgressInterval: 10000,
	}
}

// progressReporter logs insert progress for one table.
type progressReporter struct {
	table    string
	total    int64
	current  int64
	interval int64
}

func (p *progressReporter) update(n int64) {
	old := p.current
	p.current += n
	if p.interval > 0 && p.current/p.interval > old/p.interval {
		logging.Info().
			Str("table", p.table).
			Int64("rows", p.current).
			Int64("total", p.total).
			Float64("percent", float64(p.current)/float64(p.total)*100).
			Msg("Writing source data")
	}
}

func (p *progressReporter) done() {
	logging.Info().
		Str("table", p.table).
		Int64("rows", p.current).
		Msg("Table complete")
}

// Write inserts a dataset into the operational tables.
func Write(ctx context.Context, conn Execer, dialect Dialect, ds *Dataset, cfg BatchConfig) error {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchConfig().BatchSize
	}

	tables := []struct {
		name    string
		columns []string
		rows    [][]any
	}{
		{"users", []string{"id", "username", "firstName", "lastName", "gender", "city", "country", "createdAt"}, userRows(ds.Users)},
		{"products", []string{"id", "name", "category", "description", "productCode", "price", "stock", "createdAt", "updatedAt"}, productRows(ds.Products)},
		{"couriers", []string{"id", "name"}, courierRows(ds.Couriers)},
		{"riders", []string{"id", "firstName", "lastName", "vehicleType", "gender", "age", "courierId"}, riderRows(ds.Riders)},
		{"orders", []string{"id", "orderNumber", "userId", "deliveryRiderId", "deliveryDate"}, orderRows(ds.Orders)},
		{"orderitems", []string{"id", "OrderId", "ProductId", "quantity"}, itemRows(ds.OrderItems)},
	}

	for _, t := range tables {
		if err := insertRows(ctx, conn, dialect, t.name, t.columns, t.rows, cfg); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.name, err)
		}
	}
	return nil
}

func insertRows(ctx context.Context, conn Execer, dialect Dialect, table string, columns []string, rows [][]any, cfg BatchConfig) error {
	progress := &progressReporter{table: table, total: int64(len(rows)), interval: cfg.ProgressInterval}

	for start := 0; start < len(rows); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(rows))
		stmt, args := insertStatement(dialect, table, columns, rows[start:end])
		if _, err := conn.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
		progress.update(int64(end - start))
	}

	progress.done()
	return nil
}

func insertStatement(dialect Dialect, table string, columns []string, rows [][]any) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(rows)*len(columns))

	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")

	n := 0
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			n++
			sb.WriteString(dialect.placeholder(n))
			args = append(args, v)
		}
		sb.WriteByte(')')
	}
	return sb.String(), args
}

func text(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func integer(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func dateText(v calendar.Value) any {
	if v.IsNull() {
		return nil
	}
	return v.String()
}

func userRows(users []User) [][]any {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{integer(u.ID), text(u.Username), text(u.FirstName), text(u.LastName),
			text(u.Gender), text(u.City), text(u.Country), dateText(u.CreatedAt)})
	}
	return rows
}

func productRows(products []Product) [][]any {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{integer(p.ID), text(p.Name), text(p.Category), text(p.Description),
			text(p.Code), text(p.Price), integer(ParseInt(p.Stock)), dateText(p.CreatedAt), dateText(p.UpdatedAt)})
	}
	return rows
}

func courierRows(couriers []Courier) [][]any {
	rows := make([][]any, 0, len(couriers))
	for _, c := range couriers {
		rows = append(rows, []any{c.ID, c.Name})
	}
	return rows
}

func riderRows(riders []RiderRow) [][]any {
	rows := make([][]any, 0, len(riders))
	for _, r := range riders {
		rows = append(rows, []any{r.ID, text(r.FirstName), text(r.LastName), text(r.VehicleType),
			text(r.Gender), integer(r.Age), integer(r.CourierID)})
	}
	return rows
}

func orderRows(orders []Order) [][]any {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []any{o.ID, o.OrderNumber, integer(o.UserID), integer(o.RiderID), dateText(o.DeliveryDate)})
	}
	return rows
}

func itemRows(items []OrderItem) [][]any {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{it.ID, it.OrderID, it.ProductID, integer(it.Quantity)})
	}
	return rows
}
