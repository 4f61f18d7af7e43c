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
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-salesmart/internal/logging"
)

// Extraction queries. Users and products select every column so a column
// dropped upstream shows up as absent rather than failing the query.
const (
	usersQuery    = `SELECT * FROM users ORDER BY id`
	productsQuery = `SELECT * FROM products ORDER BY id`
	ridersQuery   = `
SELECT r.*, c.name AS courier_name
FROM riders r
LEFT JOIN couriers c ON r.courierId = c.id
ORDER BY r.id`
	orderLinesQuery = `
SELECT oi.quantity, p.price, o.orderNumber, o.userId, oi.ProductId,
       o.deliveryRiderId, o.deliveryDate
FROM orderitems oi
LEFT JOIN orders o ON oi.OrderId = o.id
LEFT JOIN products p ON oi.ProductId = p.id
ORDER BY oi.id`
)

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Extract reads a full snapshot of the operational tables.
func Extract(ctx context.Context, conn Queryer) (*Snapshot, error) {
	snap := &Snapshot{}

	cols, recs, err := readTable(ctx, conn, usersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to extract users: %w", err)
	}
	snap.Users = decodeTable("users", cols, recs, DecodeUser)

	cols, recs, err = readTable(ctx, conn, productsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to extract products: %w", err)
	}
	snap.Products = decodeTable("products", cols, recs, DecodeProduct)

	cols, recs, err = readTable(ctx, conn, ridersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to extract riders: %w", err)
	}
	snap.Riders = decodeTable("riders", cols, recs, DecodeRider)

	cols, recs, err = readTable(ctx, conn, orderLinesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to extract order lines: %w", err)
	}
	snap.OrderLines = decodeTable("order_lines", cols, recs, DecodeOrderLine)

	logging.Info().
		Int("users", len(snap.Users.Rows)).
		Int("products", len(snap.Products.Rows)).
		Int("riders", len(snap.Riders.Rows)).
		Int("order_lines", len(snap.OrderLines.Rows)).
		Msg("Extracted source snapshot")

	return snap, nil
}

func decodeTable[T any](name string, cols []string, recs []Record, decode func(Record) T) Table[T] {
	rows := make([]T, len(recs))
	for i, r := range recs {
		rows[i] = decode(r)
	}
	return NewTable(name, cols, rows)
}

func readTable(ctx context.Context, conn Queryer, query string) ([]string, []Record, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	for i, c := range cols {
		cols[i] = strings.ToLower(c)
	}

	var recs []Record
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			if values[i].Valid {
				s := values[i].String
				rec[c] = &s
			} else {
				rec[c] = nil
			}
		}
		recs = append(recs, rec)
	}

	return cols, recs, rows.Err()
}
