//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesmart/internal/db"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
)

var (
	userColumns = []string{
		"user_key", "username", "full_name", "gender", "city", "country",
		"continent", "signup_date",
	}
	productColumns = []string{
		"product_key", "product_code", "product_name", "category", "description",
		"price", "stock_quantity", "created_at", "updated_at",
	}
	riderColumns = []string{
		"rider_key", "rider_name", "vehicle_type", "gender", "age", "courier_name",
	}
	dateColumns = []string{
		"date_key", "full_date", "day_name", "month_name", "day", "month",
		"quarter", "year", "is_weekend",
	}
	salesColumns = []string{
		"customer_key", "product_key", "rider_key", "date_key", "order_number",
		"quantity", "unit_price", "sales_amount",
	}
)

// Load replaces the warehouse contents with snap in a single transaction.
// Dimensions are copied before facts so foreign keys resolve.
func Load(ctx context.Context, d db.DB, snap *Snapshot) error {
	start := time.Now()

	tx, err := d.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE fact_sales, dim_date, dim_rider, dim_product, dim_user`); err != nil {
		return fmt.Errorf("failed to truncate warehouse: %w", err)
	}

	steps := []struct {
		table   string
		columns []string
		rows    int
		row     func(i int) ([]any, error)
	}{
		{TableUser, userColumns, len(snap.Users), func(i int) ([]any, error) {
			u := snap.Users[i]
			return []any{u.UserKey, u.Username, u.FullName, u.Gender, u.City,
				u.Country, u.Continent, dateArg(u.SignupDate)}, nil
		}},
		{TableProduct, productColumns, len(snap.Products), func(i int) ([]any, error) {
			p := snap.Products[i]
			return []any{p.ProductKey, p.ProductCode, p.ProductName, p.Category,
				p.Description, nullNumeric(p.Price), p.StockQuantity,
				dateArg(p.CreatedAt), dateArg(p.UpdatedAt)}, nil
		}},
		{TableRider, riderColumns, len(snap.Riders), func(i int) ([]any, error) {
			r := snap.Riders[i]
			return []any{r.RiderKey, r.RiderName, r.VehicleType, r.Gender,
				r.Age, r.CourierName}, nil
		}},
		{TableDate, dateColumns, len(snap.Dates), func(i int) ([]any, error) {
			dd := snap.Dates[i]
			return []any{dd.DateKey, pgtype.Date{Time: dd.FullDate, Valid: true},
				dd.DayName, dd.MonthName, dd.Day, dd.Month, dd.Quarter, dd.Year,
				dd.IsWeekend}, nil
		}},
		{TableSales, salesColumns, len(snap.Sales), func(i int) ([]any, error) {
			f := snap.Sales[i]
			return []any{f.CustomerKey, f.ProductKey, f.RiderKey, f.DateKey,
				f.OrderNumber, f.Quantity, numeric(f.UnitPrice),
				numeric(f.SalesAmount)}, nil
		}},
	}

	for _, step := range steps {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{step.table}, step.columns,
			pgx.CopyFromSlice(step.rows, step.row))
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", step.table, err)
		}
		logging.Debug().
			Str("table", step.table).
			Int64("rows", n).
			Msg("Loaded table")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}

	logging.Info().
		Int("facts", len(snap.Sales)).
		Dur("duration", time.Since(start)).
		Msg("Warehouse loaded")

	return nil
}

// Read loads the full warehouse into memory. Rows come back in key order.
func Read(ctx context.Context, d db.DB) (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := d.Query(ctx, `
        SELECT user_key, username, full_name, gender, city, country, continent, signup_date
        FROM dim_user ORDER BY user_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableUser, err)
	}
	snap.Users, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (DimUser, error) {
		var u DimUser
		var signup pgtype.Date
		err := row.Scan(&u.UserKey, &u.Username, &u.FullName, &u.Gender, &u.City,
			&u.Country, &u.Continent, &signup)
		u.SignupDate = dateValue(signup)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableUser, err)
	}

	rows, err = d.Query(ctx, `
        SELECT product_key, product_code, product_name, category, description,
               price, stock_quantity, created_at, updated_at
        FROM dim_product ORDER BY product_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableProduct, err)
	}
	snap.Products, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (DimProduct, error) {
		var p DimProduct
		var price pgtype.Numeric
		var created, updated pgtype.Date
		err := row.Scan(&p.ProductKey, &p.ProductCode, &p.ProductName, &p.Category,
			&p.Description, &price, &p.StockQuantity, &created, &updated)
		if price.Valid {
			p.Price = decimal.NewNullDecimal(fromNumeric(price))
		}
		p.CreatedAt = dateValue(created)
		p.UpdatedAt = dateValue(updated)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableProduct, err)
	}

	rows, err = d.Query(ctx, `
        SELECT rider_key, rider_name, vehicle_type, gender, age, courier_name
        FROM dim_rider ORDER BY rider_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableRider, err)
	}
	snap.Riders, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (DimRider, error) {
		var r DimRider
		err := row.Scan(&r.RiderKey, &r.RiderName, &r.VehicleType, &r.Gender,
			&r.Age, &r.CourierName)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableRider, err)
	}

	rows, err = d.Query(ctx, `
        SELECT date_key, full_date, day_name, month_name, day, month, quarter, year, is_weekend
        FROM dim_date ORDER BY date_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableDate, err)
	}
	snap.Dates, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (DimDate, error) {
		var dd DimDate
		var full pgtype.Date
		err := row.Scan(&dd.DateKey, &full, &dd.DayName, &dd.MonthName, &dd.Day,
			&dd.Month, &dd.Quarter, &dd.Year, &dd.IsWeekend)
		dd.FullDate = full.Time
		return dd, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableDate, err)
	}

	rows, err = d.Query(ctx, `
        SELECT customer_key, product_key, rider_key, date_key, order_number,
               quantity, unit_price, sales_amount
        FROM fact_sales ORDER BY sales_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableSales, err)
	}
	snap.Sales, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (FactSales, error) {
		var f FactSales
		var unit, amount pgtype.Numeric
		err := row.Scan(&f.CustomerKey, &f.ProductKey, &f.RiderKey, &f.DateKey,
			&f.OrderNumber, &f.Quantity, &unit, &amount)
		f.UnitPrice = fromNumeric(unit)
		f.SalesAmount = fromNumeric(amount)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableSales, err)
	}

	logging.Debug().
		Int("users", len(snap.Users)).
		Int("products", len(snap.Products)).
		Int("riders", len(snap.Riders)).
		Int("dates", len(snap.Dates)).
		Int("facts", len(snap.Sales)).
		Msg("Read warehouse")

	return snap, nil
}

// Exists reports whether the fact table has been created.
func Exists(ctx context.Context, d db.DB) (bool, error) {
	var exists bool
	err := d.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, TableSales).Scan(&exists)
	return exists, err
}

func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func nullNumeric(d decimal.NullDecimal) pgtype.Numeric {
	if !d.Valid {
		return pgtype.Numeric{}
	}
	return numeric(d.Decimal)
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func dateArg(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func dateValue(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time.UTC()
	return &t
}
