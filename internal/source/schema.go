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

	// Register database/sql drivers for both supported source engines.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pgEdge/pgedge-salesmart/internal/db"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
)

// Dialect identifies the operational database engine.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// ParseDialect maps a configured driver name to a dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	default:
		return "", fmt.Errorf("unsupported source driver: %s", name)
	}
}

func (d Dialect) driverName() string {
	if d == MySQL {
		return "mysql"
	}
	return "pgx"
}

func (d Dialect) placeholder(n int) string {
	if d == MySQL {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// Open connects to the operational database, retrying the first ping.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}
	if err := db.Retry(ctx, "source ping", func() error {
		return conn.PingContext(ctx)
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping source database: %w", err)
	}

	logging.Info().
		Str("driver", string(dialect)).
		Msg("Connected to source database")

	return conn, nil
}

// Statements creating the operational tables. Dates are stored as text
// because the system of record accepts them in several formats. The DDL is
// valid for both PostgreSQL and MySQL.
var createSchemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id        BIGINT PRIMARY KEY,
    username  VARCHAR(255),
    firstName VARCHAR(255),
    lastName  VARCHAR(255),
    gender    VARCHAR(32),
    city      VARCHAR(255),
    country   VARCHAR(255),
    createdAt VARCHAR(32)
)`,
	`CREATE TABLE IF NOT EXISTS products (
    id          BIGINT PRIMARY KEY,
    name        VARCHAR(255),
    category    VARCHAR(255),
    description TEXT,
    productCode VARCHAR(64),
    price       DECIMAL(12,2),
    stock       INT,
    createdAt   VARCHAR(32),
    updatedAt   VARCHAR(32)
)`,
	`CREATE TABLE IF NOT EXISTS couriers (
    id   BIGINT PRIMARY KEY,
    name VARCHAR(255)
)`,
	`CREATE TABLE IF NOT EXISTS riders (
    id          BIGINT PRIMARY KEY,
    firstName   VARCHAR(255),
    lastName    VARCHAR(255),
    vehicleType VARCHAR(64),
    gender      VARCHAR(32),
    age         INT,
    courierId   BIGINT
)`,
	`CREATE TABLE IF NOT EXISTS orders (
    id              BIGINT PRIMARY KEY,
    orderNumber     VARCHAR(64) NOT NULL,
    userId          BIGINT,
    deliveryRiderId BIGINT,
    deliveryDate    VARCHAR(32)
)`,
	`CREATE TABLE IF NOT EXISTS orderitems (
    id        BIGINT PRIMARY KEY,
    OrderId   BIGINT NOT NULL,
    ProductId BIGINT NOT NULL,
    quantity  INT
)`,
}

var sourceTables = []string{"orderitems", "orders", "riders", "couriers", "products", "users"}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateSchema creates the operational tables.
func CreateSchema(ctx context.Context, conn Execer) error {
	for _, stmt := range createSchemaSQL {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create source schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the operational tables.
func DropSchema(ctx context.Context, conn Execer) error {
	for _, table := range sourceTables {
		if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}
