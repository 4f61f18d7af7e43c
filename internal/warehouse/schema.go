package warehouse

import (
	"context"

	"github.com/pgEdge/pgedge-salesmart/internal/db"
)

// Table names.
const (
	TableUser    = "dim_user"
	TableProduct = "dim_product"
	TableRider   = "dim_rider"
	TableDate    = "dim_date"
	TableSales   = "fact_sales"
)

// Schema SQL for the star schema. Fact foreign keys reference their
// dimensions; date_key is nullable for lines with an unparseable delivery
// date.
const createSchemaSQL = `
-- Users
CREATE TABLE IF NOT EXISTS dim_user (
    user_key    BIGINT PRIMARY KEY,
    username    VARCHAR(255) NOT NULL,
    full_name   VARCHAR(255) NOT NULL,
    gender      VARCHAR(16) NOT NULL,
    city        VARCHAR(255) NOT NULL,
    country     VARCHAR(255) NOT NULL,
    continent   VARCHAR(32) NOT NULL,
    signup_date DATE
);

-- Products, one row per product code
CREATE TABLE IF NOT EXISTS dim_product (
    product_key    BIGINT PRIMARY KEY,
    product_code   VARCHAR(64) NOT NULL,
    product_name   VARCHAR(255) NOT NULL,
    category       VARCHAR(64) NOT NULL,
    description    TEXT NOT NULL,
    price          NUMERIC(12,2),
    stock_quantity BIGINT NOT NULL DEFAULT 0,
    created_at     DATE,
    updated_at     DATE
);

-- Riders
CREATE TABLE IF NOT EXISTS dim_rider (
    rider_key    BIGINT PRIMARY KEY,
    rider_name   VARCHAR(255) NOT NULL,
    vehicle_type VARCHAR(64) NOT NULL,
    gender       VARCHAR(16) NOT NULL,
    age          INTEGER,
    courier_name VARCHAR(255) NOT NULL
);

-- Calendar
CREATE TABLE IF NOT EXISTS dim_date (
    date_key   INTEGER PRIMARY KEY,
    full_date  DATE NOT NULL UNIQUE,
    day_name   VARCHAR(9) NOT NULL,
    month_name VARCHAR(9) NOT NULL,
    day        SMALLINT NOT NULL,
    month      SMALLINT NOT NULL,
    quarter    SMALLINT NOT NULL,
    year       INTEGER NOT NULL,
    is_weekend BOOLEAN NOT NULL
);

-- Order lines
CREATE TABLE IF NOT EXISTS fact_sales (
    sales_id     BIGSERIAL PRIMARY KEY,
    customer_key BIGINT NOT NULL REFERENCES dim_user(user_key),
    product_key  BIGINT NOT NULL REFERENCES dim_product(product_key),
    rider_key    BIGINT NOT NULL REFERENCES dim_rider(rider_key),
    date_key     INTEGER REFERENCES dim_date(date_key),
    order_number VARCHAR(64) NOT NULL,
    quantity     BIGINT NOT NULL CHECK (quantity >= 0),
    unit_price   NUMERIC(12,2) NOT NULL CHECK (unit_price >= 0),
    sales_amount NUMERIC(14,2) NOT NULL CHECK (sales_amount >= 0)
);

CREATE INDEX IF NOT EXISTS ix_fs_date_key ON fact_sales(date_key);
CREATE INDEX IF NOT EXISTS ix_fs_product_key ON fact_sales(product_key);
CREATE INDEX IF NOT EXISTS ix_fs_customer_key ON fact_sales(customer_key);
CREATE INDEX IF NOT EXISTS ix_fs_rider_key ON fact_sales(rider_key);
CREATE INDEX IF NOT EXISTS ix_fs_order_number ON fact_sales(order_number);
CREATE INDEX IF NOT EXISTS ix_dp_category ON dim_product(category);
CREATE INDEX IF NOT EXISTS ix_dr_courier ON dim_rider(courier_name);
CREATE INDEX IF NOT EXISTS ix_du_geo ON dim_user(continent, country, city);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS fact_sales CASCADE;
DROP TABLE IF EXISTS dim_date CASCADE;
DROP TABLE IF EXISTS dim_rider CASCADE;
DROP TABLE IF EXISTS dim_product CASCADE;
DROP TABLE IF EXISTS dim_user CASCADE;
`

// CreateSchema creates the star schema tables and indexes.
func CreateSchema(ctx context.Context, d db.DB) error {
	_, err := d.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the star schema tables.
func DropSchema(ctx context.Context, d db.DB) error {
	_, err := d.Exec(ctx, dropSchemaSQL)
	return err
}
