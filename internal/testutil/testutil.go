//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides fixtures and PostgreSQL helpers for tests.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnvTestConn overrides the PostgreSQL server used by integration tests.
const EnvTestConn = "PGEDGE_TEST_CONN"

const (
	defaultTestConn = "postgres://postgres@localhost:5432/postgres"
	dbPrefix        = "salesmart_test_"
	setupTimeout    = 30 * time.Second
)

// NewTestDB creates a scratch database on the test server, connects to it
// and returns the pool with the database name. The pool is closed and the
// database dropped when t finishes; a failed test keeps the database for
// inspection. The test is skipped when no server is reachable.
func NewTestDB(t *testing.T, name string) (*pgxpool.Pool, string) {
	t.Helper()

	base, err := pgxpool.ParseConfig(testConn())
	if err != nil {
		t.Fatalf("Invalid %s: %v", EnvTestConn, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	admin, err := pgxpool.NewWithConfig(ctx, base)
	if err == nil {
		err = admin.Ping(ctx)
	}
	if err != nil {
		if admin != nil {
			admin.Close()
		}
		t.Skipf("PostgreSQL not available, skipping integration test: %v", err)
	}
	defer admin.Close()

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		t.Fatalf("Failed to generate database name: %v", err)
	}
	dbName := dbPrefix + name + "_" + hex.EncodeToString(suffix)
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cfg := base.Copy()
	cfg.ConnConfig.Database = dbName
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", dbName)
			return
		}
		dropDB(t, base, dbName)
	})

	return pool, dbName
}

func testConn() string {
	if conn := os.Getenv(EnvTestConn); conn != "" {
		return conn
	}
	return defaultTestConn
}

func dropDB(t *testing.T, base *pgxpool.Config, dbName string) {
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	admin, err := pgxpool.NewWithConfig(ctx, base)
	if err != nil {
		t.Logf("Warning: failed to connect to drop %s: %v", dbName, err)
		return
	}
	defer admin.Close()

	_, err = admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()+" WITH (FORCE)")
	if err != nil {
		t.Logf("Warning: failed to drop %s: %v", dbName, err)
	}
}
