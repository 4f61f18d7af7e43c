//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/pkg/version"
)

const metadataTable = "salesmart_metadata"

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS salesmart_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// Well-known metadata keys.
const (
	MetaVersion  = "version"
	MetaLoadedAt = "loaded_at"
	MetaSource   = "source"
)

// SaveRunMetadata records the outcome of an ETL run. The version and load
// time are always written alongside values.
func SaveRunMetadata(ctx context.Context, d DB, values map[string]string) error {
	if _, err := d.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		MetaVersion:  version.Short(),
		MetaLoadedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range values {
		metadata[k] = v
	}

	for key, value := range metadata {
		_, err := d.Exec(ctx, `
            INSERT INTO salesmart_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Int("keys", len(metadata)).
		Msg("Saved run metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, d DB, key string) (string, error) {
	var value string
	err := d.QueryRow(ctx, `
        SELECT value FROM salesmart_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// Entry is one metadata key/value pair.
type Entry struct {
	Key   string
	Value string
}

// GetAllMetadata retrieves all metadata sorted by key.
func GetAllMetadata(ctx context.Context, d DB) ([]Entry, error) {
	rows, err := d.Query(ctx, `SELECT key, value FROM salesmart_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, d DB) error {
	_, err := d.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, d DB) (bool, error) {
	var exists bool
	err := d.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, metadataTable).Scan(&exists)
	return exists, err
}
