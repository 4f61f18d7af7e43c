//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-salesmart.
// Configuration is loaded from a config file, then from environment
// variables (optionally read from a .env file), then from CLI flags; each
// layer takes precedence over the previous one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-salesmart/internal/datagen"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
)

// Environment variables that override file values.
const (
	EnvSourceConnection    = "SALESMART_SOURCE_CONNECTION"
	EnvSourceDriver        = "SALESMART_SOURCE_DRIVER"
	EnvWarehouseConnection = "SALESMART_WAREHOUSE_CONNECTION"
)

// Config holds all configuration for pgedge-salesmart.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Source is the operational database.
	Source SourceConfig `mapstructure:"source"`

	// Warehouse is the PostgreSQL star schema database.
	Warehouse WarehouseConfig `mapstructure:"warehouse"`

	// ETL holds configuration for the etl subcommand.
	ETL ETLConfig `mapstructure:"etl"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`

	// Serve holds configuration for the serve subcommand.
	Serve ServeConfig `mapstructure:"serve"`

	// Query holds configuration for the query subcommand.
	Query QueryConfig `mapstructure:"query"`
}

// SourceConfig locates the operational database.
type SourceConfig struct {
	// Driver is postgres or mysql.
	Driver string `mapstructure:"driver"`

	// Connection is the driver-specific connection string.
	Connection string `mapstructure:"connection"`
}

// WarehouseConfig locates the warehouse.
type WarehouseConfig struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// MaxConns is the maximum number of pooled connections.
	MaxConns int32 `mapstructure:"max_conns"`
}

// ETLConfig holds configuration for a pipeline run.
type ETLConfig struct {
	// Workers is the number of dimension transforms run concurrently.
	Workers int `mapstructure:"workers"`

	// VocabularyFile is an optional YAML file of extra synonyms.
	VocabularyFile string `mapstructure:"vocabulary_file"`

	// Synthetic transforms generated data instead of extracting.
	Synthetic bool `mapstructure:"synthetic"`
}

// SeedConfig holds configuration for source data generation.
type SeedConfig struct {
	Users    int `mapstructure:"users"`
	Products int `mapstructure:"products"`
	Riders   int `mapstructure:"riders"`
	Orders   int `mapstructure:"orders"`

	// Seed makes generation reproducible.
	Seed uint64 `mapstructure:"seed"`

	// DropExisting drops the operational tables before seeding.
	DropExisting bool `mapstructure:"drop_existing"`
}

// ServeConfig holds configuration for the API server.
type ServeConfig struct {
	// Listen is the HTTP listen address.
	Listen string `mapstructure:"listen"`

	// CacheTTL is how long rendered reports are cached. Zero disables
	// the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// QueryConfig holds configuration for one-off queries.
type QueryConfig struct {
	// Limit caps the rows printed. Zero means no limit.
	Limit int `mapstructure:"limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	counts := datagen.DefaultCounts()
	return &Config{
		LogLevel: "info",
		Source: SourceConfig{
			Driver: string(source.Postgres),
		},
		Warehouse: WarehouseConfig{
			MaxConns: 4,
		},
		ETL: ETLConfig{
			Workers: 4,
		},
		Seed: SeedConfig{
			Users:    counts.Users,
			Products: counts.Products,
			Riders:   counts.Riders,
			Orders:   counts.Orders,
			Seed:     1,
		},
		Serve: ServeConfig{
			Listen:   ":8080",
			CacheTTL: 5 * time.Minute,
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-salesmart.yaml
// 3. ~/.config/pgedge-salesmart/pgedge-salesmart.yaml
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("pgedge-salesmart")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-salesmart"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for key, env := range map[string]string{
		"source.connection":    EnvSourceConnection,
		"source.driver":        EnvSourceDriver,
		"warehouse.connection": EnvWarehouseConnection,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Counts returns the row counts to generate.
func (s SeedConfig) Counts() datagen.Counts {
	return datagen.Counts{
		Users:    s.Users,
		Products: s.Products,
		Riders:   s.Riders,
		Orders:   s.Orders,
	}
}

// ValidateSource checks the operational database settings.
func (c *Config) ValidateSource() error {
	if c.Source.Connection == "" {
		return fmt.Errorf("source connection string is required")
	}
	if _, err := source.ParseDialect(c.Source.Driver); err != nil {
		return err
	}
	return nil
}

// ValidateWarehouse checks the warehouse settings.
func (c *Config) ValidateWarehouse() error {
	if c.Warehouse.Connection == "" {
		return fmt.Errorf("warehouse connection string is required")
	}
	if c.Warehouse.MaxConns < 1 {
		return fmt.Errorf("warehouse max_conns must be at least 1")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.ValidateSource(); err != nil {
		return err
	}
	return c.Seed.Counts().Validate()
}

// ValidateETL checks configuration required for the etl command.
func (c *Config) ValidateETL() error {
	if err := c.ValidateWarehouse(); err != nil {
		return err
	}
	if c.ETL.Synthetic {
		if err := c.Seed.Counts().Validate(); err != nil {
			return err
		}
	} else if err := c.ValidateSource(); err != nil {
		return err
	}
	if c.ETL.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}

// ValidateQuery checks configuration required for the query command.
func (c *Config) ValidateQuery() error {
	if err := c.ValidateWarehouse(); err != nil {
		return err
	}
	if c.Query.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

// ValidateServe checks configuration required for the serve command.
func (c *Config) ValidateServe() error {
	if err := c.ValidateWarehouse(); err != nil {
		return err
	}
	if c.Serve.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Serve.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	return nil
}
