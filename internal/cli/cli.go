//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-salesmart.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesmart/internal/config"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/report"
	"github.com/pgEdge/pgedge-salesmart/pkg/version"
)

var (
	// Global flags
	cfgFile       string
	sourceConn    string
	sourceDriver  string
	warehouseConn string
	logLevel      string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-salesmart",
		Short: "Sales data mart ETL and OLAP query tool",
		Long: `pgedge-salesmart extracts an e-commerce operational database, cleans
and normalizes it into a star schema in PostgreSQL, and answers analytical
questions over the result.

The operational data is expected to be dirty: inconsistent category and
vehicle names, mixed date formats, duplicate products and missing values
are repaired by the transform, and rows that cannot be repaired are
reported rather than loaded.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as serve.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-salesmart.yaml)")
	rootCmd.PersistentFlags().StringVar(&sourceConn, "source", "",
		"operational database connection string")
	rootCmd.PersistentFlags().StringVar(&sourceDriver, "source-driver", "",
		"operational database driver (postgres, mysql)")
	rootCmd.PersistentFlags().StringVar(&warehouseConn, "warehouse", "",
		"warehouse PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(etlCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(queriesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if sourceConn != "" {
		cfg.Source.Connection = sourceConn
	}
	if sourceDriver != "" {
		cfg.Source.Driver = sourceDriver
	}
	if warehouseConn != "" {
		cfg.Warehouse.Connection = warehouseConn
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List available queries",
	Long: `List the named analytical queries that can be run with 'query' or
through the API, with the filter attributes each one accepts.`,
	Run: func(cmd *cobra.Command, args []string) {
		rows := make([][]string, 0)
		for _, def := range report.All() {
			rows = append(rows, []string{def.Name, joinOrDash(def.Filters), def.Description})
		}
		renderTable(cmd.OutOrStdout(), []string{"Query", "Filters", "Description"}, rows)
	},
}
