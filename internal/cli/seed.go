package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesmart/internal/datagen"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
)

var (
	seedUsers        int
	seedProducts     int
	seedRiders       int
	seedOrders       int
	seedSeed         uint64
	seedDropExisting bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate an operational database with synthetic dirty data",
	Long: `Create the operational tables (users, products, couriers, riders,
orders, orderitems) in the source database and fill them with generated
data carrying the defects the ETL is built to repair.

Example:
  pgedge-salesmart seed --source "postgres://..." --orders 5000 --seed 7`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 0, "number of users to generate")
	seedCmd.Flags().IntVar(&seedProducts, "products", 0, "number of products to generate")
	seedCmd.Flags().IntVar(&seedRiders, "riders", 0, "number of riders to generate")
	seedCmd.Flags().IntVar(&seedOrders, "orders", 0, "number of orders to generate")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0, "random seed (default from config)")
	seedCmd.Flags().BoolVar(&seedDropExisting, "drop-existing", false,
		"drop the operational tables before seeding")
}

// applySeedFlags overrides seed configuration with any flags given.
func applySeedFlags() {
	if seedUsers > 0 {
		cfg.Seed.Users = seedUsers
	}
	if seedProducts > 0 {
		cfg.Seed.Products = seedProducts
	}
	if seedRiders > 0 {
		cfg.Seed.Riders = seedRiders
	}
	if seedOrders > 0 {
		cfg.Seed.Orders = seedOrders
	}
	if seedSeed > 0 {
		cfg.Seed.Seed = seedSeed
	}
	if seedDropExisting {
		cfg.Seed.DropExisting = true
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	applySeedFlags()
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	dialect, err := source.ParseDialect(cfg.Source.Driver)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	conn, err := source.Open(ctx, dialect, cfg.Source.Connection)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Seed.DropExisting {
		logging.Info().Msg("Dropping operational tables")
		if err := source.DropSchema(ctx, conn); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	logging.Info().Msg("Creating operational tables")
	if err := source.CreateSchema(ctx, conn); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	ds := datagen.NewRawGenerator(cfg.Seed.Seed, cfg.Seed.Counts()).Generate()
	if err := source.Write(ctx, conn, dialect, ds, source.DefaultBatchConfig()); err != nil {
		return fmt.Errorf("failed to write source data: %w", err)
	}

	logging.Info().
		Uint64("seed", cfg.Seed.Seed).
		Int("orders", len(ds.Orders)).
		Msg("Source database seeded")
	return nil
}
