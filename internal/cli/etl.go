package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesmart/internal/datagen"
	"github.com/pgEdge/pgedge-salesmart/internal/db"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/normalize"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
	"github.com/pgEdge/pgedge-salesmart/internal/transform"
	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// Metadata keys written by an ETL run besides the db package defaults.
const (
	metaRejected  = "rejected"
	metaRowPrefix = "rows_"
)

var (
	etlWorkers    int
	etlVocabulary string
	etlSynthetic  bool
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Extract, transform and load the sales data mart",
	Long: `Extract the operational tables, clean and normalize them into the
star schema, and replace the warehouse contents in a single transaction.

With --synthetic the source is generated in memory instead of extracted,
using the seed settings.

Example:
  pgedge-salesmart etl --source "postgres://..." --warehouse "postgres://..."`,
	RunE: runETL,
}

func init() {
	etlCmd.Flags().IntVar(&etlWorkers, "workers", 0,
		"dimension transforms run concurrently (default: 4)")
	etlCmd.Flags().StringVar(&etlVocabulary, "vocabulary", "",
		"YAML file of extra synonyms layered over the built-in tables")
	etlCmd.Flags().BoolVar(&etlSynthetic, "synthetic", false,
		"transform generated data instead of extracting the source")
}

func runETL(cmd *cobra.Command, args []string) error {
	if etlWorkers > 0 {
		cfg.ETL.Workers = etlWorkers
	}
	if etlVocabulary != "" {
		cfg.ETL.VocabularyFile = etlVocabulary
	}
	if etlSynthetic {
		cfg.ETL.Synthetic = true
	}
	if err := cfg.ValidateETL(); err != nil {
		return err
	}

	tables, err := normalize.Load(cfg.ETL.VocabularyFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	snap, origin, err := extract(ctx)
	if err != nil {
		return err
	}

	out, rep, err := transform.New(tables).Run(ctx, snap, transform.Options{Workers: cfg.ETL.Workers})
	if err != nil {
		return err
	}
	rep.Log()

	pool, err := db.Connect(ctx, cfg.Warehouse.Connection, cfg.Warehouse.MaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer pool.Close()

	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create warehouse schema: %w", err)
	}
	if err := warehouse.Load(ctx, pool, out); err != nil {
		return err
	}

	meta := map[string]string{
		db.MetaSource: origin,
		metaRejected:  strconv.Itoa(rep.RejectedCount()),
	}
	for table, n := range out.Counts() {
		meta[metaRowPrefix+table] = strconv.Itoa(n)
	}
	if err := db.SaveRunMetadata(ctx, pool, meta); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	printRunReport(cmd.OutOrStdout(), rep)
	logging.Info().Str("source", origin).Msg("ETL run complete")
	return nil
}

// extract returns the source snapshot and a label for where it came from.
func extract(ctx context.Context) (*source.Snapshot, string, error) {
	if cfg.ETL.Synthetic {
		ds := datagen.NewRawGenerator(cfg.Seed.Seed, cfg.Seed.Counts()).Generate()
		return ds.Snapshot(), "synthetic", nil
	}

	dialect, err := source.ParseDialect(cfg.Source.Driver)
	if err != nil {
		return nil, "", err
	}
	conn, err := source.Open(ctx, dialect, cfg.Source.Connection)
	if err != nil {
		return nil, "", err
	}
	defer conn.Close()

	snap, err := source.Extract(ctx, conn)
	if err != nil {
		return nil, "", err
	}
	return snap, string(dialect), nil
}
