package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesmart/internal/db"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last ETL run recorded in the warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateWarehouse(); err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := db.Connect(ctx, cfg.Warehouse.Connection, cfg.Warehouse.MaxConns)
		if err != nil {
			return fmt.Errorf("failed to connect to warehouse: %w", err)
		}
		defer pool.Close()

		exists, err := db.MetadataExists(ctx, pool)
		if err != nil {
			return err
		}
		if !exists {
			cmd.Println("No ETL run has been recorded.")
			return nil
		}

		entries, err := db.GetAllMetadata(ctx, pool)
		if err != nil {
			return fmt.Errorf("failed to read metadata: %w", err)
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Key, e.Value})
		}
		renderTable(cmd.OutOrStdout(), []string{"Key", "Value"}, rows)
		return nil
	},
}
