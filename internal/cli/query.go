package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesmart/internal/db"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/olap"
	"github.com/pgEdge/pgedge-salesmart/internal/report"
	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

var (
	queryFilters []string
	queryLimit   int
	queryOutput  string
)

var queryCmd = &cobra.Command{
	Use:   "query <name>",
	Short: "Run a named query against the warehouse",
	Long: `Read the warehouse and print the result of one named query. Use
'queries' to list the catalog.

Filters are given as attribute=value[,value...] and may be repeated.
Attributes combine with AND, values of one attribute with OR.

Example:
  pgedge-salesmart query user_sales --filter continent=Asia --filter gender=female
  pgedge-salesmart query top_products --limit 5 --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVar(&queryFilters, "filter", nil,
		"filter as attribute=value[,value...] (repeatable)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum rows to print (0 = all)")
	queryCmd.Flags().StringVar(&queryOutput, "output", formatTable, "output format: table, json")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("limit") {
		cfg.Query.Limit = queryLimit
	}
	if err := cfg.ValidateQuery(); err != nil {
		return err
	}

	def, err := report.Get(args[0])
	if err != nil {
		return err
	}
	filter, err := parseFilters(queryFilters)
	if err != nil {
		return err
	}

	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}

	t, err := def.Execute(engine, report.Params{Filter: filter, Limit: cfg.Query.Limit})
	if err != nil {
		return err
	}
	return printReportTable(cmd.OutOrStdout(), t, queryOutput)
}

// parseFilters turns attribute=v1,v2 arguments into a filter.
func parseFilters(args []string) (olap.Filter, error) {
	if len(args) == 0 {
		return nil, nil
	}
	f := make(olap.Filter)
	for _, arg := range args {
		attr, list, ok := strings.Cut(arg, "=")
		attr = strings.TrimSpace(attr)
		if !ok || attr == "" {
			return nil, fmt.Errorf("%w: expected attribute=value, got %q", olap.ErrInvalidFilter, arg)
		}
		for _, v := range strings.Split(list, ",") {
			if v = strings.TrimSpace(v); v != "" {
				f[attr] = append(f[attr], v)
			}
		}
	}
	return f, nil
}

// loadEngine reads the whole warehouse into a query engine.
func loadEngine(ctx context.Context) (*olap.Engine, error) {
	pool, err := db.Connect(ctx, cfg.Warehouse.Connection, cfg.Warehouse.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer pool.Close()

	ok, err := warehouse.Exists(ctx, pool)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("warehouse is empty; run 'pgedge-salesmart etl' first")
	}

	snap, err := warehouse.Read(ctx, pool)
	if err != nil {
		return nil, err
	}
	logging.Debug().Interface("rows", snap.Counts()).Msg("Warehouse loaded")
	return olap.New(snap), nil
}
