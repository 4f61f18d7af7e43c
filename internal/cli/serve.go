package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesmart/internal/api"
	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/report"
)

var (
	serveListen   string
	serveCacheTTL time.Duration
	serveReload   time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query catalog over HTTP",
	Long: `Load the warehouse and serve every named query as JSON, together with
the available filter values, a health check and Prometheus metrics.

Send SIGHUP to reload the warehouse, or set --reload to reload it
periodically.

Example:
  pgedge-salesmart serve --warehouse "postgres://..." --listen :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (default: :8080)")
	serveCmd.Flags().DurationVar(&serveCacheTTL, "cache-ttl", 0,
		"how long rendered results are cached (default: 5m)")
	serveCmd.Flags().DurationVar(&serveReload, "reload", 0,
		"reload the warehouse at this interval (0 = only on SIGHUP)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListen != "" {
		cfg.Serve.Listen = serveListen
	}
	if cmd.Flags().Changed("cache-ttl") {
		cfg.Serve.CacheTTL = serveCacheTTL
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := loadEngine(ctx)
	if err != nil {
		return err
	}
	svc := report.NewService(engine, cfg.Serve.CacheTTL)
	defer svc.Close()

	go reloadLoop(ctx, svc, serveReload)

	return api.NewServer(svc).Serve(ctx, cfg.Serve.Listen)
}

// reloadLoop refreshes svc from the warehouse on SIGHUP and, when every is
// positive, on a timer. A failed reload keeps the current data.
func reloadLoop(ctx context.Context, svc *report.Service, every time.Duration) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	var tick <-chan time.Time
	if every > 0 {
		t := time.NewTicker(every)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logging.Info().Msg("Reloading warehouse")
		case <-tick:
		}

		engine, err := loadEngine(ctx)
		if err != nil {
			logging.Error().Err(err).Msg("Failed to reload warehouse")
			continue
		}
		svc.Refresh(engine)
	}
}
