//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/source"
	"github.com/pgEdge/pgedge-salesmart/internal/warehouse"
)

// DefaultWorkers is the pool size used when Options.Workers is not set.
const DefaultWorkers = 4

// Options configures a pipeline run.
type Options struct {
	Workers int
}

// TableReport summarizes one output table.
type TableReport struct {
	Table      string      `json:"table"`
	Input      int         `json:"input"`
	Output     int         `json:"output"`
	Rejections []Rejection `json:"rejections,omitempty"`
}

// Report summarizes a pipeline run.
type Report struct {
	Tables  []TableReport `json:"tables"`
	Elapsed time.Duration `json:"elapsed"`
}

// RejectedCount returns the number of rejected rows across all tables.
func (r *Report) RejectedCount() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Rejections)
	}
	return n
}

// Log writes the report through the global logger.
func (r *Report) Log() {
	for _, t := range r.Tables {
		logging.Info().
			Str("table", t.Table).
			Int("input", t.Input).
			Int("output", t.Output).
			Int("rejected", len(t.Rejections)).
			Msg("Transformed table")
		for _, rej := range t.Rejections {
			logging.Debug().
				Str("table", rej.Table).
				Int("row", rej.Row).
				Str("reason", rej.Reason).
				Msg("Rejected row")
		}
	}
	logging.Info().
		Int("rejected", r.RejectedCount()).
		Dur("elapsed", r.Elapsed).
		Msg("Transform complete")
}

// Run transforms a snapshot into a warehouse snapshot. The four dimension
// transforms run concurrently on a bounded pool; the fact transform runs
// once they have all finished. The first structural error stops the run.
func (t *Transformer) Run(ctx context.Context, snap *source.Snapshot, opts Options) (*warehouse.Snapshot, *Report, error) {
	start := time.Now()

	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	var (
		users    *Result[warehouse.DimUser]
		products *ProductResult
		riders   *Result[warehouse.DimRider]
		dates    *Result[warehouse.DimDate]
	)

	logging.Debug().Int("workers", workers).Msg("Transforming dimensions")

	group := pool.NewGroupContext(ctx)
	group.SubmitErr(
		func() (err error) {
			users, err = t.Users(snap.Users)
			return err
		},
		func() (err error) {
			products, err = t.Products(snap.Products)
			return err
		},
		func() (err error) {
			riders, err = t.Riders(snap.Riders)
			return err
		},
		func() (err error) {
			dates, err = t.Dates(snap.OrderLines)
			return err
		},
	)
	if err := group.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to transform dimensions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	logging.Debug().Int("lines", len(snap.OrderLines.Rows)).Msg("Transforming facts")

	facts, err := t.Facts(snap.OrderLines, Dimensions{
		Users:    users.Rows,
		Products: products,
		Riders:   riders.Rows,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to transform facts: %w", err)
	}

	out := &warehouse.Snapshot{
		Users:    users.Rows,
		Products: products.Rows,
		Riders:   riders.Rows,
		Dates:    dates.Rows,
		Sales:    facts.Rows,
	}

	report := &Report{
		Tables: []TableReport{
			{warehouse.TableUser, len(snap.Users.Rows), len(users.Rows), users.Rejected},
			{warehouse.TableProduct, len(snap.Products.Rows), len(products.Rows), products.Rejected},
			{warehouse.TableRider, len(snap.Riders.Rows), len(riders.Rows), riders.Rejected},
			{warehouse.TableDate, len(snap.OrderLines.Rows), len(dates.Rows), dates.Rejected},
			{warehouse.TableSales, len(snap.OrderLines.Rows), len(facts.Rows), facts.Rejected},
		},
		Elapsed: time.Since(start),
	}

	return out, report, nil
}
