//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package api serves the report catalog over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/olap"
	"github.com/pgEdge/pgedge-salesmart/internal/report"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end of a report service.
type Server struct {
	svc    *report.Service
	router *mux.Router
}

// QueryInfo describes one catalog entry.
type QueryInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Filters     []string `json:"filters"`
}

// FilterCatalog lists the values each filterable attribute can take.
type FilterCatalog struct {
	User olap.UserAttributeValues `json:"user"`
	Dice olap.FilterValues        `json:"dice"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewServer creates a server over svc.
func NewServer(svc *report.Service) *Server {
	s := &Server{svc: svc, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(instrument)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/queries", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/api/queries/{name}", s.handleQuery).Methods(http.MethodGet)
	s.router.HandleFunc("/api/filters", s.handleFilters).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log := logging.Component("api")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", addr).Msg("API server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info().Msg("Shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	defs := report.All()
	out := make([]QueryInfo, 0, len(defs))
	for _, def := range defs {
		filters := def.Filters
		if filters == nil {
			filters = []string{}
		}
		out = append(out, QueryInfo{Name: def.Name, Description: def.Description, Filters: filters})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFilters(w http.ResponseWriter, _ *http.Request) {
	e := s.svc.Engine()
	writeJSON(w, http.StatusOK, FilterCatalog{
		User: e.DistinctUserAttributes(),
		Dice: e.FilterOptions(),
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := mux.Vars(r)["name"]

	params, err := parseParams(r)
	if err != nil {
		observeQuery(name, http.StatusBadRequest, start)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	table, err := s.svc.Run(name, params)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			name = "unknown"
		}
		observeQuery(name, status, start)
		logging.Debug().Err(err).Str("query", name).Int("status", status).Msg("Query failed")
		writeError(w, status, err)
		return
	}

	observeQuery(name, http.StatusOK, start)
	writeJSON(w, http.StatusOK, table)
}

// parseParams reads limit and every other query parameter as a filter
// attribute whose values are comma separated.
func parseParams(r *http.Request) (report.Params, error) {
	var p report.Params
	for key, raw := range r.URL.Query() {
		if key == "limit" {
			n, err := strconv.Atoi(raw[len(raw)-1])
			if err != nil || n < 0 {
				return p, fmt.Errorf("%w: limit must be a non-negative integer", olap.ErrInvalidFilter)
			}
			p.Limit = n
			continue
		}
		var values []string
		for _, v := range raw {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					values = append(values, part)
				}
			}
		}
		if p.Filter == nil {
			p.Filter = make(olap.Filter)
		}
		p.Filter[key] = append(p.Filter[key], values...)
	}
	return p, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrUnknownQuery):
		return http.StatusNotFound
	case errors.Is(err, olap.ErrInvalidFilter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
