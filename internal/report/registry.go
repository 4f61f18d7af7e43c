//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report exposes the OLAP queries as a catalog of named reports
// rendered to tables, with a result cache in front of them.
package report

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pgEdge/pgedge-salesmart/internal/olap"
)

// ErrUnknownQuery is returned for a query name that is not registered.
var ErrUnknownQuery = errors.New("unknown query")

// Params are the caller-supplied arguments of a report.
type Params struct {
	// Filter restricts the rows a report aggregates.
	Filter olap.Filter

	// Limit caps the number of rows returned. Zero means no limit.
	Limit int
}

// Table is a rendered report.
type Table struct {
	Query   string   `json:"query"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Definition describes a named report.
type Definition struct {
	// Name is the report identifier.
	Name string

	// Description describes what the report shows.
	Description string

	// Filters lists the filter attributes the report accepts.
	Filters []string

	// Run renders the report.
	Run func(e *olap.Engine, p Params) (*Table, error)
}

var (
	registry = make(map[string]Definition)
	mu       sync.RWMutex
)

// Register adds a report to the registry.
func Register(def Definition) {
	mu.Lock()
	defer mu.Unlock()
	registry[def.Name] = def
}

// Get retrieves a report by name.
func Get(name string) (Definition, error) {
	mu.RLock()
	defer mu.RUnlock()

	def, ok := registry[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownQuery, name)
	}
	return def, nil
}

// List returns all registered report names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered reports sorted by name.
func All() []Definition {
	mu.RLock()
	defer mu.RUnlock()

	defs := make([]Definition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Validate checks p against the filters and limit def accepts.
func (def Definition) Validate(p Params) error {
	if err := p.Filter.Validate(def.Filters...); err != nil {
		return err
	}
	if p.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", olap.ErrInvalidFilter)
	}
	return nil
}

// Execute validates p against def and renders the report, applying the
// row limit.
func (def Definition) Execute(e *olap.Engine, p Params) (*Table, error) {
	if err := def.Validate(p); err != nil {
		return nil, err
	}

	t, err := def.Run(e, p)
	if err != nil {
		return nil, err
	}
	t.Query = def.Name
	if t.Rows == nil {
		t.Rows = [][]any{}
	}
	if p.Limit > 0 && len(t.Rows) > p.Limit {
		t.Rows = t.Rows[:p.Limit]
	}
	return t, nil
}
