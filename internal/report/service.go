//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/pgEdge/pgedge-salesmart/internal/logging"
	"github.com/pgEdge/pgedge-salesmart/internal/olap"
)

// Service runs reports against an engine and caches rendered tables.
// Cached tables are shared between callers and must not be modified.
type Service struct {
	mu     sync.RWMutex
	engine *olap.Engine
	// generation is bumped by every Refresh. A table is cached only if
	// it was rendered from the current generation.
	generation uint64
	cache      *ttlcache.Cache[string, *Table]
}

// NewService creates a service over engine. A ttl of zero or less
// disables caching.
func NewService(engine *olap.Engine, ttl time.Duration) *Service {
	s := &Service{engine: engine}
	if ttl > 0 {
		s.cache = ttlcache.New(ttlcache.WithTTL[string, *Table](ttl))
		go s.cache.Start()
	}
	return s
}

// Engine returns the engine currently serving reports.
func (s *Service) Engine() *olap.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Run renders the named report. Parameters are validated before the cache
// is consulted.
func (s *Service) Run(name string, p Params) (*Table, error) {
	def, err := Get(name)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(p); err != nil {
		return nil, err
	}

	key := cacheKey(name, p)
	if s.cache != nil {
		if item := s.cache.Get(key); item != nil {
			logging.Debug().Str("query", name).Msg("Report served from cache")
			return item.Value(), nil
		}
	}

	s.mu.RLock()
	engine, generation := s.engine, s.generation
	s.mu.RUnlock()

	t, err := def.Execute(engine, p)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.mu.RLock()
		if s.generation == generation {
			s.cache.Set(key, t, ttlcache.DefaultTTL)
		}
		s.mu.RUnlock()
	}
	return t, nil
}

// Refresh replaces the engine and drops every cached table.
func (s *Service) Refresh(engine *olap.Engine) {
	s.mu.Lock()
	s.engine = engine
	s.generation++
	if s.cache != nil {
		s.cache.DeleteAll()
	}
	s.mu.Unlock()

	logging.Info().Msg("Report cache refreshed")
}

// Close stops the cache expiry loop.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Stop()
	}
}

// cacheKey builds a key that is equal for equivalent parameters: attribute
// names and values are folded and sorted.
func cacheKey(name string, p Params) string {
	attrs := make([]string, 0, len(p.Filter))
	for attr, values := range p.Filter {
		if len(values) == 0 {
			continue
		}
		folded := make([]string, len(values))
		for i, v := range values {
			folded[i] = strings.ToLower(strings.TrimSpace(v))
		}
		sort.Strings(folded)
		attrs = append(attrs, strings.ToLower(strings.TrimSpace(attr))+"="+strings.Join(folded, ","))
	}
	sort.Strings(attrs)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('?')
	b.WriteString(strings.Join(attrs, "&"))
	b.WriteString("#")
	b.WriteString(strconv.Itoa(p.Limit))
	return b.String()
}
