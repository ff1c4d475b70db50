// Package namedquery implements NamedQueryRegistry (C7): a keyed map of
// preconfigured queries with optional pinned columns/parameters, reloaded
// from config by digest comparison. Unlike DataSourceRegistry it has no
// pluggable types and no close semantics.
package namedquery

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/chtype"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/digest"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/queryparams"
)

func parseColumnType(name string) (chtype.DataType, error) {
	return chtype.Parse(name)
}

// Config is the on-disk shape of a single named query entry.
type Config struct {
	Query      string            `json:"query"`
	Columns    []json.RawMessage `json:"columns,omitempty"`
	Parameters map[string]any    `json:"parameters,omitempty"`
}

// Query is a resolved named query: an id, its digest, the query text, an
// optional column list, and its own default parameters.
type Query struct {
	ID         string
	Digest     uint64
	Text       string
	Columns    column.List
	HasColumns bool
	Parameters queryparams.Params
}

// IsDifferentFrom reports whether newDigest differs from the query's
// stored digest, mirroring ClickHouseNamedQuery.isDifferentFrom.
func (q Query) IsDifferentFrom(newDigest uint64) bool {
	return q.Digest != newDigest
}

func newQuery(id string, raw json.RawMessage) (Query, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Query{}, fmt.Errorf("namedquery: parsing %q: %w", id, err)
	}
	if cfg.Query == "" {
		return Query{}, fmt.Errorf("namedquery: %q missing required 'query' field", id)
	}

	d := digest.OfBytes(raw)

	q := Query{ID: id, Digest: d, Text: cfg.Query, Parameters: queryparams.Defaults()}

	if len(cfg.Columns) > 0 {
		cols := make([]column.Info, 0, len(cfg.Columns))
		for _, c := range cfg.Columns {
			var decl struct {
				Name      string `json:"name"`
				Type      string `json:"type"`
				Nullable  bool   `json:"nullable"`
				Precision int    `json:"precision"`
				Scale     int    `json:"scale"`
			}
			if err := json.Unmarshal(c, &decl); err != nil {
				return Query{}, fmt.Errorf("namedquery: %q: bad column decl: %w", id, err)
			}
			t, err := parseColumnType(decl.Type)
			if err != nil {
				return Query{}, fmt.Errorf("namedquery: %q: %w", id, err)
			}
			if decl.Precision > 0 || decl.Scale > 0 {
				cols = append(cols, column.NewWithPrecision(decl.Name, t, decl.Nullable, decl.Precision, decl.Scale))
			} else {
				cols = append(cols, column.New(decl.Name, t, decl.Nullable))
			}
		}
		q.Columns = column.List{Version: 1, Columns: cols}
		q.HasColumns = true
	}

	return q, nil
}

// Registry is a thread-safe id -> Query map with digest-based reload.
type Registry struct {
	mu      sync.RWMutex
	queries map[string]Query
	log     *logger.Logger
}

// New builds an empty Registry.
func New(log *logger.Logger) *Registry {
	return &Registry{queries: make(map[string]Query), log: log}
}

// Get returns the named query for id, or ok=false.
func (r *Registry) Get(id string) (Query, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queries[id]
	return q, ok
}

// Reload replaces the registry's contents from a fresh id->raw-config map:
// unchanged entries (equal digest) are left alone, changed or new entries
// are rebuilt, and entries no longer present are removed.
func (r *Registry) Reload(configs map[string]json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]Query, len(configs))
	for id, raw := range configs {
		newDigest := digest.OfBytes(raw)
		if existing, ok := r.queries[id]; ok && !existing.IsDifferentFrom(newDigest) {
			next[id] = existing
			continue
		}
		q, err := newQuery(id, raw)
		if err != nil {
			r.log.Warnf("namedquery: skipping %q: %v", id, err)
			continue
		}
		r.log.Infof("namedquery: loaded %q", id)
		next[id] = q
	}

	for id := range r.queries {
		if _, ok := configs[id]; !ok {
			r.log.Infof("namedquery: removing %q", id)
		}
	}

	r.queries = next
}
