// Package config loads the bridge's on-disk configuration layout
// (server.json plus hot-reloadable datasources/*.json and queries/*.json
// directories) and watches the reloadable directories for changes.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Server holds the process-wide server tuning knobs loaded from
// config/server.json.
type Server struct {
	ServerPort       int   `json:"serverPort"`
	RequestTimeoutMs int   `json:"requestTimeout"`
	QueryTimeoutMs   int   `json:"queryTimeout"`
	ConfigScanPeriod int   `json:"configScanPeriod"`
	WorkerPoolSize   int   `json:"workerPoolSize"`
	Datasources      []any `json:"datasources,omitempty"`
}

// DefaultServer returns the documented defaults: port 9019, request
// timeout 5000ms, query timeout max(requestTimeout, 120000ms), scan period
// 5000ms, worker pool size 10.
func DefaultServer() Server {
	return Server{
		ServerPort:       9019,
		RequestTimeoutMs: 5000,
		QueryTimeoutMs:   120000,
		ConfigScanPeriod: 5000,
		WorkerPoolSize:   10,
	}
}

// LoadServer reads config/server.json under home, falling back to defaults
// for any field the file doesn't override, and for a missing file entirely.
func LoadServer(home string) (Server, error) {
	s := DefaultServer()
	path := filepath.Join(home, "config", "server.json")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, err
	}
	if s.QueryTimeoutMs < s.RequestTimeoutMs {
		s.QueryTimeoutMs = s.RequestTimeoutMs
	}
	return s, nil
}

func (s Server) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

func (s Server) QueryTimeout() time.Duration {
	return time.Duration(s.QueryTimeoutMs) * time.Millisecond
}

func (s Server) ScanPeriod() time.Duration {
	return time.Duration(s.ConfigScanPeriod) * time.Millisecond
}

// Store is a thread-safe holder for a raw JSON directory's merged entries,
// keyed by entry id, mirroring pkg/config.Config's guarded-map shape from
// the teacher but specialized to raw JSON payloads instead of strings.
type Store struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]json.RawMessage)}
}

// Snapshot returns a copy of the current entry set.
func (s *Store) Snapshot() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Replace atomically swaps the entry set.
func (s *Store) Replace(entries map[string]json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// LoadDirectory reads every *.json file in dir and merges their top-level
// objects into a single id->raw-config map, matching the on-disk layout
// where each file is itself a map of {id: config}.
func LoadDirectory(dir string) (map[string]json.RawMessage, error) {
	merged := make(map[string]json.RawMessage)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return merged, nil
		}
		return nil, err
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var fileMap map[string]json.RawMessage
		if err := json.Unmarshal(b, &fileMap); err != nil {
			continue
		}
		for id, raw := range fileMap {
			merged[id] = raw
		}
	}

	return merged, nil
}
