package namedquery

import (
	"encoding/json"
	"testing"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
)

func newTestRegistry() *Registry {
	return New(logger.New("test", "0"))
}

func TestReloadAddsAndRetrievesQuery(t *testing.T) {
	r := newTestRegistry()
	r.Reload(map[string]json.RawMessage{
		"top10": json.RawMessage(`{"query": "SELECT * FROM t LIMIT 10"}`),
	})

	q, ok := r.Get("top10")
	if !ok {
		t.Fatal("expected top10 to be present")
	}
	if q.Text != "SELECT * FROM t LIMIT 10" {
		t.Errorf("got text %q", q.Text)
	}
	if q.HasColumns {
		t.Error("expected no pinned columns for a query with no columns declared")
	}
}

func TestReloadParsesPinnedColumns(t *testing.T) {
	r := newTestRegistry()
	r.Reload(map[string]json.RawMessage{
		"typed": json.RawMessage(`{
			"query": "SELECT id, name FROM t",
			"columns": [
				{"name": "id", "type": "Int32"},
				{"name": "name", "type": "String", "nullable": true}
			]
		}`),
	})

	q, ok := r.Get("typed")
	if !ok {
		t.Fatal("expected typed to be present")
	}
	if !q.HasColumns || q.Columns.Size() != 2 {
		t.Fatalf("got columns %+v", q.Columns)
	}
	if q.Columns.Columns[1].Name != "name" || !q.Columns.Columns[1].Nullable {
		t.Errorf("got second column %+v", q.Columns.Columns[1])
	}
}

func TestReloadSkipsMissingQueryField(t *testing.T) {
	r := newTestRegistry()
	r.Reload(map[string]json.RawMessage{
		"bad": json.RawMessage(`{"columns": []}`),
	})

	if _, ok := r.Get("bad"); ok {
		t.Error("expected an entry with no 'query' field to be skipped")
	}
}

func TestReloadRemovesEntriesNoLongerPresent(t *testing.T) {
	r := newTestRegistry()
	r.Reload(map[string]json.RawMessage{"a": json.RawMessage(`{"query": "SELECT 1"}`)})
	if _, ok := r.Get("a"); !ok {
		t.Fatal("setup: expected a to be present")
	}

	r.Reload(map[string]json.RawMessage{})
	if _, ok := r.Get("a"); ok {
		t.Error("expected a to be removed once absent from a later reload")
	}
}

func TestReloadKeepsUnchangedEntryInstance(t *testing.T) {
	r := newTestRegistry()
	raw := json.RawMessage(`{"query": "SELECT 1"}`)
	r.Reload(map[string]json.RawMessage{"a": raw})
	first, _ := r.Get("a")

	r.Reload(map[string]json.RawMessage{"a": raw})
	second, _ := r.Get("a")

	if first.Digest != second.Digest {
		t.Error("digest should be stable across a reload with unchanged raw config")
	}
}
