package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riverstonedata/ch-jdbc-bridge/internal/datasource"
	"github.com/riverstonedata/ch-jdbc-bridge/internal/namedquery"
	"github.com/riverstonedata/ch-jdbc-bridge/internal/request"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/config"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := logger.New("test", "0")
	sources := datasource.New(nil, log)
	queries := namedquery.New(log)
	return New(config.DefaultServer(), sources, queries, log)
}

func TestResolveQueryNamedQueryTakesPrecedence(t *testing.T) {
	s := newTestServer(t)
	s.queries.Reload(map[string]json.RawMessage{
		"top_customers": json.RawMessage(`{"query": "SELECT * FROM customers ORDER BY spend DESC LIMIT 10", "columns": [{"name":"id","type":"Int32"}]}`),
	})

	text, pinned, hasPinned, err := s.resolveQuery(request.Fields{Table: "top_customers"})
	if err != nil {
		t.Fatalf("resolveQuery: %v", err)
	}
	if !hasPinned {
		t.Fatal("expected pinned columns from the named query")
	}
	if text != "SELECT * FROM customers ORDER BY spend DESC LIMIT 10" {
		t.Errorf("got query text %q", text)
	}
	if pinned.Size() != 1 || pinned.Columns[0].Name != "id" {
		t.Errorf("got pinned columns %+v", pinned.Columns)
	}
}

func TestResolveQueryFallsBackToNormalizeQuery(t *testing.T) {
	s := newTestServer(t)
	_, _, hasPinned, err := s.resolveQuery(request.Fields{Table: "unknown_query_id", Query: "SELECT * FROM `mytable`"})
	if err != nil {
		t.Fatalf("resolveQuery: %v", err)
	}
	if hasPinned {
		t.Fatal("did not expect pinned columns for an unregistered table id")
	}
	text, _, _, err := s.resolveQuery(request.Fields{Query: "SELECT * FROM `mytable`"})
	if err != nil {
		t.Fatalf("resolveQuery: %v", err)
	}
	if text != "mytable" {
		t.Errorf("got %q, want NormalizeQuery's extracted table name", text)
	}
}

func TestResolveQueryPrefersQueryOverTableWhenNoNamedMatch(t *testing.T) {
	s := newTestServer(t)
	text, _, hasPinned, err := s.resolveQuery(request.Fields{Table: "not_a_named_query", Query: "SELECT 1"})
	if err != nil {
		t.Fatalf("resolveQuery: %v", err)
	}
	if hasPinned {
		t.Fatal("unexpected pinned columns")
	}
	if text != "SELECT 1" {
		t.Errorf("got %q, want the raw query to win once the table lookup misses", text)
	}
}

func TestResolveQueryRequestedColumnsSubsetAndReorder(t *testing.T) {
	s := newTestServer(t)
	s.queries.Reload(map[string]json.RawMessage{
		"wide": json.RawMessage(`{
			"query": "SELECT id, name, spend FROM customers",
			"columns": [
				{"name": "id", "type": "Int32"},
				{"name": "name", "type": "String"},
				{"name": "spend", "type": "Decimal32"}
			]
		}`),
	})

	requestedHeader := "columns format version: 1\n2 columns:\n`spend` Decimal32(2)\n`id` Int32\n"
	_, cols, hasPinned, err := s.resolveQuery(request.Fields{Table: "wide", Columns: requestedHeader})
	if err != nil {
		t.Fatalf("resolveQuery: %v", err)
	}
	if !hasPinned {
		t.Fatal("expected pinned columns")
	}
	if cols.Size() != 2 {
		t.Fatalf("got %d columns, want the 2 the request asked for", cols.Size())
	}

	spend, id := cols.Columns[0], cols.Columns[1]
	if spend.Name != "spend" || id.Name != "id" {
		t.Fatalf("got column order %+v, want [spend, id] as requested", cols.Columns)
	}
	if !spend.IsIndexed() || spend.Index() != 2 {
		t.Errorf("spend resolved to index %d, want 2 (its position in the named query's declaration)", spend.Index())
	}
	if !id.IsIndexed() || id.Index() != 0 {
		t.Errorf("id resolved to index %d, want 0", id.Index())
	}
}

func TestResolveQueryRequestedColumnUnknownNameStaysUnindexed(t *testing.T) {
	s := newTestServer(t)
	s.queries.Reload(map[string]json.RawMessage{
		"wide": json.RawMessage(`{
			"query": "SELECT id, name FROM customers",
			"columns": [{"name": "id", "type": "Int32"}, {"name": "name", "type": "String"}]
		}`),
	})

	requestedHeader := "columns format version: 1\n1 columns:\n`unknown` String\n"
	_, cols, _, err := s.resolveQuery(request.Fields{Table: "wide", Columns: requestedHeader})
	if err != nil {
		t.Fatalf("resolveQuery: %v", err)
	}
	if cols.Columns[0].IsIndexed() {
		t.Error("a requested column with no match in the named query should stay unindexed")
	}
}

func TestParseFieldsReadsRawBodyWhenNoFormQuery(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("query=SELECT 1"))

	fields, err := s.parseFields(req)
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if fields.Query != "SELECT 1" {
		t.Errorf("got query %q, want the query= prefix stripped from the raw body", fields.Query)
	}
}

func TestParseFieldsPrefersFormQuery(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/?query=SELECT+2", nil)

	fields, err := s.parseFields(req)
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if fields.Query != "SELECT 2" {
		t.Errorf("got query %q", fields.Query)
	}
}

func TestHandlePing(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handlePing(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("got status %d", rec.Code)
	}
	if rec.Body.String() != pingBody {
		t.Errorf("got body %q", rec.Body.String())
	}
}

func TestHandleWriteAcknowledgesAndDrainsBody(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/write", strings.NewReader("some payload"))

	s.handleWrite(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("got status %d", rec.Code)
	}
	if rec.Body.String() != pingBody {
		t.Errorf("got body %q", rec.Body.String())
	}
}

func TestHandleColumnsInfoUnknownSourceReturns500(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/columns_info?connection_string=nope&query=SELECT+1", nil)

	s.handleColumnsInfo(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500 for an unresolvable data source", rec.Code)
	}
}

func TestAcquireTokenTracksInFlight(t *testing.T) {
	s := newTestServer(t)
	if s.InFlight() != 0 {
		t.Fatalf("got InFlight %d, want 0 before any acquire", s.InFlight())
	}
	release := s.acquireToken()
	if s.InFlight() != 1 {
		t.Errorf("got InFlight %d, want 1 while a token is held", s.InFlight())
	}
	release()
	if s.InFlight() != 0 {
		t.Errorf("got InFlight %d, want 0 after release", s.InFlight())
	}
}
