package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/chtype"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/queryparams"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/wire"
)

func TestNewBaseDigestChangesWithConfig(t *testing.T) {
	b1, _, err := NewBase("src", "fake", nil, []byte(`{"type":"fake","jdbcUrl":"a"}`))
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	b2, _, err := NewBase("src", "fake", nil, []byte(`{"type":"fake","jdbcUrl":"b"}`))
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	if b1.Digest() == b2.Digest() {
		t.Error("digests of two different raw configs should differ")
	}
}

func TestNewBaseParsesCustomColumnsAndDefaults(t *testing.T) {
	raw := []byte(`{
		"type": "fake",
		"customColumns": [{"name": "tenant", "type": "String", "value": "acme"}],
		"defaults": {"Int32": 7}
	}`)
	b, _, err := NewBase("src", "fake", nil, raw)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	cc := b.CustomColumns()
	if cc.Size() != 1 || cc.Columns[0].Name != "tenant" {
		t.Fatalf("got custom columns %+v", cc)
	}
	if got := b.defaults.get(chtype.Int32); got != 7 {
		t.Errorf("Int32 default = %v, want 7 (overridden)", got)
	}
	if got := b.defaults.get(chtype.Int64); got != int64(0) {
		t.Errorf("Int64 default = %v, want unmodified 0", got)
	}
}

func TestNewQueryParametersMergesOwnThenURI(t *testing.T) {
	raw := []byte(`{"type":"fake","parameters":{"max_rows":50}}`)
	b, _, err := NewBase("src", "fake", nil, raw)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}

	params, err := b.NewQueryParameters("")
	if err != nil {
		t.Fatalf("NewQueryParameters: %v", err)
	}
	if params.MaxRows != 50 {
		t.Errorf("MaxRows = %d, want the source's own configured 50", params.MaxRows)
	}
	if params.FetchSize != 1000 {
		t.Errorf("FetchSize = %d, want the framework default 1000 preserved", params.FetchSize)
	}

	params, err = b.NewQueryParameters("max_rows=5")
	if err != nil {
		t.Fatalf("NewQueryParameters: %v", err)
	}
	if params.MaxRows != 5 {
		t.Errorf("MaxRows = %d, want the request override 5 to win", params.MaxRows)
	}
}

func TestLoadSavedQueryAsNeeded(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "top10.query"), []byte("SELECT * FROM t LIMIT 10"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := LoadSavedQueryAsNeeded("top10.query", dir)
	if got != "SELECT * FROM t LIMIT 10" {
		t.Errorf("got %q", got)
	}
}

func TestLoadSavedQueryAsNeededPassesThroughInlineQuery(t *testing.T) {
	q := "SELECT 1\nFROM t"
	if got := LoadSavedQueryAsNeeded(q, "/some/dir"); got != q {
		t.Errorf("got %q want unchanged", got)
	}
}

func TestLoadSavedQueryAsNeededMissingFilePassesThrough(t *testing.T) {
	q := "missing.sql"
	if got := LoadSavedQueryAsNeeded(q, t.TempDir()); got != q {
		t.Errorf("got %q want unchanged fallback", got)
	}
}

func TestBuildResponseColumnsPrependsDatasourceAndCustom(t *testing.T) {
	base := column.List{Columns: []column.Info{column.New("id", chtype.Int32, false)}}

	cc := column.List{Columns: []column.Info{column.New("tenant", chtype.String, false)}}
	fake := fakeCustomColumnsDS{cc: cc}

	out := BuildResponseColumns(fake, base, queryparams.Params{ShowDatasourceColumn: true, ShowCustomColumns: true})
	if out.Size() != 3 {
		t.Fatalf("got %d columns, want 3", out.Size())
	}
	if out.Columns[0].Name != "__datasource" || out.Columns[1].Name != "tenant" || out.Columns[2].Name != "id" {
		t.Errorf("unexpected column order: %+v", out.Columns)
	}
}

func TestBuildResponseColumnsNoOpWhenFlagsUnset(t *testing.T) {
	base := column.List{Columns: []column.Info{column.New("id", chtype.Int32, false)}}
	fake := fakeCustomColumnsDS{}
	out := BuildResponseColumns(fake, base, queryparams.Params{})
	if out.Size() != 1 {
		t.Errorf("got %d columns, want passthrough of 1", out.Size())
	}
}

// fakeCustomColumnsDS implements just enough of DataSource for
// BuildResponseColumns, which only calls CustomColumns().
type fakeCustomColumnsDS struct {
	DataSource
	cc column.List
}

func (f fakeCustomColumnsDS) CustomColumns() column.List { return f.cc }

func TestWriteDebugInfoWritesFiveFields(t *testing.T) {
	enc := wire.New(nil, 256)
	cols := column.List{Columns: []column.Info{column.New("id", chtype.Int32, false)}}
	err := WriteDebugInfo("src", "fake", cols, "SELECT 1", queryparams.Defaults(), enc)
	if err != nil {
		t.Fatalf("WriteDebugInfo: %v", err)
	}
	if len(enc.Bytes()) == 0 {
		t.Error("expected encoder to have buffered bytes")
	}
}
