package datasource

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/digest"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/queryparams"
)

// fakeDataSource is a minimal DataSource used to exercise the registry
// without a real backend.
type fakeDataSource struct {
	id     string
	digest uint64
	closed bool
}

func (f *fakeDataSource) ID() string                 { return f.id }
func (f *fakeDataSource) Type() string               { return "fake" }
func (f *fakeDataSource) QuoteIdentifier() string    { return "`" }
func (f *fakeDataSource) Digest() uint64             { return f.digest }
func (f *fakeDataSource) Timezone() *time.Location   { return time.UTC }
func (f *fakeDataSource) CustomColumns() column.List { return column.List{} }
func (f *fakeDataSource) GetColumns(_ context.Context, _, _ string) (column.List, error) {
	return column.List{}, nil
}
func (f *fakeDataSource) NewQueryParameters(rawQuery string) (queryparams.Params, error) {
	return queryparams.Defaults().MergeFromURI(rawQuery)
}
func (f *fakeDataSource) ExecuteQuery(_ context.Context, _ string, _ column.List, _ queryparams.Params, _ Writer) error {
	return nil
}
func (f *fakeDataSource) Close() error {
	f.closed = true
	return nil
}

func newFakeFactory(digestFor func(id string, raw []byte) uint64) Factory {
	return func(id string, resolver Resolver, rawConfig []byte) (DataSource, error) {
		return &fakeDataSource{id: id, digest: digestFor(id, rawConfig)}, nil
	}
}

func TestRegistryGetAutoCreate(t *testing.T) {
	r := New(nil, logger.New("test", "0"))
	r.RegisterFactory("fake", newFakeFactory(func(id string, raw []byte) uint64 { return 1 }))

	ds, release, err := r.Get("fake:host/db", true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer release()
	if ds.ID() != "host/db" {
		t.Errorf("got id %q want %q", ds.ID(), "host/db")
	}
}

func TestRegistryGetUnknownWithoutAutoCreate(t *testing.T) {
	r := New(nil, logger.New("test", "0"))
	if _, _, err := r.Get("nope", false); err == nil {
		t.Error("expected error for unknown source without autoCreate")
	}
}

func TestRegistryGetReusesEntry(t *testing.T) {
	r := New(nil, logger.New("test", "0"))
	calls := 0
	r.RegisterFactory("fake", func(id string, resolver Resolver, rawConfig []byte) (DataSource, error) {
		calls++
		return &fakeDataSource{id: id}, nil
	})

	_, release1, err := r.Get("fake:same", true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	_, release2, err := r.Get("fake:same", true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1 (second Get should reuse the entry)", calls)
	}
	release1()
	release2()
}

func TestRegistryDeferredCloseUntilReleased(t *testing.T) {
	r := New(nil, logger.New("test", "0"))
	var built *fakeDataSource
	r.RegisterFactory("fake", func(id string, resolver Resolver, rawConfig []byte) (DataSource, error) {
		built = &fakeDataSource{id: id, digest: 1}
		return built, nil
	})

	configs := map[string]json.RawMessage{"src": json.RawMessage(`{"type":"fake"}`)}
	r.Reload(configs)

	_, release, err := r.Get("src", false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Removing the entry from config while a reference is held must not
	// close it immediately.
	r.Reload(map[string]json.RawMessage{})
	if built.closed {
		t.Fatal("source closed while a reference was still held")
	}

	release()
	if !built.closed {
		t.Error("source was not closed after its last reference was released")
	}
}

func TestRegistryReloadSkipsUnchangedDigest(t *testing.T) {
	r := New(nil, logger.New("test", "0"))
	builds := 0
	r.RegisterFactory("fake", func(id string, resolver Resolver, rawConfig []byte) (DataSource, error) {
		builds++
		// Like Base, report the digest of the raw config the source was built from.
		return &fakeDataSource{id: id, digest: digest.OfBytes(rawConfig)}, nil
	})

	raw := json.RawMessage(`{"type":"fake","jdbcUrl":"x"}`)
	configs := map[string]json.RawMessage{"src": raw}

	r.Reload(configs)
	r.Reload(configs)

	if builds != 1 {
		t.Errorf("factory rebuilt %d times for an unchanged config, want 1", builds)
	}
}

func TestRegistryReloadRebuildsOnChangedDigest(t *testing.T) {
	r := New(nil, logger.New("test", "0"))
	builds := 0
	r.RegisterFactory("fake", func(id string, resolver Resolver, rawConfig []byte) (DataSource, error) {
		builds++
		return &fakeDataSource{id: id}, nil
	})

	r.Reload(map[string]json.RawMessage{"src": json.RawMessage(`{"type":"fake","jdbcUrl":"a"}`)})
	r.Reload(map[string]json.RawMessage{"src": json.RawMessage(`{"type":"fake","jdbcUrl":"b"}`)})

	if builds != 2 {
		t.Errorf("factory rebuilt %d times across a changed config, want 2", builds)
	}
}

func TestRegistryReloadDoesNotRetireAdhocSources(t *testing.T) {
	r := New(nil, logger.New("test", "0"))
	var adhoc *fakeDataSource
	r.RegisterFactory("fake", func(id string, resolver Resolver, rawConfig []byte) (DataSource, error) {
		adhoc = &fakeDataSource{id: id}
		return adhoc, nil
	})

	_, release, err := r.Get("fake:conn", true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	release()

	// An empty Reload must never retire an ad-hoc source: it was never
	// part of any config in the first place.
	r.Reload(map[string]json.RawMessage{})
	if adhoc.closed {
		t.Error("ad-hoc source was closed by an unrelated config reload")
	}
}

func TestRegistryGetPrefersConfiguredHostOverAutoCreate(t *testing.T) {
	r := New(nil, logger.New("test", "0"))
	calls := 0
	r.RegisterFactory("jdbc", func(id string, resolver Resolver, rawConfig []byte) (DataSource, error) {
		calls++
		return &fakeDataSource{id: id}, nil
	})

	r.Reload(map[string]json.RawMessage{
		"myhost": json.RawMessage(`{"type":"jdbc","jdbcUrl":"x"}`),
	})

	ds, release, err := r.Get("jdbc:postgresql://myhost:5432/db", true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer release()
	if ds.ID() != "myhost" {
		t.Errorf("got id %q, want the host-keyed configured source %q", ds.ID(), "myhost")
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1 (only the Reload build, no auto-create)", calls)
	}
}

func TestExtractHost(t *testing.T) {
	cases := []struct {
		rest string
		want string
	}{
		{"postgresql://myhost:5432/db", "myhost"},
		{"host/db", ""},
		{"myid", ""},
	}
	for _, c := range cases {
		if got := extractHost(c.rest); got != c.want {
			t.Errorf("extractHost(%q) = %q, want %q", c.rest, got, c.want)
		}
	}
}

func TestPeelTypePrefix(t *testing.T) {
	cases := []struct {
		uri      string
		wantType string
		wantRest string
	}{
		{"jdbc:postgresql://host/db", "jdbc", "postgresql://host/db"},
		{"myid", "", "myid"},
		{"host:5432/db", "", "host:5432/db"},
	}
	for _, c := range cases {
		gotType, gotRest := peelTypePrefix(c.uri)
		if gotType != c.wantType || gotRest != c.wantRest {
			t.Errorf("peelTypePrefix(%q) = (%q, %q), want (%q, %q)", c.uri, gotType, gotRest, c.wantType, c.wantRest)
		}
	}
}

func TestStripQueryParams(t *testing.T) {
	bare, q := stripQueryParams("fake:conn?debug=true")
	if bare != "fake:conn" || q != "debug=true" {
		t.Errorf("got (%q, %q)", bare, q)
	}
}

type fakeRegistryResolver map[string]string

func (r fakeRegistryResolver) Resolve(placeholder string) string { return r[placeholder] }

// resolveTemplate must trim whitespace around a {{...}} placeholder name
// before looking it up, so a template like "{{ sip.example }}" resolves
// against a resolver keyed on "sip.example" rather than " sip.example ".
func TestResolveTemplateTrimsPlaceholderWhitespace(t *testing.T) {
	r := New(fakeRegistryResolver{"sip.example": "10.0.0.9"}, logger.New("test", "0"))
	got := r.resolveTemplate("jdbc://{{ sip.example }}/db")
	want := "jdbc://10.0.0.9/db"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestResolveTemplateLeavesUnresolvedPlaceholderVerbatim(t *testing.T) {
	r := New(fakeRegistryResolver{}, logger.New("test", "0"))
	got := r.resolveTemplate("jdbc://{{ unknown.name }}/db")
	want := "jdbc://{{ unknown.name }}/db"
	if got != want {
		t.Errorf("got %q want %q (untouched, whitespace preserved)", got, want)
	}
}
