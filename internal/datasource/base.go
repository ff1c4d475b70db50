package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/riverstonedata/ch-jdbc-bridge/internal/bridgeerr"
	"github.com/riverstonedata/ch-jdbc-bridge/internal/cache"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/chtype"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/digest"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/queryparams"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/wire"
)

// Config is the on-disk shape of a datasource entry (§3, DataSourceConfig).
type Config struct {
	Type             string            `json:"type,omitempty"`
	JDBCUrl          string            `json:"jdbcUrl,omitempty"`
	DriverProperties map[string]string `json:"driverProperties,omitempty"`
	CustomColumns    []json.RawMessage `json:"customColumns,omitempty"`
	Defaults         map[string]any    `json:"defaults,omitempty"`
	Parameters       map[string]any    `json:"parameters,omitempty"`
	CacheSize        int               `json:"cacheSize,omitempty"`
	CacheTTLSeconds  int               `json:"cacheTtlSeconds,omitempty"`
	Timezone         string            `json:"timezone,omitempty"`
}

// defaultValues holds the per-type default literals, matching the original
// DefaultValues table exactly (see SPEC_FULL supplemented feature 3), with
// the datasource's "defaults" overrides merged in. The write path does not
// read this table: wire.Encoder.WriteDefaultValue uses the column's own
// DefaultValue or its built-in literals.
type defaultValues struct {
	values map[chtype.DataType]any
}

func newDefaultValues() *defaultValues {
	dv := &defaultValues{values: map[chtype.DataType]any{
		chtype.Int8: 0, chtype.Int16: 0, chtype.Int32: 0, chtype.Int64: int64(0),
		chtype.UInt8: 0, chtype.UInt16: 0, chtype.UInt32: int64(0), chtype.UInt64: int64(0),
		chtype.Float32: float32(0), chtype.Float64: float64(0),
		chtype.Date: 1, chtype.DateTime: int64(1), chtype.DateTime64: int64(1000),
		chtype.Decimal: "0", chtype.Decimal32: "0", chtype.Decimal64: "0", chtype.Decimal128: "0",
		chtype.String: "",
	}}
	return dv
}

func (dv *defaultValues) merge(overrides map[string]any) {
	for name, v := range overrides {
		t, err := chtype.Parse(name)
		if err != nil {
			continue
		}
		// JSON numbers decode as float64; keep the Go type of the built-in
		// literal being replaced.
		if f, ok := v.(float64); ok {
			switch dv.values[t].(type) {
			case int:
				v = int(f)
			case int64:
				v = int64(f)
			case float32:
				v = float32(f)
			}
		}
		dv.values[t] = v
	}
}

func (dv *defaultValues) get(t chtype.DataType) any {
	return dv.values[t]
}

// Base implements the shared, backend-agnostic parts of the DataSource
// contract: id/type/digest bookkeeping, custom columns, configurable
// defaults, the columns cache, and named-query column remapping +
// saved-query-file loading. Concrete backends (e.g. SQL) embed Base and
// supply InferColumns/StreamQuery.
type Base struct {
	id            string
	typeName      string
	digest        uint64
	resolver      Resolver
	quote         string
	timezone      *time.Location
	customColumns column.List
	defaults      *defaultValues
	parameters    queryparams.Params
	columnsCache  *cache.Cache
	queriesDir    string

	// Backend hooks, set by the embedding implementation.
	InferColumnsFunc func(ctx context.Context, schema, query string) (column.List, error)
	StreamFunc       func(ctx context.Context, query string, columns column.List, params queryparams.Params, w Writer) error
}

// NewBase parses a raw Config and builds the shared plumbing. rawConfig
// may be nil for an adhoc source (id itself is the connection string).
func NewBase(id, typeName string, resolver Resolver, rawConfig []byte) (*Base, Config, error) {
	var cfg Config
	var d uint64
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, cfg, bridgeerr.NewConfigError(id, err)
		}
		d = digest.OfBytes(rawConfig)
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		}
	}

	dv := newDefaultValues()
	dv.merge(cfg.Defaults)

	params := queryparams.Defaults()
	if cfg.Parameters != nil {
		params = mergeParamsFromMap(params, cfg.Parameters)
	}

	var customCols []column.Info
	for _, raw := range cfg.CustomColumns {
		var decl struct {
			Name     string `json:"name"`
			Type     string `json:"type"`
			Nullable bool   `json:"nullable"`
			Value    any    `json:"value"`
		}
		if err := json.Unmarshal(raw, &decl); err != nil {
			continue
		}
		t, err := chtype.Parse(decl.Type)
		if err != nil {
			continue
		}
		col := column.New(decl.Name, t, decl.Nullable)
		col.DefaultValue = decl.Value
		customCols = append(customCols, col)
	}

	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 100
	}
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	b := &Base{
		id:            id,
		typeName:      typeName,
		digest:        d,
		resolver:      resolver,
		quote:         DefaultQuoteIdentifier,
		timezone:      loc,
		customColumns: column.List{Version: 1, Columns: customCols},
		defaults:      dv,
		parameters:    params,
		columnsCache:  cache.New(cacheSize, cacheTTL),
	}
	return b, cfg, nil
}

func mergeParamsFromMap(base queryparams.Params, m map[string]any) queryparams.Params {
	out := base
	if v, ok := m["fetch_size"].(float64); ok {
		out.FetchSize = int(v)
	}
	if v, ok := m["max_rows"].(float64); ok {
		out.MaxRows = int(v)
	}
	if v, ok := m["offset"].(float64); ok {
		out.Offset = int(v)
	}
	if v, ok := m["position"].(float64); ok {
		out.Position = int(v)
	}
	if v, ok := m["null_as_default"].(bool); ok {
		out.NullAsDefault = v
	}
	if v, ok := m["debug"].(bool); ok {
		out.Debug = v
	}
	return out
}

func (b *Base) ID() string                 { return b.id }
func (b *Base) Type() string               { return b.typeName }
func (b *Base) QuoteIdentifier() string    { return b.quote }
func (b *Base) Digest() uint64             { return b.digest }
func (b *Base) Timezone() *time.Location   { return b.timezone }
func (b *Base) CustomColumns() column.List { return b.customColumns }

// SetQuoteIdentifier overrides the default backtick quote, used by SQL
// backends that report their own via driver metadata.
func (b *Base) SetQuoteIdentifier(q string) {
	if q != "" {
		b.quote = q
	}
}

// SetQueriesDir configures the directory saved `.query`/`.sql` files are
// resolved against, per LoadSavedQueryAsNeeded.
func (b *Base) SetQueriesDir(dir string) { b.queriesDir = dir }

// QueriesDir returns the directory configured via SetQueriesDir.
func (b *Base) QueriesDir() string { return b.queriesDir }

// NewQueryParameters merges framework defaults -> the source's own
// configured parameters (both folded into b.parameters at construction) ->
// the request's URI query-string overrides, per §4.8.
func (b *Base) NewQueryParameters(rawQuery string) (queryparams.Params, error) {
	return b.parameters.MergeFromURI(rawQuery)
}

// GetColumns returns a cached-or-inferred column list for (schema, query).
func (b *Base) GetColumns(ctx context.Context, schema, query string) (column.List, error) {
	key := schema + "\x00" + query
	if cached, ok := b.columnsCache.Get(key); ok {
		return cached.(column.List), nil
	}
	if b.InferColumnsFunc == nil {
		return column.List{}, fmt.Errorf("datasource %q: no column inference available", b.id)
	}
	cols, err := b.InferColumnsFunc(ctx, schema, query)
	if err != nil {
		return column.List{}, err
	}
	b.columnsCache.Put(key, cols)
	return cols, nil
}

// LoadSavedQueryAsNeeded replaces q with the contents of a `.query`/`.sql`
// file if q has no embedded newline, ends in one of those extensions, and
// the file exists under queriesDir.
func LoadSavedQueryAsNeeded(q, queriesDir string) string {
	if strings.ContainsAny(q, "\n") {
		return q
	}
	if !strings.HasSuffix(q, ".query") && !strings.HasSuffix(q, ".sql") {
		return q
	}
	path := q
	if queriesDir != "" && !strings.HasPrefix(q, "/") {
		path = queriesDir + "/" + q
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return q
	}
	return string(b)
}

// BuildResponseColumns prepends the datasource-id column and/or the
// datasource's custom columns to cols according to params, matching the
// exact prefix a streamed query response carries so that a columns_info
// caller sees the same layout ExecuteQuery will emit.
func BuildResponseColumns(ds DataSource, cols column.List, params queryparams.Params) column.List {
	if !params.ShowDatasourceColumn && !params.ShowCustomColumns {
		return cols
	}
	out := make([]column.Info, 0, len(cols.Columns)+1+len(ds.CustomColumns().Columns))
	if params.ShowDatasourceColumn {
		out = append(out, column.New("__datasource", chtype.String, true))
	}
	if params.ShowCustomColumns {
		out = append(out, ds.CustomColumns().Columns...)
	}
	out = append(out, cols.Columns...)
	return column.List{Version: cols.Version, Columns: out}
}

// WriteDebugInfo writes the fixed 5-column debug-echo row (§4.9 debug
// mode): datasource id, type, columns-as-json, query, parameters as a
// query string.
func WriteDebugInfo(id, typeName string, columns column.List, query string, params queryparams.Params, e *wire.Encoder) error {
	colsJSON, err := columnsToJSON(columns)
	if err != nil {
		return err
	}
	for _, v := range []string{id, typeName, colsJSON, query, params.ToQueryString()} {
		e.WriteNonNull()
		e.WriteString(v)
	}
	return nil
}

func columnsToJSON(columns column.List) (string, error) {
	type jsonCol struct {
		Name      string `json:"name"`
		Type      string `json:"type"`
		Nullable  bool   `json:"nullable"`
		Precision int    `json:"precision,omitempty"`
		Scale     int    `json:"scale,omitempty"`
	}
	cols := make([]jsonCol, 0, len(columns.Columns))
	for _, c := range columns.Columns {
		cols = append(cols, jsonCol{Name: c.Name, Type: c.Type.String(), Nullable: c.Nullable, Precision: c.Precision, Scale: c.Scale})
	}
	b, err := json.Marshal(cols)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
