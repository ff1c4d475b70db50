package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riverstonedata/ch-jdbc-bridge/internal/bridgeerr"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/chtype"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/queryparams"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/wire"
)

// poolDefaults mirrors HikariCP's out-of-the-box tuning, which the
// original bridge relies on for every JDBC backend: one idle connection
// kept warm, a small ceiling of five, and a validation query used only at
// pool warm-up (see SPEC_FULL DOMAIN STACK, database/sql).
const (
	poolMinIdle        = 1
	poolMaxOpen        = 5
	poolConnMaxLife    = 30 * time.Minute
	poolValidationStmt = "SELECT 1"

	// flushThresholdBytes bounds how much row data accumulates in the
	// encoder before it's pushed to the client, keeping the response
	// genuinely chunked instead of buffering an entire result set.
	flushThresholdBytes = 64 * 1024
)

// SQLDataSource is the C8 generic/SQL DataSource implementation: a pooled
// database/sql handle plus JDBC-style column inference and row streaming.
type SQLDataSource struct {
	*Base
	db         *sql.DB
	driverName string
	log        *logger.Logger
}

// NewSQLFactory builds a Factory for a specific database/sql driver name
// (e.g. "clickhouse", "postgres", "mysql"). driverName must already be
// registered (via blank import) with database/sql by the process
// entrypoint; the factory itself never imports a driver package, keeping
// backend selection purely additive at the cmd/bridge wiring layer.
func NewSQLFactory(driverName, typeName string, log *logger.Logger) Factory {
	return func(id string, resolver Resolver, rawConfig []byte) (DataSource, error) {
		base, cfg, err := NewBase(id, typeName, resolver, rawConfig)
		if err != nil {
			return nil, err
		}

		dsn := cfg.JDBCUrl
		if dsn == "" {
			dsn = id
		}
		if resolver != nil {
			dsn = resolveDSNTemplate(resolver, dsn)
		}

		db, err := sql.Open(driverName, dsn)
		if err != nil {
			return nil, bridgeerr.WrapBackend(id, "open", err)
		}
		db.SetMaxOpenConns(poolMaxOpen)
		db.SetMaxIdleConns(poolMinIdle)
		db.SetConnMaxLifetime(poolConnMaxLife)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := db.ExecContext(ctx, poolValidationStmt); err != nil {
			db.Close()
			return nil, bridgeerr.WrapBackend(id, "validate", err)
		}

		ds := &SQLDataSource{Base: base, db: db, driverName: driverName, log: log}
		ds.InferColumnsFunc = ds.inferColumns
		return ds, nil
	}
}

func resolveDSNTemplate(resolver Resolver, dsn string) string {
	if !strings.Contains(dsn, "{{") {
		return dsn
	}
	var out strings.Builder
	rest := dsn
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			out.WriteString(rest)
			break
		}
		end += start
		out.WriteString(rest[:start])
		if v := resolver.Resolve(strings.TrimSpace(rest[start+2 : end])); v != "" {
			out.WriteString(v)
		} else {
			out.WriteString(rest[start : end+2])
		}
		rest = rest[end+2:]
	}
	return out.String()
}

// jdbcTypeMapping maps a database/sql driver's reported column type name
// to a ClickHouse wire type, per §5's JDBC->ClickHouse table. Driver type
// names vary in case and vendor dialect, so lookups are case-insensitive
// and fall back to prefix matching for parameterized types like
// "VARCHAR(255)" or "NUMERIC(10,2)".
var jdbcTypeMapping = map[string]chtype.DataType{
	"BOOL": chtype.Int8, "BOOLEAN": chtype.Int8,
	"TINYINT": chtype.Int8, "INT2": chtype.Int16, "SMALLINT": chtype.Int16,
	"INT": chtype.Int32, "INT4": chtype.Int32, "INTEGER": chtype.Int32, "MEDIUMINT": chtype.Int32,
	"BIGINT": chtype.Int64, "INT8": chtype.Int64,
	"FLOAT": chtype.Float32, "REAL": chtype.Float32,
	"DOUBLE": chtype.Float64, "DOUBLE PRECISION": chtype.Float64, "FLOAT8": chtype.Float64,
	"DECIMAL": chtype.Decimal, "NUMERIC": chtype.Decimal, "MONEY": chtype.Decimal,
	"DATE": chtype.Date,
	"TIME": chtype.String, "TIMETZ": chtype.String,
	"TIMESTAMP": chtype.DateTime, "DATETIME": chtype.DateTime,
	"TIMESTAMPTZ": chtype.DateTime64, "TIMESTAMP WITH TIME ZONE": chtype.DateTime64,
	"CHAR": chtype.String, "VARCHAR": chtype.String, "TEXT": chtype.String,
	"NCHAR": chtype.String, "NVARCHAR": chtype.String, "CLOB": chtype.String,
	"UUID": chtype.String, "JSON": chtype.String, "JSONB": chtype.String, "XML": chtype.String,
	"BLOB": chtype.String, "BYTEA": chtype.String, "BINARY": chtype.String, "VARBINARY": chtype.String,
}

// mapJDBCType resolves a driver-reported type name to a ClickHouse type,
// defaulting to String for anything unrecognized (matching the original's
// conservative unknown-type fallback rather than failing the query).
func mapJDBCType(dbTypeName string) chtype.DataType {
	name := strings.ToUpper(strings.TrimSpace(dbTypeName))
	if t, ok := jdbcTypeMapping[name]; ok {
		return t
	}
	if i := strings.IndexByte(name, '('); i > 0 {
		if t, ok := jdbcTypeMapping[name[:i]]; ok {
			return t
		}
	}
	best, bestLen := chtype.String, 0
	for prefix, t := range jdbcTypeMapping {
		if len(prefix) > bestLen && strings.HasPrefix(name, prefix) {
			best, bestLen = t, len(prefix)
		}
	}
	return best
}

// inferColumns runs a zero-row probe query and maps the driver's reported
// column metadata to ClickHouse types (§5, SUPPLEMENTED FEATURE 2).
func (ds *SQLDataSource) inferColumns(ctx context.Context, schema, query string) (column.List, error) {
	probe := query
	if !strings.ContainsAny(strings.TrimSpace(query), " \t\n\r") {
		table := ds.quoteIdentifier(query)
		if schema != "" {
			table = ds.quoteIdentifier(schema) + "." + table
		}
		probe = fmt.Sprintf("SELECT * FROM %s WHERE 1=0", table)
	} else {
		probe = fmt.Sprintf("SELECT * FROM (%s) bridge_probe WHERE 1=0", stripTrailingSemicolon(query))
	}

	rows, err := ds.db.QueryContext(ctx, probe)
	if err != nil {
		return column.List{}, bridgeerr.WrapBackend(ds.ID(), "infer columns", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return column.List{}, bridgeerr.WrapBackend(ds.ID(), "infer columns", err)
	}

	cols := make([]column.Info, 0, len(types))
	for _, ct := range types {
		nullable, ok := ct.Nullable()
		if !ok {
			nullable = true
		}
		chT := mapJDBCType(ct.DatabaseTypeName())
		if prec, scale, ok := ct.DecimalSize(); ok && chtype.IsDecimal(chT) {
			cols = append(cols, column.NewWithPrecision(ct.Name(), chT, nullable, int(prec), int(scale)))
			continue
		}
		cols = append(cols, column.New(ct.Name(), chT, nullable))
	}
	return column.List{Version: 1, Columns: cols}, nil
}

// quoteIdentifier wraps name in the data source's identifier quote
// character, doubling any embedded occurrence of it, matching the
// original's getQuoteIdentifier()-wrapped table/schema construction.
func (ds *SQLDataSource) quoteIdentifier(name string) string {
	q := ds.QuoteIdentifier()
	return q + strings.ReplaceAll(name, q, q+q) + q
}

func stripTrailingSemicolon(q string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(q), " \t\n\r;")
	return trimmed
}

// ExecuteQuery runs query, resolves its output columns (from
// requestColumns when the caller pinned them via a named query, otherwise
// via inference), and streams every row through w in wire format.
func (ds *SQLDataSource) ExecuteQuery(ctx context.Context, query string, requestColumns column.List, params queryparams.Params, w Writer) error {
	query = LoadSavedQueryAsNeeded(query, ds.QueriesDir())

	cols := requestColumns
	if cols.Size() == 0 {
		inferred, err := ds.GetColumns(ctx, "", query)
		if err != nil {
			return err
		}
		cols = inferred
	}

	if params.Debug {
		if err := WriteDebugInfo(ds.ID(), ds.Type(), cols, query, params, w.Encoder()); err != nil {
			return err
		}
		return w.Flush()
	}

	if params.Offset > 0 || params.MaxRows > 0 || params.Position > 1 {
		query = applyRowLimits(query, params)
	}

	ds.log.Debugf("datasource %q: executing %s", ds.ID(), query)

	rows, err := ds.db.QueryContext(ctx, query)
	if err != nil {
		return bridgeerr.WrapBackend(ds.ID(), "execute query", err)
	}
	defer rows.Close()

	dbCols, err := rows.Columns()
	if err != nil {
		return bridgeerr.WrapBackend(ds.ID(), "execute query", err)
	}

	// Position mirrors ResultSet.absolute(position): it takes priority over
	// offset and positions the cursor before the first row streamed.
	// database/sql has no absolute-positioning API, so the rows in between
	// are read and discarded instead.
	if params.Position > 1 {
		for skipped := 1; skipped < params.Position; skipped++ {
			if !rows.Next() {
				break
			}
		}
		if err := rows.Err(); err != nil {
			return bridgeerr.WrapBackend(ds.ID(), "seek to position", err)
		}
	}

	scanTargets := make([]any, len(dbCols))
	scanValues := make([]sql.RawBytes, len(dbCols))
	for i := range scanTargets {
		scanTargets[i] = &scanValues[i]
	}

	rowCount := 0
	for rows.Next() {
		if !w.IsOpen() {
			return bridgeerr.NewWriterClosedError()
		}
		if params.MaxRows > 0 && rowCount >= params.MaxRows {
			break
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return bridgeerr.WrapBackend(ds.ID(), "scan row", err)
		}

		if params.ShowDatasourceColumn {
			w.Encoder().WriteNonNull()
			w.Encoder().WriteString(ds.ID())
		}
		if params.ShowCustomColumns {
			for _, cc := range ds.customColumns.Columns {
				if err := writeCustomColumnValue(w.Encoder(), cc); err != nil {
					return err
				}
			}
		}

		for i, colDecl := range cols.Columns {
			idx := i
			if colDecl.IsIndexed() {
				idx = colDecl.Index()
			}
			if idx >= len(scanValues) {
				return bridgeerr.NewEncodingError(colDecl.Name, nil, fmt.Errorf("column index %d out of range for %d result columns", idx, len(scanValues)))
			}
			if err := writeSQLValue(w.Encoder(), colDecl, scanValues[idx], params); err != nil {
				return err
			}
		}
		rowCount++
		if len(w.Encoder().Bytes()) >= flushThresholdBytes {
			if err := w.Flush(); err != nil {
				return bridgeerr.NewWriterClosedError()
			}
		}
	}
	if err := rows.Err(); err != nil {
		return bridgeerr.WrapBackend(ds.ID(), "iterate rows", err)
	}
	return w.Flush()
}

// applyRowLimits appends LIMIT/OFFSET clauses. A Position beyond the first
// row takes priority over Offset (matching the original's absolute-position
// precedence) and is honored by discarding rows in ExecuteQuery instead, so
// no OFFSET clause is added here when Position is set.
func applyRowLimits(query string, params queryparams.Params) string {
	q := stripTrailingSemicolon(query)
	if params.MaxRows > 0 {
		q = fmt.Sprintf("%s LIMIT %d", q, params.MaxRows)
	}
	if params.Offset > 0 && params.Position <= 1 {
		q = fmt.Sprintf("%s OFFSET %d", q, params.Offset)
	}
	return q
}

// writeCustomColumnValue writes a custom column's configured value with the
// column's own type and nullability; a column with no value gets its type's
// default value.
func writeCustomColumnValue(e *wire.Encoder, col column.Info) error {
	var raw sql.RawBytes
	if col.DefaultValue != nil {
		raw = sql.RawBytes(fmt.Sprint(col.DefaultValue))
	}
	return writeSQLValue(e, col, raw, queryparams.Params{NullAsDefault: true})
}

// writeSQLValue dispatches a single raw driver value into the wire
// encoder according to col's declared ClickHouse type, honoring
// null-as-default (§4.3/§4.8). For a Nullable column a null value is written
// as writeNull(), or, when params.NullAsDefault is set, as writeNonNull()
// followed by the column's default value. For a non-Nullable column a null
// value is written as the default value alone (no marker byte) when
// params.NullAsDefault is set, and is an EncodingError otherwise.
func writeSQLValue(enc *wire.Encoder, col column.Info, raw sql.RawBytes, params queryparams.Params) error {
	isNull := raw == nil
	if col.Nullable {
		if isNull {
			if params.NullAsDefault {
				enc.WriteNonNull()
				return enc.WriteDefaultValue(col)
			}
			enc.WriteNull()
			return nil
		}
		enc.WriteNonNull()
	} else if isNull {
		if params.NullAsDefault {
			return enc.WriteDefaultValue(col)
		}
		return bridgeerr.NewEncodingError(col.Name, nil, fmt.Errorf("null value for non-nullable column"))
	}

	s := string(raw)
	switch col.Type {
	case chtype.Int8:
		v, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		_, err = enc.WriteInt8(v)
		return err
	case chtype.UInt8:
		v, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		_, err = enc.WriteUInt8(v)
		return err
	case chtype.Int16:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		_, err = enc.WriteInt16(v)
		return err
	case chtype.UInt16:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		_, err = enc.WriteUInt16(v)
		return err
	case chtype.Int32:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		_, err = enc.WriteInt32(v)
		return err
	case chtype.UInt32:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		_, err = enc.WriteUInt32(v)
		return err
	case chtype.Int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		enc.WriteInt64(v)
		return nil
	case chtype.UInt64:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		enc.WriteUInt64(v)
		return nil
	case chtype.Float32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		enc.WriteFloat32(float32(v))
		return nil
	case chtype.Float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		enc.WriteFloat64(v)
		return nil
	case chtype.Decimal, chtype.Decimal32, chtype.Decimal64, chtype.Decimal128:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		_, err = enc.WriteDecimal(d.String(), col.Precision, col.Scale)
		return err
	case chtype.Date:
		t, err := parseSQLTime(s)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		var loc *time.Location
		if col.Timezone != "" {
			if l, lerr := time.LoadLocation(col.Timezone); lerr == nil {
				loc = l
			}
		}
		_, err = enc.WriteDate(t, loc)
		return err
	case chtype.DateTime:
		t, err := parseSQLTime(s)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		enc.WriteDateTime(t)
		return nil
	case chtype.DateTime64:
		t, err := parseSQLTime(s)
		if err != nil {
			return bridgeerr.NewEncodingError(col.Name, s, err)
		}
		enc.WriteDateTime64(t)
		return nil
	default:
		enc.WriteString(s)
		return nil
	}
}

func parseSQLTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// Close releases the pooled *sql.DB. Idempotent, matching database/sql's
// own Close semantics.
func (ds *SQLDataSource) Close() error {
	return ds.db.Close()
}
