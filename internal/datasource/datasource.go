// Package datasource implements DataSourceRegistry (C6) and the generic +
// SQL DataSource contract (C8): pluggable backend construction, per-source
// connection pooling, columns inference with caching, and row streaming
// through the wire encoder.
package datasource

import (
	"context"
	"time"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/queryparams"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/wire"
)

// DefaultQuoteIdentifier is the fallback identifier quote character used
// when a backend cannot report its own.
const DefaultQuoteIdentifier = "`"

// Writer is the row-sink a DataSource streams encoded rows into. It wraps
// an *wire.Encoder plus a liveness check so the streaming loop can abort
// promptly on client disconnect (the WriterClosed error kind, §7).
type Writer interface {
	// Encoder returns the encoder to append the next row's bytes to.
	Encoder() *wire.Encoder
	// Flush pushes any buffered bytes to the underlying transport.
	Flush() error
	// IsOpen reports whether the writer can still accept rows.
	IsOpen() bool
}

// DataSource is the generic contract every backend (SQL or otherwise)
// implements. It owns its pooled connections exclusively and is safe for
// concurrent use by multiple in-flight requests.
type DataSource interface {
	ID() string
	Type() string
	QuoteIdentifier() string
	Digest() uint64
	Timezone() *time.Location

	// GetColumns returns the column list for the rows a query/table would
	// produce, backed by a per-source cache.
	GetColumns(ctx context.Context, schema, query string) (column.List, error)

	// CustomColumns returns the datasource's configured customColumns
	// (§3), prepended to result rows when a request asks for them.
	CustomColumns() column.List

	// NewQueryParameters merges defaults -> the source's own configured
	// parameters -> the request URI's query-string overrides.
	NewQueryParameters(rawQuery string) (queryparams.Params, error)

	// ExecuteQuery streams rows for an ad hoc query.
	ExecuteQuery(ctx context.Context, query string, requestColumns column.List, params queryparams.Params, w Writer) error

	// Close releases the pooled backend. Idempotent.
	Close() error
}

// Factory builds a DataSource of a specific pluggable type from an id and
// raw JSON config (nil for an adhoc, connection-string-only source).
type Factory func(id string, resolver Resolver, rawConfig []byte) (DataSource, error)

// Resolver performs SRV-style template substitution and name resolution
// for connection strings, per §4.6.
type Resolver interface {
	Resolve(template string) string
}
