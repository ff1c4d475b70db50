// Package server implements HTTPServer (C9): the bridge's five routes,
// per-route timeout policy, a bounded worker pool, and the chunked
// native-wire response path.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/riverstonedata/ch-jdbc-bridge/internal/bridgeerr"
	"github.com/riverstonedata/ch-jdbc-bridge/internal/datasource"
	"github.com/riverstonedata/ch-jdbc-bridge/internal/namedquery"
	"github.com/riverstonedata/ch-jdbc-bridge/internal/request"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/config"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/wire"
)

const pingBody = "Ok.\n"

// Server is the bridge's HTTP frontend: it owns the router, the worker
// pool semaphore, and read-only handles to the two registries.
type Server struct {
	cfg      config.Server
	router   *mux.Router
	http     *http.Server
	sources  *datasource.Registry
	queries  *namedquery.Registry
	log      *logger.Logger
	tokens   chan struct{}
	inFlight int32
}

// New builds a Server wired to sources and queries, using cfg for port and
// timeout policy.
func New(cfg config.Server, sources *datasource.Registry, queries *namedquery.Registry, log *logger.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		router:  mux.NewRouter(),
		sources: sources,
		queries: queries,
		log:     log,
		tokens:  make(chan struct{}, poolSize(cfg.WorkerPoolSize)),
	}
	s.setupRoutes()
	return s
}

func poolSize(configured int) int {
	if configured <= 0 {
		return 10
	}
	return configured
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)
	s.router.Handle("/columns_info", s.timeoutHandler(http.HandlerFunc(s.handleColumnsInfo), s.cfg.QueryTimeout(), "/columns_info")).Methods(http.MethodPost)
	s.router.Handle("/identifier_quote", s.timeoutHandler(http.HandlerFunc(s.handleIdentifierQuote), s.cfg.RequestTimeout(), "/identifier_quote")).Methods(http.MethodPost)
	s.router.HandleFunc("/write", s.handleWrite).Methods(http.MethodPost)
	s.router.HandleFunc("/", s.handleQuery).Methods(http.MethodPost)
}

// timeoutHandler wraps a non-streaming handler with http.TimeoutHandler,
// which is safe here because these routes write a single response body
// after their work completes (unlike "/", which streams incrementally and
// manages its own deadline via context).
func (s *Server) timeoutHandler(next http.Handler, d time.Duration, route string) http.Handler {
	return http.TimeoutHandler(next, d, bridgeerr.NewTimeoutError(route).Error())
}

// Start binds the configured port and runs the HTTP server in the
// background, returning immediately; bind failures are reported
// synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.ServerPort))
	if err != nil {
		return fmt.Errorf("server: bind port %d: %w", s.cfg.ServerPort, err)
	}
	s.http = &http.Server{Handler: s.router}
	s.log.Infof("server: listening on port %d", s.cfg.ServerPort)
	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("server: serve error: %v", err)
		}
	}()
	return nil
}

// Stop gracefully drains and closes the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) acquireToken() func() {
	s.tokens <- struct{}{}
	atomic.AddInt32(&s.inFlight, 1)
	return func() {
		<-s.tokens
		atomic.AddInt32(&s.inFlight, -1)
	}
}

// InFlight reports the number of requests currently holding a worker
// pool token.
func (s *Server) InFlight() int32 { return atomic.LoadInt32(&s.inFlight) }

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, pingBody)
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	io.Copy(io.Discard, r.Body)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, pingBody)
}

func (s *Server) parseFields(r *http.Request) (request.Fields, error) {
	if err := r.ParseForm(); err != nil {
		return request.Fields{}, err
	}
	fields := request.FromForm(r)
	if fields.Query == "" && r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err == nil && len(body) > 0 {
			fields.Query = request.StripQueryPrefix(string(body))
		}
	}
	return fields, nil
}

// resolveQuery folds the named-query registry lookup into (query text,
// pinned columns) per §4.7: a table param that matches a named query id
// substitutes that query's text and, if present, its pinned column list. If
// the request also carries its own columns header (fields.Columns), that
// header is resolved against the named query's declared columns per §4.8 /
// Design Note 2: each requested column's index is set, by name, to its
// position in the query's full declaration, so a request asking for a
// subset or reordering of a named query's columns gets exactly that instead
// of always the full, unmodified declaration.
func (s *Server) resolveQuery(fields request.Fields) (queryText string, pinned column.List, hasPinned bool, err error) {
	if fields.Table != "" {
		if nq, ok := s.queries.Get(fields.Table); ok {
			cols := nq.Columns
			if nq.HasColumns && fields.Columns != "" {
				cols, err = resolveRequestedColumns(nq.Columns, fields.Columns)
				if err != nil {
					return "", column.List{}, false, err
				}
			}
			return nq.Text, cols, nq.HasColumns, nil
		}
	}
	raw := fields.Query
	if raw == "" {
		raw = fields.Table
	}
	return request.NormalizeQuery(raw), column.List{}, false, nil
}

// resolveRequestedColumns parses the request's own columns header and
// resolves each requested column's index against pinned (the named query's
// full column list) by name, so ExecuteQuery's IsIndexed()/Index() dispatch
// scans the right physical result column for each requested one.
func resolveRequestedColumns(pinned column.List, rawColumnsHeader string) (column.List, error) {
	requested, err := column.ParseList(rawColumnsHeader)
	if err != nil {
		return column.List{}, fmt.Errorf("server: parsing requested columns: %w", err)
	}
	for i := range requested.Columns {
		if idx := pinned.IndexOf(requested.Columns[i].Name); idx >= 0 {
			requested.Columns[i].SetIndex(idx)
		}
	}
	return requested, nil
}

func (s *Server) handleColumnsInfo(w http.ResponseWriter, r *http.Request) {
	release := s.acquireToken()
	defer release()

	fields, err := s.parseFields(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ds, releaseDS, err := s.sources.Get(fields.ConnectionString, true)
	if err != nil {
		writeError(w, err)
		return
	}
	defer releaseDS()

	queryText, pinned, hasPinned, err := s.resolveQuery(fields)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.QueryTimeout())
	defer cancel()

	var cols column.List
	if hasPinned {
		cols = pinned
	} else {
		cols, err = ds.GetColumns(ctx, fields.Schema, queryText)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	params, err := ds.NewQueryParameters(r.URL.RawQuery)
	if err != nil {
		writeError(w, err)
		return
	}
	cols = datasource.BuildResponseColumns(ds, cols, params)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, cols.String())
}

func (s *Server) handleIdentifierQuote(w http.ResponseWriter, r *http.Request) {
	release := s.acquireToken()
	defer release()

	fields, err := s.parseFields(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ds, releaseDS, err := s.sources.Get(fields.ConnectionString, true)
	if err != nil {
		writeError(w, err)
		return
	}
	defer releaseDS()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, ds.QuoteIdentifier())
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	release := s.acquireToken()
	defer release()

	token := uuid.New().String()

	fields, err := s.parseFields(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ds, releaseDS, err := s.sources.Get(fields.ConnectionString, true)
	if err != nil {
		writeError(w, err)
		return
	}
	defer releaseDS()

	queryText, pinned, hasPinned, err := s.resolveQuery(fields)
	if err != nil {
		writeError(w, err)
		return
	}

	params, err := ds.NewQueryParameters(r.URL.RawQuery)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.QueryTimeout())
	defer cancel()

	var cols column.List
	if hasPinned {
		cols = pinned
	}

	// Headers are set but WriteHeader is deliberately not called yet: if
	// ExecuteQuery fails before writing any row, the response can still
	// become a clean 500 via writeError below. The first successful
	// Flush implicitly sends a 200.
	w.Header().Set("Content-Type", "application/octet-stream")

	flusher, _ := w.(http.Flusher)
	hw := &httpWriter{w: w, flusher: flusher, ctx: ctx, enc: wire.New(ds.Timezone(), 4096)}

	s.log.Debugf("server: [%s] executing on %q: %s", token, ds.ID(), queryText)

	if err := ds.ExecuteQuery(ctx, queryText, cols, params, hw); err != nil {
		s.log.Warnf("server: [%s] query failed: %v", token, err)
		if !hw.wroteAny {
			writeError(w, err)
		}
		return
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
