package datasource

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/riverstonedata/ch-jdbc-bridge/internal/bridgeerr"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/digest"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
)

// entry pairs a live DataSource with a reference count and a generation
// stamp. On reload, a changed source is rebuilt under a new generation; the
// old instance is kept around and closed only once its refCount drains to
// zero, so requests already streaming through it are not disrupted.
type entry struct {
	ds         DataSource
	generation uint64
	refCount   int32
	retiring   bool
	// configured is true for sources built from a config/datasources
	// entry and false for ad-hoc sources built on demand from a
	// "type:connection-string" URI. Reload only ever retires configured
	// entries — an ad-hoc source has no config entry to disappear from,
	// so it would otherwise be retired on every reload.
	configured bool
}

// Registry is DataSourceRegistry (C6): a pluggable-factory map plus a
// digest-diffed, ref-counted set of live sources, keyed by the raw URI or
// configured id they were resolved from.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	sources    map[string]*entry
	resolver   Resolver
	log        *logger.Logger
	generation uint64
}

// New builds an empty Registry with no factories registered. Callers
// register backend factories (e.g. "jdbc") via RegisterFactory before use.
func New(resolver Resolver, log *logger.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		sources:   make(map[string]*entry),
		resolver:  resolver,
		log:       log,
	}
}

// RegisterFactory associates a pluggable type name (e.g. "jdbc", "mysql")
// with a constructor. Mirrors the original's reflective Constructor map,
// replaced by explicit Go registration per Design Note 9.
func (r *Registry) RegisterFactory(typeName string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeName] = f
}

// stripQueryParams removes a trailing "?..." suffix from a URI, returning
// the bare part and the raw query string (without the '?').
func stripQueryParams(uri string) (string, string) {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		return uri[:i], uri[i+1:]
	}
	return uri, ""
}

// peelTypePrefix splits a "type:rest" URI into its type prefix and
// remainder. Absence of a recognized scheme separator (e.g. a bare
// configured id with no colon) yields ("", uri).
func peelTypePrefix(uri string) (string, string) {
	i := strings.IndexByte(uri, ':')
	if i < 0 {
		return "", uri
	}
	// A scheme prefix never contains '/'.
	if strings.ContainsRune(uri[:i], '/') {
		return "", uri
	}
	// Guard against mistaking a port-bearing host ("host:5432/db") for a
	// scheme: digits right after the colon, up to '/' or the end, are a port.
	rest := uri[i+1:]
	digits := len(rest) - len(strings.TrimLeft(rest, "0123456789"))
	if digits > 0 && (digits == len(rest) || rest[digits] == '/') {
		return "", uri
	}
	return uri[:i], rest
}

// extractHost parses rest as a URI and returns its host, or "" if rest
// doesn't parse as one or carries no authority component. Mirrors
// ClickHouseDataSourceManager.get()'s "new URI(id); if host != null, id =
// host" step, swallowing parse failures the same way the original's
// try/catch does.
func extractHost(rest string) string {
	u, err := url.Parse(rest)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// resolveTemplate substitutes {{name}}, {{host:name}} and {{port:name}}
// placeholders via the registry's Resolver, leaving unresolved placeholders
// untouched (matching ClickHouseUtils.applyVariables' conservative
// fallback so a bad template fails loudly downstream instead of silently).
func (r *Registry) resolveTemplate(uri string) string {
	if r.resolver == nil || !strings.Contains(uri, "{{") {
		return uri
	}
	var out strings.Builder
	rest := uri
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
		placeholder := rest[start+2 : end]
		if resolved := r.resolver.Resolve(strings.TrimSpace(placeholder)); resolved != "" {
			out.WriteString(resolved)
		} else {
			out.WriteString("{{" + placeholder + "}}")
		}
		rest = rest[end+2:]
	}
	return out.String()
}

// Get looks up or, when autoCreate is true, lazily constructs the
// DataSource named by uri. uri may be a bare configured id (looked up
// directly), or an adhoc "type:connection-string[?params]" URI. The
// returned release func must be called exactly once when the caller is
// done using the source, decrementing its reference count.
func (r *Registry) Get(uri string, autoCreate bool) (ds DataSource, release func(), err error) {
	resolved := r.resolveTemplate(uri)
	bare, _ := stripQueryParams(resolved)

	r.mu.Lock()
	if e, ok := r.sources[bare]; ok && !e.retiring {
		e.refCount++
		r.mu.Unlock()
		return e.ds, r.releaseFunc(bare, e), nil
	}
	if e, ok := r.sources[uri]; ok && !e.retiring {
		e.refCount++
		r.mu.Unlock()
		return e.ds, r.releaseFunc(uri, e), nil
	}
	r.mu.Unlock()

	typeName, rest := peelTypePrefix(bare)

	// §4.6 step 3: if the remainder parses as a URI with a host, a
	// configured source registered under that host id wins over
	// auto-creating a new adhoc one, e.g. "jdbc://myhost:5432/db" reuses
	// a source configured under id "myhost".
	if host := extractHost(rest); host != "" {
		r.mu.Lock()
		if e, ok := r.sources[host]; ok && !e.retiring {
			e.refCount++
			r.mu.Unlock()
			return e.ds, r.releaseFunc(host, e), nil
		}
		r.mu.Unlock()
	}

	if !autoCreate {
		return nil, nil, bridgeerr.NewUnknownSourceError(uri)
	}

	if typeName == "" {
		return nil, nil, bridgeerr.NewUnknownSourceError(uri)
	}

	r.mu.RLock()
	factory, ok := r.factories[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, bridgeerr.NewUnknownSourceError(uri)
	}

	built, err := factory(rest, r.resolver, nil)
	if err != nil {
		return nil, nil, bridgeerr.WrapBackend(uri, "create", err)
	}

	r.mu.Lock()
	if e, ok := r.sources[bare]; ok && !e.retiring {
		r.mu.Unlock()
		built.Close()
		e.refCount++
		return e.ds, r.releaseFunc(bare, e), nil
	}
	e := &entry{ds: built, generation: r.generation, refCount: 1, configured: false}
	r.sources[bare] = e
	r.mu.Unlock()

	r.log.Infof("datasource: created adhoc source %q (type=%s)", bare, typeName)
	return built, r.releaseFunc(bare, e), nil
}

func (r *Registry) releaseFunc(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			e.refCount--
			if e.retiring && e.refCount <= 0 {
				r.closeEntryLocked(key, e)
			}
		})
	}
}

func (r *Registry) closeEntryLocked(key string, e *entry) {
	if cur, ok := r.sources[key]; ok && cur == e {
		delete(r.sources, key)
	}
	if err := e.ds.Close(); err != nil {
		r.log.Warnf("datasource: error closing %q: %v", key, err)
	} else {
		r.log.Debugf("datasource: closed %q", key)
	}
}

// Reload reconciles the registry's configured sources against a fresh
// id->raw-config map: unchanged entries (equal digest) are left alone,
// new/changed entries are rebuilt under the type named in their config,
// and entries removed from the config are marked retiring — closed
// immediately if idle, or once their last in-flight request releases.
func (r *Registry) Reload(configs map[string]json.RawMessage) {
	r.mu.Lock()
	r.generation++
	gen := r.generation

	type rebuild struct {
		id  string
		typ string
		raw json.RawMessage
	}
	var toBuild []rebuild
	seen := make(map[string]bool, len(configs))

	for id, raw := range configs {
		seen[id] = true
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || head.Type == "" {
			r.log.Warnf("datasource: skipping %q: missing or invalid type", id)
			continue
		}
		if existing, ok := r.sources[id]; ok && existing.ds.Digest() == digest.OfBytes(raw) {
			existing.generation = gen
			continue
		}
		toBuild = append(toBuild, rebuild{id: id, typ: head.Type, raw: raw})
	}

	var toRetire []string
	for id, e := range r.sources {
		if e.configured && !seen[id] {
			toRetire = append(toRetire, id)
		}
	}
	r.mu.Unlock()

	for _, rb := range toBuild {
		r.mu.RLock()
		factory, ok := r.factories[rb.typ]
		r.mu.RUnlock()
		if !ok {
			r.log.Warnf("datasource: skipping %q: unknown type %q", rb.id, rb.typ)
			continue
		}
		built, err := factory(rb.id, r.resolver, rb.raw)
		if err != nil {
			r.log.Warnf("datasource: failed to build %q: %v", rb.id, err)
			continue
		}
		r.mu.Lock()
		old, hadOld := r.sources[rb.id]
		r.sources[rb.id] = &entry{ds: built, generation: gen, refCount: 0, configured: true}
		r.mu.Unlock()
		if hadOld {
			r.retire(rb.id, old)
		}
		r.log.Infof("datasource: (re)loaded %q (type=%s)", rb.id, rb.typ)
	}

	r.mu.Lock()
	retiring := make(map[string]*entry, len(toRetire))
	for _, id := range toRetire {
		if e, ok := r.sources[id]; ok {
			retiring[id] = e
		}
	}
	r.mu.Unlock()
	for id, e := range retiring {
		r.retire(id, e)
	}
}

// retire marks an entry for close, closing it immediately if no request
// currently holds a reference.
func (r *Registry) retire(key string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.retiring = true
	if e.refCount <= 0 {
		r.closeEntryLocked(key, e)
	}
}

// Close shuts down every live source, ignoring in-flight reference counts
// (called only at process shutdown).
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for id, e := range r.sources {
		if err := e.ds.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %q: %w", id, err)
		}
	}
	r.sources = make(map[string]*entry)
	return firstErr
}
