// Package request implements RequestParser (§4.5): extraction of the
// bridge's per-request inputs from an HTTP request, and the
// NormalizeQuery/ExtractTableName algorithms ClickHouse's generated
// queries need before they reach a DataSource.
package request

import (
	"net/http"
	"strings"
)

// Fields is the set of request inputs the HTTP layer extracts before
// dispatching to a DataSource.
type Fields struct {
	ConnectionString string
	Schema           string
	Table            string
	Columns          string
	Query            string
}

// FromForm extracts the standard field set from a parsed HTTP request.
// Callers must have already called r.ParseForm().
func FromForm(r *http.Request) Fields {
	return Fields{
		ConnectionString: r.FormValue("connection_string"),
		Schema:           r.FormValue("schema"),
		Table:            r.FormValue("table"),
		Columns:          r.FormValue("columns"),
		Query:            r.FormValue("query"),
	}
}

const queryPrefix = "query="
const fromExpr = " FROM "

// StripQueryPrefix removes a literal leading "query=" if present.
func StripQueryPrefix(body string) string {
	return strings.TrimPrefix(body, queryPrefix)
}

// NormalizeQuery implements the exact FROM-extraction and backslash-escape
// unescaping algorithm ClickHouse's generated queries are put through
// before being matched against named queries or handed to a backend:
//
//   - if the query contains " FROM " followed immediately by a quote
//     character, and that quote wraps a `schema`.`table` or plain `table`
//     pattern, the inner table name is extracted;
//   - otherwise the query passes through unchanged (trimmed);
//   - the result is then unescaped for exactly \t \b \n \r \f \' \" \\,
//     leaving an unrecognized escape's backslash in place;
//   - the final result is trimmed.
func NormalizeQuery(query string) string {
	normalized := query

	if idx := strings.Index(query, fromExpr); idx > 0 {
		start := idx + len(fromExpr)
		if len(query) > start {
			quote := query[start]
			pos := start + 1

			dotIndex := strings.IndexByte(query[pos:], '.')
			if dotIndex >= 0 {
				dotIndex += pos
			}

			extracted := ""
			found := false

			if dotIndex > pos && len(query) > dotIndex && query[dotIndex-1] == quote && dotIndex+1 < len(query) && query[dotIndex+1] == quote {
				innerStart := dotIndex + 2
				endIndex := strings.LastIndexByte(query, quote)
				if endIndex > innerStart {
					extracted = query[innerStart:endIndex]
					found = true
				}
			} else if quote == '"' || quote == '`' {
				endIndex := strings.LastIndexByte(query, quote)
				if endIndex > pos {
					extracted = query[pos:endIndex]
					found = true
				}
			}

			if found {
				normalized = extracted
			}
		}
	}

	normalized = strings.TrimSpace(normalized)
	return strings.TrimSpace(unescapeC(normalized))
}

func unescapeC(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 't':
				b.WriteByte('\t')
				i++
			case 'b':
				b.WriteByte('\b')
				i++
			case 'n':
				b.WriteByte('\n')
				i++
			case 'r':
				b.WriteByte('\r')
				i++
			case 'f':
				b.WriteByte('\f')
				i++
			case '\'':
				b.WriteByte('\'')
				i++
			case '"':
				b.WriteByte('"')
				i++
			case '\\':
				b.WriteByte('\\')
				i++
			default:
				b.WriteByte(ch)
			}
		} else {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// ExtractTableName returns the first quoted identifier following " FROM ",
// or the whole (trimmed) string if no FROM is present, or the input as-is
// if the FROM clause isn't in a parseable quoted form. It shares the same
// quote-detection logic as NormalizeQuery but never applies the C-escape
// unescaping step, since a bare table name never carries string escapes.
func ExtractTableName(query string) string {
	if idx := strings.Index(query, fromExpr); idx > 0 {
		start := idx + len(fromExpr)
		if len(query) > start {
			quote := query[start]
			pos := start + 1

			dotIndex := strings.IndexByte(query[pos:], '.')
			if dotIndex >= 0 {
				dotIndex += pos
			}

			if dotIndex > pos && len(query) > dotIndex && query[dotIndex-1] == quote && dotIndex+1 < len(query) && query[dotIndex+1] == quote {
				innerStart := dotIndex + 2
				endIndex := strings.LastIndexByte(query, quote)
				if endIndex > innerStart {
					return strings.TrimSpace(query[innerStart:endIndex])
				}
			} else if quote == '"' || quote == '`' {
				endIndex := strings.LastIndexByte(query, quote)
				if endIndex > pos {
					return strings.TrimSpace(query[pos:endIndex])
				}
			}
		}
	}
	return strings.TrimSpace(query)
}
