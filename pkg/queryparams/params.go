// Package queryparams implements QueryParameters: the per-request knobs
// merged from URI query strings, datasource config, and framework
// defaults.
package queryparams

import (
	"fmt"
	"net/url"
	"strconv"
)

// Params holds per-request execution knobs.
type Params struct {
	FetchSize            int
	MaxRows              int
	Offset               int
	Position             int
	NullAsDefault        bool
	Debug                bool
	ShowDatasourceColumn bool
	ShowCustomColumns    bool
}

// Defaults returns the framework defaults.
func Defaults() Params {
	return Params{FetchSize: 1000, MaxRows: 0, Offset: 0, Position: 0, NullAsDefault: false, Debug: false}
}

// MergeFromURI parses a query string and overrides recognized keys:
// fetch_size, max_rows, null_as_default, offset, position, debug,
// show_datasource_column, show_custom_columns.
func (p Params) MergeFromURI(rawQuery string) (Params, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return p, fmt.Errorf("queryparams: parsing query string: %w", err)
	}
	out := p
	if v := values.Get("fetch_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("queryparams: fetch_size: %w", err)
		}
		out.FetchSize = n
	}
	if v := values.Get("max_rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("queryparams: max_rows: %w", err)
		}
		out.MaxRows = n
	}
	if v := values.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("queryparams: offset: %w", err)
		}
		out.Offset = n
	}
	if v := values.Get("position"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("queryparams: position: %w", err)
		}
		out.Position = n
	}
	if v := values.Get("null_as_default"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("queryparams: null_as_default: %w", err)
		}
		out.NullAsDefault = b
	}
	if v := values.Get("debug"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("queryparams: debug: %w", err)
		}
		out.Debug = b
	}
	if v := values.Get("show_datasource_column"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("queryparams: show_datasource_column: %w", err)
		}
		out.ShowDatasourceColumn = b
	}
	if v := values.Get("show_custom_columns"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("queryparams: show_custom_columns: %w", err)
		}
		out.ShowCustomColumns = b
	}
	return out, nil
}

// ToQueryString renders the five canonical fields in the exact order and
// format used by the original implementation's diagnostic echo.
func (p Params) ToQueryString() string {
	return fmt.Sprintf("fetch_size=%d&max_rows=%d&offset=%d&position=%d&null_as_default=%t",
		p.FetchSize, p.MaxRows, p.Offset, p.Position, p.NullAsDefault)
}
