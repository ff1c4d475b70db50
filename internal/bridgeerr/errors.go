// Package bridgeerr implements the bridge's six error kinds (§7 of the
// specification this service follows): ConfigError, UnknownSource,
// BackendError, EncodingError, Timeout, WriterClosed. Each is a typed
// wrapper compatible with errors.Is/errors.As, grounded on the same shape
// as the teacher's database-adapter error hierarchy.
package bridgeerr

import (
	"errors"
	"fmt"
)

// Sentinel errors usable with errors.Is against any wrapped instance below.
var (
	ErrConfig        = errors.New("invalid or malformed configuration")
	ErrUnknownSource = errors.New("data source not found")
	ErrBackend       = errors.New("backend query failed")
	ErrEncoding      = errors.New("value could not be encoded for the wire")
	ErrTimeout       = errors.New("route timed out")
	ErrWriterClosed  = errors.New("response writer already closed")
)

// ConfigError wraps a malformed-configuration failure for a specific
// source entry. Config errors are logged and the offending entry is
// skipped; they never fail the process.
type ConfigError struct {
	Entry string
	Cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %q: %v", e.Entry, e.Cause)
}
func (e *ConfigError) Unwrap() error { return e.Cause }
func (e *ConfigError) Is(target error) bool {
	return errors.Is(target, ErrConfig) || errors.Is(e.Cause, target)
}

// NewConfigError builds a ConfigError for the named entry.
func NewConfigError(entry string, cause error) *ConfigError {
	return &ConfigError{Entry: entry, Cause: cause}
}

// UnknownSourceError is returned when a data source URI cannot be resolved
// and auto-create was not requested (or found no matching type).
type UnknownSourceError struct {
	URI string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("Data source [%s] not found!", e.URI)
}
func (e *UnknownSourceError) Is(target error) bool { return errors.Is(target, ErrUnknownSource) }

// NewUnknownSourceError builds an UnknownSourceError, matching the
// original implementation's exact message text.
func NewUnknownSourceError(uri string) *UnknownSourceError {
	return &UnknownSourceError{URI: uri}
}

// BackendError wraps a failure from the backend driver during connect,
// execute, or fetch.
type BackendError struct {
	Source    string
	Operation string
	Cause     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Source, e.Operation, e.Cause)
}
func (e *BackendError) Unwrap() error { return e.Cause }
func (e *BackendError) Is(target error) bool {
	return errors.Is(target, ErrBackend) || errors.Is(e.Cause, target)
}

// WrapBackend wraps err as a BackendError unless it already is one.
func WrapBackend(source, operation string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Source: source, Operation: operation, Cause: err}
}

// EncodingError signals a value out of range for its target wire type —
// a programming bug in the caller, not a transient failure.
type EncodingError struct {
	Column string
	Value  any
	Cause  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error for column %q (value %v): %v", e.Column, e.Value, e.Cause)
}
func (e *EncodingError) Unwrap() error { return e.Cause }
func (e *EncodingError) Is(target error) bool {
	return errors.Is(target, ErrEncoding) || errors.Is(e.Cause, target)
}

// NewEncodingError builds an EncodingError.
func NewEncodingError(column string, value any, cause error) *EncodingError {
	return &EncodingError{Column: column, Value: value, Cause: cause}
}

// TimeoutError signals that a route's timeout handler fired.
type TimeoutError struct {
	Route string
}

func (e *TimeoutError) Error() string        { return fmt.Sprintf("route %q timed out", e.Route) }
func (e *TimeoutError) Is(target error) bool { return errors.Is(target, ErrTimeout) }

// NewTimeoutError builds a TimeoutError for the given route.
func NewTimeoutError(route string) *TimeoutError { return &TimeoutError{Route: route} }

// WriterClosedError signals an attempt to write to an already-ended
// response. The row-streaming loop must abort cleanly on this error.
type WriterClosedError struct{}

func (e *WriterClosedError) Error() string        { return ErrWriterClosed.Error() }
func (e *WriterClosedError) Is(target error) bool { return errors.Is(target, ErrWriterClosed) }

// NewWriterClosedError builds a WriterClosedError.
func NewWriterClosedError() *WriterClosedError { return &WriterClosedError{} }
