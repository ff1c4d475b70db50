package server

import (
	"context"
	"net/http"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/wire"
)

// httpWriter adapts an http.ResponseWriter into datasource.Writer: rows are
// encoded into a reusable buffer and written to the connection on each
// Flush call (the SQL streaming loop flushes every 64KB of encoded rows and
// once at the end), so the client sees a genuinely streamed chunked
// response rather than one buffered in memory.
type httpWriter struct {
	w        http.ResponseWriter
	flusher  http.Flusher
	ctx      context.Context
	enc      *wire.Encoder
	wroteAny bool
	failed   bool
}

func (hw *httpWriter) Encoder() *wire.Encoder { return hw.enc }

func (hw *httpWriter) Flush() error {
	if hw.enc.Bytes() == nil || len(hw.enc.Bytes()) == 0 {
		return nil
	}
	if _, err := hw.w.Write(hw.enc.Bytes()); err != nil {
		hw.failed = true
		return err
	}
	hw.wroteAny = true
	hw.enc.Reset()
	if hw.flusher != nil {
		hw.flusher.Flush()
	}
	return nil
}

func (hw *httpWriter) IsOpen() bool {
	if hw.failed {
		return false
	}
	select {
	case <-hw.ctx.Done():
		return false
	default:
		return true
	}
}
