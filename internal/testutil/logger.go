package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
)

// NopLogger returns a logger that drops every record
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LogRecorder collects JSON log records written during a test
type LogRecorder struct {
	t   testing.TB
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogRecorder returns a debug-level logger and the recorder behind it
func NewLogRecorder(t testing.TB) (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{t: t}
	return slog.New(slog.NewJSONHandler(rec, &slog.HandlerOptions{Level: slog.LevelDebug})), rec
}

func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// Records decodes every record logged so far
func (r *LogRecorder) Records() []map[string]any {
	r.t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []map[string]any
	dec := json.NewDecoder(bytes.NewReader(r.buf.Bytes()))
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			r.t.Fatalf("decode log record: %v", err)
		}
		records = append(records, rec)
	}
	return records
}

// Find returns the first record with the given message, or nil
func (r *LogRecorder) Find(msg string) map[string]any {
	r.t.Helper()
	for _, rec := range r.Records() {
		if rec[slog.MessageKey] == msg {
			return rec
		}
	}
	return nil
}
