package reports

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// JSONAuditLogger writes one JSON object per audit entry to a writer.
type JSONAuditLogger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONAuditLogger returns an audit logger emitting JSON lines to w.
func NewJSONAuditLogger(w io.Writer) *JSONAuditLogger {
	return &JSONAuditLogger{enc: json.NewEncoder(w)}
}

func (l *JSONAuditLogger) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(entry)
}

// CaptureAuditLogger retains entries in memory for tests.
type CaptureAuditLogger struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (l *CaptureAuditLogger) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of recorded entries.
func (l *CaptureAuditLogger) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEntry(nil), l.entries...)
}
