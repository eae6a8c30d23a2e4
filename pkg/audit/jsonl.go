package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/wardenlabs/warden/pkg/engine"
)

// JSONLSink appends one JSON object per evaluation to a local file. The
// serialized trail is the redacted form, so the file never holds blocked
// response content.
type JSONLSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONL opens (or creates) the audit log at path in append mode.
func NewJSONL(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", path, err)
	}
	return &JSONLSink{file: f, enc: json.NewEncoder(f)}, nil
}

// Write appends the trail as one line.
func (s *JSONLSink) Write(_ context.Context, trail *engine.AuditTrail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(trail)
}

// Close flushes and closes the underlying file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
