package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wardenlabs/warden/pkg/engine"
	"github.com/wardenlabs/warden/pkg/httputil"
)

// WebhookSink posts the redacted trail to an external collector. Delivery is
// best-effort with the shared pooled client; there is no retry queue.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhook creates a sink targeting the given URL.
func NewWebhook(url string) *WebhookSink {
	return &WebhookSink{url: url, client: httputil.MediumClient()}
}

// Write posts the trail as JSON. Non-2xx responses are errors.
func (s *WebhookSink) Write(ctx context.Context, trail *engine.AuditTrail) error {
	payload, err := json.Marshal(trail)
	if err != nil {
		return fmt.Errorf("marshal audit webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build audit webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver audit webhook: %w", err)
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := httputil.ReadErrorBody(resp.Body)
		return fmt.Errorf("audit webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close is a no-op; the HTTP client is shared.
func (s *WebhookSink) Close() error { return nil }
