package escalate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookPayload is the JSON body posted to webhook endpoints. Receivers
// key on runId + layer to correlate with the audit trail.
type WebhookPayload struct {
	Tool     string            `json:"tool"`
	Time     string            `json:"time"`
	Severity string            `json:"severity"`
	RunID    string            `json:"runId,omitempty"`
	Layer    string            `json:"layer,omitempty"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
}

// Webhook posts escalations to an HTTP endpoint as JSON
type Webhook struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewWebhook creates a Webhook escalator with default HTTP client
func NewWebhook(url string) *Webhook {
	return NewWebhookWithClient(url, &http.Client{
		Timeout: 10 * time.Second,
	})
}

// NewWebhookWithClient creates a Webhook escalator with custom HTTP client
func NewWebhookWithClient(url string, client *http.Client) *Webhook {
	return &Webhook{
		url:    url,
		client: client,
		now:    time.Now,
	}
}

func (w *Webhook) buildPayload(e Escalation) WebhookPayload {
	return WebhookPayload{
		Tool:     "bailiff",
		Time:     w.now().UTC().Format(time.RFC3339),
		Severity: string(e.Severity),
		RunID:    e.RunID,
		Layer:    e.Layer,
		Title:    e.Title,
		Message:  e.Message,
		Context:  e.Context,
	}
}

// Escalate posts the escalation as JSON to the webhook URL
func (w *Webhook) Escalate(ctx context.Context, e Escalation) error {
	body, err := json.Marshal(w.buildPayload(e))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "bailiff")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Name returns "webhook"
func (w *Webhook) Name() string {
	return "webhook"
}
