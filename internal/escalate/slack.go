package escalate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Slack posts escalations to a Slack incoming webhook
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack escalator with default HTTP client
func NewSlack(webhookURL string) *Slack {
	return NewSlackWithClient(webhookURL, &http.Client{
		Timeout: 10 * time.Second,
	})
}

// NewSlackWithClient creates a Slack escalator with custom HTTP client
func NewSlackWithClient(webhookURL string, client *http.Client) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     client,
	}
}

var slackEmoji = map[Severity]string{
	SeverityInfo:     ":information_source:",
	SeverityWarning:  ":warning:",
	SeverityCritical: ":rotating_light:",
	SeverityBlocking: ":octagonal_sign:",
}

func mrkdwn(text string) map[string]any {
	return map[string]any{"type": "mrkdwn", "text": text}
}

// buildMessage assembles the Block Kit message: a section with the title
// and gate reasons, then a context row identifying the run and carrying
// the scores. Fields are ordered so repeated escalations diff cleanly in
// a channel.
func (s *Slack) buildMessage(e Escalation) map[string]any {
	body := mrkdwn(fmt.Sprintf("*%s*\n%s", e.Title, e.Message))

	elements := []map[string]any{}
	if e.RunID != "" {
		elements = append(elements, mrkdwn(fmt.Sprintf("*run:* %s", e.shortRunID())))
	}
	if e.Layer != "" {
		elements = append(elements, mrkdwn(fmt.Sprintf("*layer:* %s", e.Layer)))
	}
	for _, k := range e.contextKeys() {
		elements = append(elements, mrkdwn(fmt.Sprintf("*%s:* %s", k, e.Context[k])))
	}

	blocks := []map[string]any{
		{"type": "section", "text": body},
	}
	if len(elements) > 0 {
		blocks = append(blocks, map[string]any{
			"type":     "context",
			"elements": elements,
		})
	}

	tag := e.Layer
	if tag == "" {
		tag = e.shortRunID()
	}
	text := fmt.Sprintf("%s *[%s]* %s", slackEmoji[e.Severity], tag, e.Title)
	if tag == "" {
		text = fmt.Sprintf("%s %s", slackEmoji[e.Severity], e.Title)
	}

	return map[string]any{
		"text":   text,
		"blocks": blocks,
	}
}

// Escalate posts the escalation to Slack
func (s *Slack) Escalate(ctx context.Context, e Escalation) error {
	body, err := json.Marshal(s.buildMessage(e))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Name returns "slack"
func (s *Slack) Name() string {
	return "slack"
}
