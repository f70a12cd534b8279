package escalate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlack_Escalate(t *testing.T) {
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("expected Content-Type: application/json")
		}
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	slack := NewSlack(server.URL)
	err := slack.Escalate(context.Background(), Escalation{
		Severity: SeverityBlocking,
		RunID:    "3f2a91c8-aaaa-bbbb-cccc-000000000000",
		Layer:    "api",
		Title:    "Quality gate failed",
		Message:  "combined score 3.40 below threshold 4.00",
		Context:  map[string]string{"iterations": "3"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, ok := receivedPayload["text"].(string)
	if !ok || !strings.Contains(text, ":octagonal_sign: *[api]* Quality gate failed") {
		t.Errorf("expected fallback text with severity emoji and layer, got %q", text)
	}

	blocks, ok := receivedPayload["blocks"].([]any)
	if !ok || len(blocks) != 2 {
		t.Fatalf("expected section + context blocks, got %v", receivedPayload["blocks"])
	}

	section := blocks[0].(map[string]any)
	body := section["text"].(map[string]any)["text"].(string)
	if !strings.Contains(body, "*Quality gate failed*") || !strings.Contains(body, "below threshold") {
		t.Errorf("expected title and message in section body, got %q", body)
	}

	contextBlock := blocks[1].(map[string]any)
	elements := contextBlock["elements"].([]any)
	var texts []string
	for _, el := range elements {
		texts = append(texts, el.(map[string]any)["text"].(string))
	}
	// Run and layer lead, then context keys sorted.
	if len(texts) != 3 {
		t.Fatalf("expected run, layer, and one context element, got %v", texts)
	}
	if texts[0] != "*run:* 3f2a91c8" {
		t.Errorf("expected short run id first, got %q", texts[0])
	}
	if texts[1] != "*layer:* api" {
		t.Errorf("expected layer second, got %q", texts[1])
	}
	if texts[2] != "*iterations:* 3" {
		t.Errorf("expected context element last, got %q", texts[2])
	}
}

func TestSlack_EscalateError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	slack := NewSlack(server.URL)
	err := slack.Escalate(context.Background(), Escalation{
		Severity: SeverityInfo,
		Layer:    "test",
		Title:    "Test",
		Message:  "Test message",
	})

	if err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestSlack_Name(t *testing.T) {
	slack := NewSlack("http://example.com")
	if slack.Name() != "slack" {
		t.Errorf("expected 'slack', got %q", slack.Name())
	}
}
