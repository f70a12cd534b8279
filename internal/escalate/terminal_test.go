package escalate

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTerminal_Escalate(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminalWithWriter(&buf)

	err := term.Escalate(context.Background(), Escalation{
		Severity: SeverityBlocking,
		RunID:    "3f2a91c8-aaaa-bbbb-cccc-000000000000",
		Layer:    "domain",
		Title:    "Layer domain failed review after 3 fix attempts",
		Message:  "combined score 3.20 below threshold 4.00",
		Context: map[string]string{
			"threshold":      "4.00",
			"combined_score": "3.20",
			"iterations":     "3",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "‼ [blocking] Layer domain failed review after 3 fix attempts") {
		t.Errorf("expected severity mark and title, got:\n%s", output)
	}
	if !strings.Contains(output, "run 3f2a91c8  layer domain") {
		t.Errorf("expected short run id and layer on one line, got:\n%s", output)
	}
	if !strings.Contains(output, "combined score 3.20 below threshold 4.00") {
		t.Errorf("expected message in output, got:\n%s", output)
	}

	// Context keys render sorted regardless of map order.
	a := strings.Index(output, "combined_score: 3.20")
	b := strings.Index(output, "iterations: 3")
	c := strings.Index(output, "threshold: 4.00")
	if a < 0 || b < 0 || c < 0 {
		t.Fatalf("expected all context keys in output, got:\n%s", output)
	}
	if !(a < b && b < c) {
		t.Errorf("expected context keys in sorted order, got:\n%s", output)
	}
}

func TestTerminal_EscalateWithoutRun(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminalWithWriter(&buf)

	err := term.Escalate(context.Background(), Escalation{
		Severity: SeverityWarning,
		Title:    "Audit sink degraded",
		Message:  "sqlite append failed, falling back to jsonl",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "! [warning] Audit sink degraded") {
		t.Errorf("expected warning mark, got:\n%s", output)
	}
	if strings.Contains(output, "run ") {
		t.Errorf("expected no run line without a run id, got:\n%s", output)
	}
}

func TestTerminal_EscalateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	term := NewTerminalWithWriter(&buf)

	if err := term.Escalate(ctx, Escalation{Title: "late"}); err == nil {
		t.Error("expected error from cancelled context")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output after cancellation, got %q", buf.String())
	}
}

func TestTerminal_Name(t *testing.T) {
	if NewTerminal().Name() != "terminal" {
		t.Errorf("expected 'terminal', got %q", NewTerminal().Name())
	}
}

func TestSeverityMark(t *testing.T) {
	cases := map[Severity]string{
		SeverityBlocking: "‼",
		SeverityCritical: "‼",
		SeverityWarning:  "!",
		SeverityInfo:     "·",
	}
	for sev, want := range cases {
		if got := severityMark(sev); got != want {
			t.Errorf("severityMark(%s) = %q, want %q", sev, got, want)
		}
	}
}
