package escalate

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Terminal writes escalations to stderr. This is the default backend so
// a run with no escalation config still surfaces blocked layers.
type Terminal struct {
	mu  sync.Mutex // Serializes writes so concurrent escalations stay readable
	out io.Writer
}

// NewTerminal creates a terminal escalator writing to stderr
func NewTerminal() *Terminal {
	return &Terminal{out: os.Stderr}
}

// NewTerminalWithWriter creates a terminal escalator with a custom writer
func NewTerminalWithWriter(w io.Writer) *Terminal {
	return &Terminal{out: w}
}

func severityMark(s Severity) string {
	switch s {
	case SeverityCritical, SeverityBlocking:
		return "‼"
	case SeverityWarning:
		return "!"
	default:
		return "·"
	}
}

// Escalate writes the escalation to the configured writer
func (t *Terminal) Escalate(ctx context.Context, e Escalation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n%s [%s] %s\n", severityMark(e.Severity), e.Severity, e.Title)
	if e.RunID != "" {
		fmt.Fprintf(t.out, "  run %s", e.shortRunID())
		if e.Layer != "" {
			fmt.Fprintf(t.out, "  layer %s", e.Layer)
		}
		fmt.Fprintln(t.out)
	} else if e.Layer != "" {
		fmt.Fprintf(t.out, "  layer %s\n", e.Layer)
	}
	if e.Message != "" {
		fmt.Fprintf(t.out, "  %s\n", e.Message)
	}
	for _, k := range e.contextKeys() {
		fmt.Fprintf(t.out, "  %s: %s\n", k, e.Context[k])
	}

	return nil
}

// Name returns "terminal"
func (t *Terminal) Name() string {
	return "terminal"
}
