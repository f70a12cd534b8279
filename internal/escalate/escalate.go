package escalate

import (
	"context"
	"sort"
)

// Severity indicates how urgent the escalation is
type Severity string

const (
	SeverityInfo     Severity = "info"     // FYI, no action needed
	SeverityWarning  Severity = "warning"  // May need attention
	SeverityCritical Severity = "critical" // Requires immediate action
	SeverityBlocking Severity = "blocking" // The run is parked until a human answers
)

// Escalation is a notification that a run needs human attention, raised
// when a layer exhausts its fix budget or the coordinator hits a
// condition it cannot resolve alone.
type Escalation struct {
	Severity Severity
	RunID    string            // Run that raised it
	Layer    string            // Layer affected, empty for run-level notices
	Title    string            // One line, e.g. "Layer storage failed review after 3 fix attempts"
	Message  string            // Gate reasons or error detail
	Context  map[string]string // scores, iteration count, threshold
}

// contextKeys returns the context keys sorted, so every backend renders
// the same escalation the same way on every run.
func (e Escalation) contextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// shortRunID trims a uuid run id down to its first group for display.
func (e Escalation) shortRunID() string {
	if len(e.RunID) > 8 {
		return e.RunID[:8]
	}
	return e.RunID
}

// Escalator is the interface for notifying humans. The coordinator
// treats notification failure as non-fatal: the escalation itself is
// recorded in the audit trail regardless.
type Escalator interface {
	// Escalate sends a notification.
	// Implementations should respect context cancellation.
	Escalate(ctx context.Context, e Escalation) error

	// Name returns the escalator type for logging
	Name() string
}
