// Package audit records every control handoff of a run: who acted,
// who acts next, and why. The coordinator appends an entry before each
// transition takes effect, so the trail answers "how did we get here"
// even after a crash.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Actor identifies a participant in the fix cycle.
type Actor string

const (
	ActorCoordinator Actor = "coordinator"
	ActorImplementer Actor = "implementer"
	ActorReviewer    Actor = "reviewer"
	ActorJudge       Actor = "judge"
	ActorHuman       Actor = "human"
	ActorGit         Actor = "git"
)

// Entry is one audit record. Time carries second precision.
type Entry struct {
	ID        string            `json:"id"`
	RunID     string            `json:"runId"`
	Time      time.Time         `json:"time"`
	Layer     string            `json:"layer,omitempty"`
	FromActor Actor             `json:"fromActor"`
	ToActor   Actor             `json:"toActor"`
	Summary   string            `json:"summary"`
	Details   map[string]string `json:"details,omitempty"`
}

// NewEntry creates an entry with a fresh ID and the current time
// truncated to whole seconds.
func NewEntry(runID, layer string, from, to Actor, summary string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		RunID:     runID,
		Time:      time.Now().UTC().Truncate(time.Second),
		Layer:     layer,
		FromActor: from,
		ToActor:   to,
		Summary:   summary,
	}
}

// WithDetail returns a copy of the entry with the detail added.
func (e Entry) WithDetail(key, value string) Entry {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// Sink persists audit entries.
type Sink interface {
	// Append durably records the entry. Callers append before acting on
	// the transition the entry describes.
	Append(ctx context.Context, e Entry) error

	// List returns a run's entries in append order.
	List(ctx context.Context, runID string) ([]Entry, error)

	Close() error
}

// MemorySink keeps entries in memory. Used in tests and dry runs.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append records the entry.
func (s *MemorySink) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// List returns the run's entries in append order.
func (s *MemorySink) List(_ context.Context, runID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Close is a no-op.
func (s *MemorySink) Close() error {
	return nil
}
