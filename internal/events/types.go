package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence in the review-cycle lifecycle
type Event struct {
	// Time is when the event occurred (set by bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Layer is the layer name this event relates to (empty for run-level events)
	Layer string `json:"layer,omitempty"`

	// Iteration is the fix iteration within the layer (nil if not iteration-related)
	Iteration *int `json:"iteration,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category
type EventType string

// Run lifecycle events
const (
	RunStarted   EventType = "run.started"
	RunCompleted EventType = "run.completed"
	RunFailed    EventType = "run.failed"
	RunAborted   EventType = "run.aborted"
)

// Layer lifecycle events
const (
	LayerQueued       EventType = "layer.queued"
	LayerImplementing EventType = "layer.implementing"
	LayerReviewing    EventType = "layer.reviewing"
	LayerFixing       EventType = "layer.fixing"
	LayerPassed       EventType = "layer.passed"
	LayerEscalated    EventType = "layer.escalated"
	LayerSkipped      EventType = "layer.skipped"
	LayerFailed       EventType = "layer.failed"
)

// Implementation agent events
const (
	ImplementStarted   EventType = "implement.started"
	ImplementCompleted EventType = "implement.completed"
	ImplementFailed    EventType = "implement.failed"
)

// Review evaluation events
const (
	// ReviewStarted is emitted when an evaluation begins for a layer
	// Payload: patterns (int), passes (int)
	ReviewStarted EventType = "review.started"

	// ReviewCompleted is emitted when all passes aggregated and scored
	// Payload: combinedScore (float64), passed (bool), duration (string)
	ReviewCompleted EventType = "review.completed"

	// ReviewFailed is emitted when the evaluation itself could not finish
	ReviewFailed EventType = "review.failed"
)

// Judge pass events
const (
	JudgePassStarted   EventType = "judge.pass.started"
	JudgePassCompleted EventType = "judge.pass.completed"
	JudgePassFailed    EventType = "judge.pass.failed"

	// PatternScored is emitted once per pattern after aggregation
	// Payload: pattern (string), tacticsScore (float64),
	// constraintsPassed (bool), overallScore (float64)
	PatternScored EventType = "pattern.scored"
)

// Quality gate events
const (
	// GatePassed payload: combinedScore (float64)
	GatePassed EventType = "gate.passed"

	// GateFailed carries every triggered reason, not just the first
	// Payload: combinedScore (float64), reasons ([]string)
	GateFailed EventType = "gate.failed"
)

// Fix dispatch events
const (
	FixDispatched EventType = "fix.dispatched"
	FixApplied    EventType = "fix.applied"
	FixFailed     EventType = "fix.failed"
)

// Escalation events
const (
	EscalationRaised   EventType = "escalation.raised"
	EscalationResolved EventType = "escalation.resolved"
)

// Git operation events
const (
	ChangesCommitted EventType = "git.committed"
)

// NewEvent creates an event with the given type and layer
func NewEvent(eventType EventType, layer string) Event {
	return Event{
		Type:  eventType,
		Layer: layer,
	}
}

// WithIteration returns a copy of the event with the iteration set
func (e Event) WithIteration(iteration int) Event {
	e.Iteration = &iteration
	return e
}

// WithPayload returns a copy of the event with the payload set
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this is a failure event type
func (e Event) IsFailure() bool {
	return strings.HasSuffix(string(e.Type), ".failed")
}

// String returns a human-readable representation of the event
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Layer != "" {
		parts = append(parts, e.Layer)
	}

	if e.Iteration != nil {
		parts = append(parts, fmt.Sprintf("iter=#%d", *e.Iteration))
	}

	return strings.Join(parts, " ")
}
