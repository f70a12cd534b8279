// Package cycle drives the implement-review-fix loop for each layer of a
// run. Layers are strictly sequential; within a layer the coordinator
// moves the state machine Implementing -> Reviewing -> {Passed | Fixing |
// Escalated}, appending an audit entry before every transition.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bailiff-dev/bailiff/internal/agent"
	"github.com/bailiff-dev/bailiff/internal/audit"
	"github.com/bailiff-dev/bailiff/internal/escalate"
	"github.com/bailiff-dev/bailiff/internal/events"
	"github.com/bailiff-dev/bailiff/internal/pattern"
	"github.com/bailiff-dev/bailiff/internal/review"
)

// DefaultMaxIterations is the per-layer fix budget when none is configured.
const DefaultMaxIterations = 3

// ErrEscalated is returned by Run when a layer escalates and no Resolver
// is available to supply a human decision.
var ErrEscalated = errors.New("escalated with no resolver available")

// Status is a layer's position in the fix cycle.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusImplementing Status = "implementing"
	StatusReviewing    Status = "reviewing"
	StatusFixing       Status = "fixing"
	StatusPassed       Status = "passed"
	StatusEscalated    Status = "escalated"
	StatusSkipped      Status = "skipped"
	StatusAborted      Status = "aborted"
)

// Terminal reports whether the layer needs no further work from the run.
func (s Status) Terminal() bool {
	switch s {
	case StatusPassed, StatusSkipped, StatusAborted:
		return true
	}
	return false
}

// Resolution is a human decision for an escalated layer.
type Resolution string

const (
	// ResolutionContinueManually means the human fixed the layer
	// out-of-band; the coordinator runs one verification review.
	ResolutionContinueManually Resolution = "continue-manually"

	// ResolutionLowerThreshold lowers the layer's gate threshold and
	// re-reviews. The new threshold must be lower than the current one.
	ResolutionLowerThreshold Resolution = "lower-threshold"

	// ResolutionSkipLayer records the layer as skipped; the run proceeds.
	ResolutionSkipLayer Resolution = "skip-layer"

	// ResolutionAbort ends the whole run.
	ResolutionAbort Resolution = "abort"
)

// Valid reports whether r is a known resolution.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionContinueManually, ResolutionLowerThreshold, ResolutionSkipLayer, ResolutionAbort:
		return true
	}
	return false
}

// Answer pairs a resolution with its parameter.
type Answer struct {
	Resolution Resolution

	// NewThreshold is read only for ResolutionLowerThreshold.
	NewThreshold float64
}

// EscalationPrompt carries what a human needs to decide an escalated layer.
type EscalationPrompt struct {
	Layer          string
	IterationCount int
	Threshold      float64
	Result         *review.Result
}

// Resolver supplies human decisions for escalated layers. Implementations
// block until a decision is available (terminal prompt, TUI).
type Resolver interface {
	Resolve(ctx context.Context, p EscalationPrompt) (Answer, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, p EscalationPrompt) (Answer, error)

func (f ResolverFunc) Resolve(ctx context.Context, p EscalationPrompt) (Answer, error) {
	return f(ctx, p)
}

// Reviewer runs one full evaluation. *review.Evaluator satisfies it.
type Reviewer interface {
	Evaluate(ctx context.Context, req review.Request) (*review.Result, error)
}

// LayerSpec describes one layer of the run.
type LayerSpec struct {
	Name     string
	Patterns []pattern.Pattern

	// Threshold is the layer's gate threshold; zero means the run default.
	Threshold float64
}

// LayerState tracks one layer through the cycle. It is owned exclusively
// by the coordinator while the layer is being processed.
type LayerState struct {
	Layer          string
	Status         Status
	IterationCount int
	LastResult     *review.Result
}

// Config holds coordinator configuration.
type Config struct {
	// RunID identifies this run in audit entries; generated when empty.
	RunID string

	// Workdir is the repository root the cycle operates in.
	Workdir string

	// Feature names what is being built; Brief is the free-form plan
	// body handed to the implementer.
	Feature string
	Brief   string

	// Threshold is the run-level gate threshold. Strict turns the
	// pass condition from >= into >.
	Threshold float64
	Strict    bool

	// MaxIterations is the per-layer fix budget (default 3). A failing
	// review past the budget escalates instead of dispatching a fix.
	MaxIterations int

	AgentMaxTurns int
	AgentTimeout  time.Duration

	// CommitEnabled commits each passed layer's staged work.
	CommitEnabled  bool
	CommitNoVerify bool
}

// Dependencies bundles the coordinator's injected collaborators.
type Dependencies struct {
	Agent    agent.Agent
	Reviewer Reviewer
	Audit    audit.Sink

	// Escalator is notified when a layer exhausts its fix budget. Optional.
	Escalator escalate.Escalator

	// Resolver supplies human decisions for escalated layers. When nil,
	// an escalation halts the run with ErrEscalated.
	Resolver Resolver

	// Bus receives lifecycle events. Optional.
	Bus *events.Bus
}

// Result is the outcome of a full run.
type Result struct {
	RunID           string
	TotalLayers     int
	PassedLayers    int
	SkippedLayers   int
	EscalatedLayers int
	Aborted         bool
	Duration        time.Duration
	States          []LayerState
}

// Coordinator runs the fix cycle over an ordered list of layers.
// It is single-threaded: Run owns all state, and Resolve may only be
// called for a layer Run has escalated. Live progress is published on
// the event bus, not read off the coordinator.
type Coordinator struct {
	cfg       Config
	specs     []LayerSpec
	states    []*LayerState
	index     map[string]int
	agent     agent.Agent
	reviewer  Reviewer
	sink      audit.Sink
	escalator escalate.Escalator
	resolver  Resolver
	bus       *events.Bus
}

// New creates a coordinator for the given layers.
func New(cfg Config, specs []LayerSpec, deps Dependencies) (*Coordinator, error) {
	if deps.Agent == nil {
		return nil, fmt.Errorf("cycle: agent is required")
	}
	if deps.Reviewer == nil {
		return nil, fmt.Errorf("cycle: reviewer is required")
	}
	if deps.Audit == nil {
		return nil, fmt.Errorf("cycle: audit sink is required")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("cycle: at least one layer is required")
	}

	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Workdir == "" {
		cfg.Workdir = "."
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	c := &Coordinator{
		cfg:       cfg,
		specs:     make([]LayerSpec, len(specs)),
		states:    make([]*LayerState, len(specs)),
		index:     make(map[string]int, len(specs)),
		agent:     deps.Agent,
		reviewer:  deps.Reviewer,
		sink:      deps.Audit,
		escalator: deps.Escalator,
		resolver:  deps.Resolver,
		bus:       deps.Bus,
	}

	copy(c.specs, specs)
	for i := range c.specs {
		spec := &c.specs[i]
		if spec.Name == "" {
			return nil, fmt.Errorf("cycle: layer %d has no name", i)
		}
		if _, dup := c.index[spec.Name]; dup {
			return nil, fmt.Errorf("cycle: duplicate layer %q", spec.Name)
		}
		if spec.Threshold == 0 {
			spec.Threshold = cfg.Threshold
		}
		c.index[spec.Name] = i
		c.states[i] = &LayerState{Layer: spec.Name, Status: StatusQueued}
	}

	return c, nil
}

// RunID returns the run identifier audit entries are recorded under.
func (c *Coordinator) RunID() string {
	return c.cfg.RunID
}

func (c *Coordinator) layerNames() []string {
	names := make([]string, len(c.specs))
	for i, spec := range c.specs {
		names[i] = spec.Name
	}
	return names
}

func (c *Coordinator) emit(evt events.Event) {
	if c.bus != nil {
		c.bus.Emit(evt)
	}
}
