package agent

import (
	"context"
	"time"
)

// Task is a unit of work dispatched to an implementer agent.
type Task struct {
	// Instructions is the full prompt describing what to build or fix
	Instructions string

	// Workdir is the repository directory the agent operates in
	Workdir string

	// MaxTurns limits the number of agent conversation turns (0 = provider default)
	MaxTurns int

	// Timeout specifies the maximum execution time (0 = no limit)
	Timeout time.Duration
}

// Outcome contains the result of an agent invocation
type Outcome struct {
	// Output is the combined stdout/stderr of the agent process
	Output string

	// ExitCode is the process exit code
	ExitCode int

	// Duration is how long the invocation took
	Duration time.Duration
}

// Agent dispatches implementation and fix tasks to a coding agent.
type Agent interface {
	// Run executes the task and blocks until the agent finishes
	Run(ctx context.Context, task Task) (*Outcome, error)

	// Name identifies the agent provider
	Name() string
}

// MockAgent is a test implementation of Agent
type MockAgent struct {
	// RunFunc is called when Run is invoked
	RunFunc func(ctx context.Context, task Task) (*Outcome, error)
}

func (m *MockAgent) Run(ctx context.Context, task Task) (*Outcome, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, task)
	}
	return &Outcome{}, nil
}

func (m *MockAgent) Name() string { return "mock" }
