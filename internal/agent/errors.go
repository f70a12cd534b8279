package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInstructions indicates Run was called with no instructions
	ErrEmptyInstructions = errors.New("task instructions cannot be empty")

	// ErrEmptyWorkdir indicates Run was called with no working directory
	ErrEmptyWorkdir = errors.New("task working directory cannot be empty")

	// ErrTimeout indicates the agent exceeded the task timeout
	ErrTimeout = errors.New("agent execution timed out")
)

// ExecutionError wraps a non-zero agent exit.
type ExecutionError struct {
	Agent    string
	ExitCode int
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s execution failed (exit %d): %v", e.Agent, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s execution failed (exit %d)", e.Agent, e.ExitCode)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
