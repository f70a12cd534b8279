package agent

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"time"
)

// CodexAgent implements Agent by invoking the codex CLI as a subprocess
type CodexAgent struct {
	command string
}

// NewCodex creates a codex agent. An empty command defaults to "codex".
func NewCodex(command string) *CodexAgent {
	if command == "" {
		command = "codex"
	}
	return &CodexAgent{command: command}
}

func (a *CodexAgent) Name() string { return "codex" }

// Run executes the task via the codex CLI. Codex has no turn limit
// flag, so Task.MaxTurns is ignored.
func (a *CodexAgent) Run(ctx context.Context, task Task) (*Outcome, error) {
	if task.Instructions == "" {
		return nil, ErrEmptyInstructions
	}
	if task.Workdir == "" {
		return nil, ErrEmptyWorkdir
	}

	cmdCtx := ctx
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, a.command, "exec", task.Instructions)
	cmd.Dir = task.Workdir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	err := cmd.Run()

	outcome := &Outcome{
		Output:   output.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				outcome.ExitCode = status.ExitStatus()
			}
		}

		if cmdCtx.Err() == context.DeadlineExceeded {
			return outcome, ErrTimeout
		}

		return outcome, &ExecutionError{Agent: a.Name(), ExitCode: outcome.ExitCode, Err: err}
	}

	return outcome, nil
}
