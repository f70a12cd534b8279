package agent

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

// ClaudeAgent implements Agent by invoking the claude CLI as a subprocess
type ClaudeAgent struct {
	command string
}

// NewClaude creates a claude agent. An empty command defaults to "claude".
func NewClaude(command string) *ClaudeAgent {
	if command == "" {
		command = "claude"
	}
	return &ClaudeAgent{command: command}
}

func (a *ClaudeAgent) Name() string { return "claude" }

// Run executes the task via the claude CLI
func (a *ClaudeAgent) Run(ctx context.Context, task Task) (*Outcome, error) {
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

	cmd := exec.CommandContext(cmdCtx, a.command, a.buildArgs(task)...)
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

// buildArgs constructs the command-line arguments for the claude binary
func (a *ClaudeAgent) buildArgs(task Task) []string {
	args := make([]string, 0, 6)
	args = append(args, "--dangerously-skip-permissions", "-p", task.Instructions)
	if task.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(task.MaxTurns))
	}
	return args
}
