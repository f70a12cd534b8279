package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestClaudeAgent_ValidationErrors(t *testing.T) {
	a := NewClaude("")
	ctx := context.Background()

	tests := []struct {
		name    string
		task    Task
		wantErr error
	}{
		{
			name:    "empty instructions",
			task:    Task{Instructions: "", Workdir: "/tmp"},
			wantErr: ErrEmptyInstructions,
		},
		{
			name:    "empty workdir",
			task:    Task{Instructions: "do the thing", Workdir: ""},
			wantErr: ErrEmptyWorkdir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Run(ctx, tt.task)
			if err != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClaudeAgent_BuildArgs(t *testing.T) {
	a := NewClaude("")

	tests := []struct {
		name     string
		task     Task
		expected []string
	}{
		{
			name:     "basic task",
			task:     Task{Instructions: "implement the handler"},
			expected: []string{"--dangerously-skip-permissions", "-p", "implement the handler"},
		},
		{
			name:     "with max turns",
			task:     Task{Instructions: "implement the handler", MaxTurns: 5},
			expected: []string{"--dangerously-skip-permissions", "-p", "implement the handler", "--max-turns", "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := a.buildArgs(tt.task)
			if len(args) != len(tt.expected) {
				t.Fatalf("expected %d args, got %d: %v", len(tt.expected), len(args), args)
			}
			for i, arg := range args {
				if arg != tt.expected[i] {
					t.Errorf("arg[%d]: expected %q, got %q", i, tt.expected[i], arg)
				}
			}
		})
	}
}

func TestClaudeAgent_RunCapturesOutput(t *testing.T) {
	// echo accepts arbitrary flags, so the agent's own arguments come
	// back on stdout along with the instructions.
	a := NewClaude("echo")

	outcome, err := a.Run(context.Background(), Task{
		Instructions: "say hello",
		Workdir:      t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", outcome.ExitCode)
	}
	if !strings.Contains(outcome.Output, "say hello") {
		t.Errorf("expected output to contain instructions, got %q", outcome.Output)
	}
	if outcome.Duration <= 0 {
		t.Error("expected positive duration")
	}
}

func TestClaudeAgent_RunNonZeroExit(t *testing.T) {
	a := NewClaude("false")

	outcome, err := a.Run(context.Background(), Task{
		Instructions: "doomed",
		Workdir:      t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %T: %v", err, err)
	}
	if execErr.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", execErr.ExitCode)
	}
	if execErr.Agent != "claude" {
		t.Errorf("expected agent name claude, got %q", execErr.Agent)
	}
	if outcome == nil {
		t.Fatal("expected outcome even on failure")
	}
}

func TestCodexAgent_ValidationErrors(t *testing.T) {
	a := NewCodex("")
	ctx := context.Background()

	if _, err := a.Run(ctx, Task{Workdir: "/tmp"}); err != ErrEmptyInstructions {
		t.Errorf("expected ErrEmptyInstructions, got %v", err)
	}
	if _, err := a.Run(ctx, Task{Instructions: "x"}); err != ErrEmptyWorkdir {
		t.Errorf("expected ErrEmptyWorkdir, got %v", err)
	}
}

func TestExecutionError_Format(t *testing.T) {
	cause := errors.New("exit status 2")
	err := &ExecutionError{Agent: "claude", ExitCode: 2, Err: cause}

	if !strings.Contains(err.Error(), "exit 2") {
		t.Errorf("expected exit code in message, got %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}

	bare := &ExecutionError{Agent: "codex", ExitCode: 3}
	if !strings.Contains(bare.Error(), "codex execution failed (exit 3)") {
		t.Errorf("unexpected bare message: %q", bare.Error())
	}
}

func TestMockAgent(t *testing.T) {
	callCount := 0
	mock := &MockAgent{
		RunFunc: func(ctx context.Context, task Task) (*Outcome, error) {
			callCount++
			return &Outcome{Output: "done"}, nil
		},
	}

	outcome, err := mock.Run(context.Background(), Task{Instructions: "x", Workdir: "/tmp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Output != "done" {
		t.Errorf("expected mock output, got %q", outcome.Output)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestMockAgent_DefaultBehavior(t *testing.T) {
	mock := &MockAgent{}

	outcome, err := mock.Run(context.Background(), Task{Instructions: "x", Workdir: "/tmp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil {
		t.Fatal("expected non-nil outcome")
	}
}
