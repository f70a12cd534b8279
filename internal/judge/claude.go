package judge

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ClaudeGateway runs judge passes through the Claude CLI.
type ClaudeGateway struct {
	command string
}

// NewClaude creates a Claude gateway with optional command override.
// If command is empty, defaults to "claude" resolved via PATH.
func NewClaude(command string) *ClaudeGateway {
	if command == "" {
		command = "claude"
	}
	return &ClaudeGateway{command: command}
}

// Name returns the gateway identifier used in logs and audit entries.
func (g *ClaudeGateway) Name() string {
	return "claude"
}

// Judge invokes the Claude CLI with the evaluation prompt and validates
// the response against the pattern's declared tactics and constraints.
func (g *ClaudeGateway) Judge(ctx context.Context, req Request) (*JudgmentPass, error) {
	prompt := BuildPrompt(req)

	// Non-interactive flags prevent hangs:
	// --dangerously-skip-permissions: bypass interactive permission prompts
	// --print: output to stdout instead of interactive mode
	// -p: provide the prompt
	cmd := exec.CommandContext(ctx, g.command,
		"--dangerously-skip-permissions",
		"--print",
		"-p", prompt,
	)
	if req.Workdir != "" {
		cmd.Dir = req.Workdir
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("claude judge pass: %w", ctxErr)
		}
		return nil, fmt.Errorf("claude judge pass failed: %w", err)
	}

	pass, err := ParseAndValidate(string(output), &req.Pattern)
	if err != nil {
		var schemaErr SchemaError
		if errors.As(err, &schemaErr) {
			return nil, &ResponseError{Gateway: g.Name(), Raw: string(output), Err: err}
		}
		return nil, err
	}

	return pass, nil
}
