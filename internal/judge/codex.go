package judge

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// CodexGateway runs judge passes through the Codex CLI.
type CodexGateway struct {
	command string
}

// NewCodex creates a Codex gateway with optional command override.
// If command is empty, defaults to "codex" resolved via PATH.
func NewCodex(command string) *CodexGateway {
	if command == "" {
		command = "codex"
	}
	return &CodexGateway{command: command}
}

// Name returns the gateway identifier used in logs and audit entries.
func (g *CodexGateway) Name() string {
	return "codex"
}

// Judge invokes the Codex CLI in non-interactive exec mode and
// validates the response the same way the Claude gateway does.
func (g *CodexGateway) Judge(ctx context.Context, req Request) (*JudgmentPass, error) {
	prompt := BuildPrompt(req)

	cmd := exec.CommandContext(ctx, g.command, "exec", prompt)
	if req.Workdir != "" {
		cmd.Dir = req.Workdir
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("codex judge pass: %w", ctxErr)
		}
		return nil, fmt.Errorf("codex judge pass failed: %w", err)
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
