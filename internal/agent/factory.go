package agent

import "fmt"

// Config selects and configures the implementer agent.
type Config struct {
	// Provider selects the agent backend ("claude" or "codex")
	Provider string

	// Command overrides the agent binary path
	Command string
}

// FromConfig builds an Agent from configuration.
// An empty provider defaults to claude.
func FromConfig(cfg Config) (Agent, error) {
	switch cfg.Provider {
	case "", "claude":
		return NewClaude(cfg.Command), nil
	case "codex":
		return NewCodex(cfg.Command), nil
	default:
		return nil, fmt.Errorf("unknown agent provider: %q", cfg.Provider)
	}
}
