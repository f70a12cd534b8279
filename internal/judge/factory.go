package judge

import "fmt"

// Config holds judge gateway configuration
type Config struct {
	// Provider selects the gateway: "claude" or "codex"
	Provider string

	// Command overrides the CLI executable path (empty for PATH lookup)
	Command string
}

// FromConfig creates a Gateway from configuration
func FromConfig(cfg Config) (Gateway, error) {
	switch cfg.Provider {
	case "", "claude":
		return NewClaude(cfg.Command), nil
	case "codex":
		return NewCodex(cfg.Command), nil
	default:
		return nil, fmt.Errorf("unknown judge provider: %s", cfg.Provider)
	}
}
