package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ProviderType represents a supported CLI backend for judging and implementing.
type ProviderType string

const (
	ProviderClaude ProviderType = "claude"
	ProviderCodex  ProviderType = "codex"
)

// ReviewConfig controls scoring thresholds and the fix cycle.
type ReviewConfig struct {
	// Threshold is the minimum combined score a review must reach
	Threshold float64 `yaml:"threshold"`

	// Strict requires the combined score to strictly exceed the threshold
	Strict bool `yaml:"strict"`

	// Passes is the number of independent judge passes per pattern
	Passes int `yaml:"passes"`

	// MaxIterations limits fix attempts per layer before escalation.
	// Zero or negative falls back to the default budget of 3.
	MaxIterations int `yaml:"max_iterations"`

	// Timeout bounds a full review (all patterns, all passes)
	Timeout string `yaml:"timeout"`
}

// JudgeConfig selects and configures the scoring judge.
type JudgeConfig struct {
	// Provider is "claude" (default) or "codex"
	Provider ProviderType `yaml:"provider"`

	// Command overrides the judge CLI binary path
	Command string `yaml:"command,omitempty"`

	// Timeout bounds a single judge pass
	Timeout string `yaml:"timeout"`
}

// AgentConfig selects and configures the implementer agent.
type AgentConfig struct {
	// Provider is "claude" (default) or "codex"
	Provider ProviderType `yaml:"provider"`

	// Command overrides the agent CLI binary path
	Command string `yaml:"command,omitempty"`

	// MaxTurns limits the agent's conversation turns (0 = unlimited)
	MaxTurns int `yaml:"max_turns"`

	// Timeout bounds a single implement or fix task
	Timeout string `yaml:"timeout"`
}

// PatternsConfig controls where pattern declarations are loaded from.
type PatternsConfig struct {
	// Dir is the directory containing pattern YAML files.
	// Relative paths are resolved from the repository root.
	Dir string `yaml:"dir"`

	// Active restricts scoring to the named patterns (empty = all loaded)
	Active []string `yaml:"active,omitempty"`

	// IncludeBuiltin adds the embedded pattern catalog to the loaded set
	IncludeBuiltin bool `yaml:"include_builtin"`
}

// AuditConfig controls where the handoff trail is written.
type AuditConfig struct {
	// Backend is "jsonl" (default), "sqlite", or "both"
	Backend string `yaml:"backend"`

	// Dir is the directory for JSONL audit files.
	// Relative paths are resolved from the repository root.
	Dir string `yaml:"dir"`

	// DBPath is the SQLite database path.
	// Relative paths are resolved from the repository root.
	DBPath string `yaml:"db_path"`
}

// EscalationConfig controls how humans are notified.
type EscalationConfig struct {
	// Backends lists enabled notifiers: terminal, slack, webhook
	Backends []string `yaml:"backends"`

	// SlackWebhook is the Slack incoming-webhook URL (required for slack)
	SlackWebhook string `yaml:"slack_webhook,omitempty"`

	// WebhookURL is the generic HTTP endpoint (required for webhook)
	WebhookURL string `yaml:"webhook_url,omitempty"`
}

// CommitConfig controls the commit made after a layer passes review.
type CommitConfig struct {
	// Enabled turns on per-layer commits
	Enabled bool `yaml:"enabled"`

	// NoVerify skips pre-commit hooks on those commits
	NoVerify bool `yaml:"no_verify"`
}

// LogConfig controls event output.
type LogConfig struct {
	// Level controls log verbosity (debug, info, warn, error)
	Level string `yaml:"level"`

	// File, when set, receives an NDJSON event stream in addition
	// to terminal output
	File string `yaml:"file,omitempty"`
}

// Config holds all configuration for a bailiff run.
// It is immutable after creation via LoadConfig().
type Config struct {
	// Review contains thresholds and fix-cycle settings
	Review ReviewConfig `yaml:"review"`

	// Judge contains judge provider settings
	Judge JudgeConfig `yaml:"judge"`

	// Agent contains implementer agent settings
	Agent AgentConfig `yaml:"agent"`

	// Patterns contains pattern catalog settings
	Patterns PatternsConfig `yaml:"patterns"`

	// Audit contains handoff-trail settings
	Audit AuditConfig `yaml:"audit"`

	// Escalation contains human-notification settings
	Escalation EscalationConfig `yaml:"escalation"`

	// Commit contains per-layer commit settings
	Commit CommitConfig `yaml:"commit"`

	// Log contains event output settings
	Log LogConfig `yaml:"log"`

	// NoTUI forces plain log output even on a terminal
	NoTUI bool `yaml:"no_tui"`
}

// ReviewTimeoutDuration parses the review timeout as a Duration.
func (c *Config) ReviewTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Review.Timeout)
}

// JudgeTimeoutDuration parses the judge pass timeout as a Duration.
func (c *Config) JudgeTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Judge.Timeout)
}

// AgentTimeoutDuration parses the agent task timeout as a Duration.
func (c *Config) AgentTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Agent.Timeout)
}

// LoadConfig loads configuration from the repository root.
// It applies defaults, then file values, then environment overrides,
// then resolves relative paths and validates.
//
// Parameters:
//   - repoRoot: absolute path to the repository root directory
//
// Returns the validated Config or an error if validation fails.
func LoadConfig(repoRoot string) (*Config, error) {
	cfg := DefaultConfig()

	// Try to load config file (optional)
	configPath := filepath.Join(repoRoot, ".bailiff.yaml")
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	// Note: missing config file is not an error (use defaults)

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Resolve relative paths
	if !filepath.IsAbs(cfg.Patterns.Dir) {
		cfg.Patterns.Dir = filepath.Join(repoRoot, cfg.Patterns.Dir)
	}
	if !filepath.IsAbs(cfg.Audit.Dir) {
		cfg.Audit.Dir = filepath.Join(repoRoot, cfg.Audit.Dir)
	}
	if !filepath.IsAbs(cfg.Audit.DBPath) {
		cfg.Audit.DBPath = filepath.Join(repoRoot, cfg.Audit.DBPath)
	}

	// Validate
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
