package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

func validProvider(p ProviderType) bool {
	switch p {
	case "", ProviderClaude, ProviderCodex:
		return true
	}
	return false
}

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error

	// Review.Threshold must be on the 0-5 rubric scale
	if cfg.Review.Threshold < 0 || cfg.Review.Threshold > 5 {
		errs = append(errs, &ValidationError{
			Field:   "review.threshold",
			Value:   cfg.Review.Threshold,
			Message: "must be between 0 and 5",
		})
	}

	// Review.Passes must be >= 1
	if cfg.Review.Passes < 1 {
		errs = append(errs, &ValidationError{
			Field:   "review.passes",
			Value:   cfg.Review.Passes,
			Message: "must be at least 1",
		})
	}

	// Review.MaxIterations must be >= 0 (0 = use the default budget)
	if cfg.Review.MaxIterations < 0 {
		errs = append(errs, &ValidationError{
			Field:   "review.max_iterations",
			Value:   cfg.Review.MaxIterations,
			Message: "must be non-negative (0 = default budget)",
		})
	}

	// Review.Timeout must be valid Go duration string
	if _, err := time.ParseDuration(cfg.Review.Timeout); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "review.timeout",
			Value:   cfg.Review.Timeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	// Judge.Provider must be a known provider
	if !validProvider(cfg.Judge.Provider) {
		errs = append(errs, &ValidationError{
			Field:   "judge.provider",
			Value:   cfg.Judge.Provider,
			Message: "must be 'claude' or 'codex'",
		})
	}

	// Judge.Timeout must be valid Go duration string
	if _, err := time.ParseDuration(cfg.Judge.Timeout); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "judge.timeout",
			Value:   cfg.Judge.Timeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	// Agent.Provider must be a known provider
	if !validProvider(cfg.Agent.Provider) {
		errs = append(errs, &ValidationError{
			Field:   "agent.provider",
			Value:   cfg.Agent.Provider,
			Message: "must be 'claude' or 'codex'",
		})
	}

	// Agent.MaxTurns must be >= 0 (0 = unlimited)
	if cfg.Agent.MaxTurns < 0 {
		errs = append(errs, &ValidationError{
			Field:   "agent.max_turns",
			Value:   cfg.Agent.MaxTurns,
			Message: "must be non-negative (0 = unlimited)",
		})
	}

	// Agent.Timeout must be valid Go duration string
	if _, err := time.ParseDuration(cfg.Agent.Timeout); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "agent.timeout",
			Value:   cfg.Agent.Timeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	// Audit.Backend must be one of: jsonl, sqlite, both
	switch cfg.Audit.Backend {
	case "jsonl", "sqlite", "both":
	default:
		errs = append(errs, &ValidationError{
			Field:   "audit.backend",
			Value:   cfg.Audit.Backend,
			Message: "must be one of: jsonl, sqlite, both",
		})
	}

	// Escalation backends must be known and configured
	for i, backend := range cfg.Escalation.Backends {
		switch backend {
		case "terminal":
		case "slack":
			if cfg.Escalation.SlackWebhook == "" {
				errs = append(errs, &ValidationError{
					Field:   "escalation.slack_webhook",
					Value:   "",
					Message: "required when slack backend is enabled",
				})
			}
		case "webhook":
			if cfg.Escalation.WebhookURL == "" {
				errs = append(errs, &ValidationError{
					Field:   "escalation.webhook_url",
					Value:   "",
					Message: "required when webhook backend is enabled",
				})
			}
		default:
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("escalation.backends[%d]", i),
				Value:   backend,
				Message: "must be one of: terminal, slack, webhook",
			})
		}
	}

	// Log.Level must be one of: debug, info, warn, error (case-sensitive)
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, &ValidationError{
			Field:   "log.level",
			Value:   cfg.Log.Level,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
