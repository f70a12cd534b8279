package escalate

import "fmt"

// Config holds escalation configuration
type Config struct {
	Backends     []string
	SlackWebhook string
	WebhookURL   string
}

// FromConfig creates an Escalator from configuration. With no backends
// configured it falls back to the terminal, so blocked layers are never
// silently parked.
func FromConfig(cfg Config) (Escalator, error) {
	var escalators []Escalator
	seen := map[string]bool{}

	for _, backend := range cfg.Backends {
		if seen[backend] {
			continue
		}
		seen[backend] = true

		switch backend {
		case "terminal":
			escalators = append(escalators, NewTerminal())
		case "slack":
			if cfg.SlackWebhook == "" {
				return nil, fmt.Errorf("slack backend requires escalation.slack_webhook")
			}
			escalators = append(escalators, NewSlack(cfg.SlackWebhook))
		case "webhook":
			if cfg.WebhookURL == "" {
				return nil, fmt.Errorf("webhook backend requires escalation.webhook_url")
			}
			escalators = append(escalators, NewWebhook(cfg.WebhookURL))
		default:
			return nil, fmt.Errorf("unknown escalation backend: %q", backend)
		}
	}

	if len(escalators) == 0 {
		return NewTerminal(), nil
	}
	if len(escalators) == 1 {
		return escalators[0], nil
	}
	return NewMulti(escalators...), nil
}
