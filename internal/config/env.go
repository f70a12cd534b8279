package config

import (
	"os"
	"strconv"
)

// envOverrides maps environment variables to config field setters.
// Numeric values that fail to parse leave the existing value in place.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "BAILIFF_THRESHOLD",
		apply: func(c *Config, v string) {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Review.Threshold = f
			}
		},
	},
	{
		envVar: "BAILIFF_MAX_ITERATIONS",
		apply: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.Review.MaxIterations = n
			}
		},
	},
	{
		envVar: "BAILIFF_JUDGE_PASSES",
		apply: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.Review.Passes = n
			}
		},
	},
	{
		envVar: "BAILIFF_JUDGE_PROVIDER",
		apply: func(c *Config, v string) {
			c.Judge.Provider = ProviderType(v)
		},
	},
	{
		envVar: "BAILIFF_JUDGE_CMD",
		apply: func(c *Config, v string) {
			c.Judge.Command = v
		},
	},
	{
		envVar: "BAILIFF_AGENT_PROVIDER",
		apply: func(c *Config, v string) {
			c.Agent.Provider = ProviderType(v)
		},
	},
	{
		envVar: "BAILIFF_AGENT_CMD",
		apply: func(c *Config, v string) {
			c.Agent.Command = v
		},
	},
	{
		envVar: "BAILIFF_AUDIT_BACKEND",
		apply: func(c *Config, v string) {
			c.Audit.Backend = v
		},
	},
	{
		envVar: "BAILIFF_PATTERNS_DIR",
		apply: func(c *Config, v string) {
			c.Patterns.Dir = v
		},
	},
	{
		envVar: "BAILIFF_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.Log.Level = v
		},
	},
	{
		envVar: "BAILIFF_LOG_FILE",
		apply: func(c *Config, v string) {
			c.Log.File = v
		},
	},
	{
		envVar: "BAILIFF_NO_TUI",
		apply: func(c *Config, v string) {
			if b, err := strconv.ParseBool(v); err == nil {
				c.NoTUI = b
			}
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
