package config

const (
	DefaultThreshold     = 4.0
	DefaultJudgePasses   = 3
	DefaultMaxIterations = 3
	DefaultReviewTimeout = "30m"
	DefaultJudgeTimeout  = "5m"
	DefaultAgentTimeout  = "15m"
	DefaultAgentMaxTurns = 0 // unlimited
	DefaultPatternsDir   = ".bailiff/patterns"
	DefaultAuditBackend  = "jsonl"
	DefaultAuditDir      = ".bailiff/audit"
	DefaultAuditDBPath   = ".bailiff/audit.db"
	DefaultLogLevel      = "info"
)

// DefaultProviderType is the default provider when none is specified
var DefaultProviderType = ProviderClaude

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		Review: ReviewConfig{
			Threshold:     DefaultThreshold,
			Passes:        DefaultJudgePasses,
			MaxIterations: DefaultMaxIterations,
			Timeout:       DefaultReviewTimeout,
		},
		Judge: JudgeConfig{
			Provider: DefaultProviderType,
			Timeout:  DefaultJudgeTimeout,
		},
		Agent: AgentConfig{
			Provider: DefaultProviderType,
			MaxTurns: DefaultAgentMaxTurns,
			Timeout:  DefaultAgentTimeout,
		},
		Patterns: PatternsConfig{
			Dir:            DefaultPatternsDir,
			IncludeBuiltin: true,
		},
		Audit: AuditConfig{
			Backend: DefaultAuditBackend,
			Dir:     DefaultAuditDir,
			DBPath:  DefaultAuditDBPath,
		},
		Commit: CommitConfig{
			Enabled:  true,
			NoVerify: true,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}
