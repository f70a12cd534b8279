package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a file with the given content for testing
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Review.Threshold != DefaultThreshold {
		t.Errorf("expected Review.Threshold to be %v, got %v", DefaultThreshold, cfg.Review.Threshold)
	}
	if cfg.Review.Strict {
		t.Error("expected Review.Strict to default to false")
	}
	if cfg.Review.Passes != DefaultJudgePasses {
		t.Errorf("expected Review.Passes to be %d, got %d", DefaultJudgePasses, cfg.Review.Passes)
	}
	if cfg.Review.MaxIterations != DefaultMaxIterations {
		t.Errorf("expected Review.MaxIterations to be %d, got %d", DefaultMaxIterations, cfg.Review.MaxIterations)
	}
	if cfg.Judge.Provider != ProviderClaude {
		t.Errorf("expected Judge.Provider to be claude, got %q", cfg.Judge.Provider)
	}
	if cfg.Agent.Provider != ProviderClaude {
		t.Errorf("expected Agent.Provider to be claude, got %q", cfg.Agent.Provider)
	}

	expectedPatterns := filepath.Join(dir, DefaultPatternsDir)
	if cfg.Patterns.Dir != expectedPatterns {
		t.Errorf("expected Patterns.Dir to be %q, got %q", expectedPatterns, cfg.Patterns.Dir)
	}
	if !cfg.Patterns.IncludeBuiltin {
		t.Error("expected Patterns.IncludeBuiltin to default to true")
	}

	expectedAuditDir := filepath.Join(dir, DefaultAuditDir)
	if cfg.Audit.Dir != expectedAuditDir {
		t.Errorf("expected Audit.Dir to be %q, got %q", expectedAuditDir, cfg.Audit.Dir)
	}
	if cfg.Audit.Backend != DefaultAuditBackend {
		t.Errorf("expected Audit.Backend to be %q, got %q", DefaultAuditBackend, cfg.Audit.Backend)
	}

	if !cfg.Commit.Enabled {
		t.Error("expected Commit.Enabled to default to true")
	}
	if !cfg.Commit.NoVerify {
		t.Error("expected Commit.NoVerify to default to true")
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("expected Log.Level to be %q, got %q", DefaultLogLevel, cfg.Log.Level)
	}
}

func TestLoadConfig_FileOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".bailiff.yaml"), `
review:
  threshold: 3.5
  strict: true
  passes: 5
  max_iterations: 2
  timeout: 1h
judge:
  provider: codex
  command: /opt/codex
agent:
  max_turns: 20
escalation:
  backends: [terminal, slack]
  slack_webhook: https://hooks.slack.com/services/xxx
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Review.Threshold != 3.5 {
		t.Errorf("expected threshold 3.5, got %v", cfg.Review.Threshold)
	}
	if !cfg.Review.Strict {
		t.Error("expected strict mode from file")
	}
	if cfg.Review.Passes != 5 {
		t.Errorf("expected 5 passes, got %d", cfg.Review.Passes)
	}
	if cfg.Review.MaxIterations != 2 {
		t.Errorf("expected 2 max iterations, got %d", cfg.Review.MaxIterations)
	}
	if cfg.Judge.Provider != ProviderCodex {
		t.Errorf("expected codex judge, got %q", cfg.Judge.Provider)
	}
	if cfg.Judge.Command != "/opt/codex" {
		t.Errorf("expected judge command override, got %q", cfg.Judge.Command)
	}
	if cfg.Agent.MaxTurns != 20 {
		t.Errorf("expected agent max turns 20, got %d", cfg.Agent.MaxTurns)
	}
	if len(cfg.Escalation.Backends) != 2 {
		t.Errorf("expected 2 escalation backends, got %v", cfg.Escalation.Backends)
	}

	// Unset fields keep their defaults
	if cfg.Agent.Provider != ProviderClaude {
		t.Errorf("expected default agent provider, got %q", cfg.Agent.Provider)
	}
	if cfg.Judge.Timeout != DefaultJudgeTimeout {
		t.Errorf("expected default judge timeout, got %q", cfg.Judge.Timeout)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".bailiff.yaml"), "review: [not: a: mapping")

	_, err := LoadConfig(dir)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".bailiff.yaml"), "review:\n  threshold: 3.0\n")
	t.Setenv("BAILIFF_THRESHOLD", "4.5")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Review.Threshold != 4.5 {
		t.Errorf("expected env to override file, got %v", cfg.Review.Threshold)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".bailiff.yaml"), "log:\n  level: loud\n")

	_, err := LoadConfig(dir)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "log.level") {
		t.Errorf("error should name log.level, got: %v", err)
	}
}

func TestLoadConfig_AbsolutePathsPreserved(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".bailiff.yaml"), `
patterns:
  dir: /etc/bailiff/patterns
audit:
  db_path: /var/lib/bailiff/audit.db
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Patterns.Dir != "/etc/bailiff/patterns" {
		t.Errorf("expected absolute patterns dir preserved, got %q", cfg.Patterns.Dir)
	}
	if cfg.Audit.DBPath != "/var/lib/bailiff/audit.db" {
		t.Errorf("expected absolute db path preserved, got %q", cfg.Audit.DBPath)
	}
}

func TestTimeoutDurations(t *testing.T) {
	cfg := DefaultConfig()

	if _, err := cfg.ReviewTimeoutDuration(); err != nil {
		t.Errorf("default review timeout should parse: %v", err)
	}
	if _, err := cfg.JudgeTimeoutDuration(); err != nil {
		t.Errorf("default judge timeout should parse: %v", err)
	}
	if _, err := cfg.AgentTimeoutDuration(); err != nil {
		t.Errorf("default agent timeout should parse: %v", err)
	}

	cfg.Judge.Timeout = "soon"
	if _, err := cfg.JudgeTimeoutDuration(); err == nil {
		t.Error("expected error for unparseable timeout")
	}
}
