package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bailiff-dev/bailiff/internal/config"
	"github.com/bailiff-dev/bailiff/internal/events"
	"github.com/bailiff-dev/bailiff/internal/gate"
	"github.com/bailiff-dev/bailiff/internal/git"
	"github.com/bailiff-dev/bailiff/internal/judge"
	"github.com/bailiff-dev/bailiff/internal/pattern"
	"github.com/bailiff-dev/bailiff/internal/review"
)

// ReviewOptions holds flags for the review command
type ReviewOptions struct {
	Patterns  []string // Restrict scoring to these patterns
	Passes    int      // Judge passes override (0 = config)
	Threshold float64  // Gate threshold override (0 = config)
	JSON      bool     // Emit the full result as JSON
}

// NewReviewCmd creates the review command
func NewReviewCmd(app *App) *cobra.Command {
	var opts ReviewOptions

	cmd := &cobra.Command{
		Use:   "review <path>",
		Short: "Score pending changes under a path against the pattern catalog",
		Long: `Review runs a one-shot evaluation of the pending changes under the given
path. Patterns whose applies_to globs match the path are scored by the
judge; the exit code reflects the gate decision (0 pass, 1 fail).

Staged changes are reviewed when present. With a clean index, review
falls back to the uncommitted working-tree changes. The index is never
modified either way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunReview(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Patterns, "patterns", nil, "Score only the named patterns")
	cmd.Flags().IntVar(&opts.Passes, "passes", 0, "Override the number of judge passes")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "Override the quality gate threshold")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the full result as JSON")

	return cmd
}

// RunReview performs a one-shot evaluation of the target path
func (a *App) RunReview(ctx context.Context, target string, opts ReviewOptions) error {
	wd, err := repoRoot()
	if err != nil {
		return err
	}
	if !git.IsRepo(ctx, wd) {
		return fmt.Errorf("not a git repository: %s", wd)
	}

	cfg, err := config.LoadConfig(wd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Passes > 0 {
		cfg.Review.Passes = opts.Passes
	}
	if opts.Threshold > 0 {
		cfg.Review.Threshold = opts.Threshold
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	names := cfg.Patterns.Active
	if len(opts.Patterns) > 0 {
		names = opts.Patterns
	}
	selected, err := selectPatterns(catalog, names)
	if err != nil {
		return err
	}
	applicable := pattern.Select(selected, target)
	if len(applicable) == 0 {
		return fmt.Errorf("no patterns apply to %s", target)
	}

	diff, files, err := review.CollectInputs(ctx, wd, target)
	if err != nil {
		return err
	}
	if diff == "" && len(files) == 0 {
		// Clean index: review the uncommitted working-tree changes
		// instead. Neither path touches the index.
		diff, files, err = review.CollectWorkdirInputs(ctx, wd, target)
		if err != nil {
			return err
		}
		if diff == "" && len(files) == 0 {
			return fmt.Errorf("no changes under %s", target)
		}
		fmt.Fprintln(os.Stderr, "nothing staged; reviewing uncommitted working-tree changes")
	}

	bus := events.NewBus()
	defer bus.Close()
	if !opts.JSON {
		bus.Subscribe(events.LogHandler(events.LogConfig{Writer: os.Stderr}))
	}

	gateway, err := judge.FromConfig(judge.Config{
		Provider: string(cfg.Judge.Provider),
		Command:  cfg.Judge.Command,
	})
	if err != nil {
		return err
	}
	judgeTimeout, err := cfg.JudgeTimeoutDuration()
	if err != nil {
		return fmt.Errorf("invalid judge timeout: %w", err)
	}

	evaluator := review.New(gateway, review.Options{
		Passes:       cfg.Review.Passes,
		JudgeTimeout: judgeTimeout,
		Bus:          bus,
	})

	result, err := evaluator.Evaluate(ctx, review.Request{
		Layer:    target,
		Target:   target,
		Workdir:  wd,
		Diff:     diff,
		Files:    files,
		Patterns: applicable,
		Thresholds: gate.Thresholds{
			Overall: cfg.Review.Threshold,
			Strict:  cfg.Review.Strict,
		},
	})
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	} else {
		PrintReviewReport(os.Stdout, result)
	}

	if !result.Passed() {
		return fmt.Errorf("review failed: %s", result.Decision.Reasons[0])
	}
	return nil
}
