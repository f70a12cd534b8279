package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bailiff-dev/bailiff/internal/agent"
	"github.com/bailiff-dev/bailiff/internal/cli/tui"
	"github.com/bailiff-dev/bailiff/internal/config"
	"github.com/bailiff-dev/bailiff/internal/cycle"
	"github.com/bailiff-dev/bailiff/internal/escalate"
	"github.com/bailiff-dev/bailiff/internal/events"
	"github.com/bailiff-dev/bailiff/internal/git"
	"github.com/bailiff-dev/bailiff/internal/judge"
	"github.com/bailiff-dev/bailiff/internal/plan"
	"github.com/bailiff-dev/bailiff/internal/review"
)

// RunOptions holds flags for the run command
type RunOptions struct {
	Plan          string  // Path to the plan file (default: plan.md)
	Threshold     float64 // Quality gate override (0 = config)
	MaxIterations int     // Fix budget override (0 = config)
	NoTUI         bool    // Disable TUI even when stdout is a TTY
}

// Validate checks RunOptions for validity
func (opts RunOptions) Validate() error {
	if opts.Plan == "" {
		return fmt.Errorf("plan path must not be empty")
	}
	if opts.Threshold < 0 || opts.Threshold > 5 {
		return fmt.Errorf("threshold must be between 0 and 5, got %.2f", opts.Threshold)
	}
	if opts.MaxIterations < 0 {
		return fmt.Errorf("max-iterations must not be negative, got %d", opts.MaxIterations)
	}
	return nil
}

// NewRunCmd creates the run command
func NewRunCmd(app *App) *cobra.Command {
	opts := RunOptions{
		Plan: "plan.md",
	}

	cmd := &cobra.Command{
		Use:   "run [plan-file]",
		Short: "Drive every layer of the plan through the implement-review-fix cycle",
		Long: `Run reads the plan's ordered layers and drives each one through
implementation, judged review, and bounded fix attempts. A layer that
passes the quality gate is committed; a layer that exhausts its fix
budget escalates for a human decision before the run continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Plan = args[0]
			}

			if err := opts.Validate(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				os.Exit(2)
			}

			return app.RunCycle(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Plan, "plan", "plan.md", "Plan file with layer frontmatter")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "Override the quality gate threshold")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "Override the per-layer fix budget")
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Disable interactive TUI (plain event log)")

	return cmd
}

// RunCycle wires the coordinator and executes the full run
func (a *App) RunCycle(ctx context.Context, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	handler := NewSignalHandler(cancel)
	handler.OnShutdown(func() {
		fmt.Fprintln(os.Stderr, "\nCancelling run...")
	})
	handler.Start()
	defer handler.Stop()

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

	runPlan, err := plan.Load(opts.Plan)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}

	// Threshold precedence: flag, then plan frontmatter, then config.
	if runPlan.Threshold != nil {
		cfg.Review.Threshold = *runPlan.Threshold
	}
	if opts.Threshold > 0 {
		cfg.Review.Threshold = opts.Threshold
	}
	if opts.MaxIterations > 0 {
		cfg.Review.MaxIterations = opts.MaxIterations
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	specs, err := layerSpecs(runPlan, catalog, cfg)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	defer bus.Close()

	if cfg.Log.File != "" {
		logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()
		bus.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(logFile)))
	}

	useTUI := !opts.NoTUI && !cfg.NoTUI && term.IsTerminal(int(os.Stdout.Fd()))

	var resolver cycle.Resolver
	var bridge *tui.Bridge
	tuiDone := make(chan struct{})
	if useTUI {
		program := tea.NewProgram(tui.NewModel(runPlan.Feature), tea.WithAltScreen())
		bridge = tui.NewBridge(program)
		bus.Subscribe(bridge.Handler())
		bus.Subscribe(events.LogHandler(events.LogConfig{
			Writer:     tui.NewLogWriter(program),
			TimeFormat: "15:04:05",
		}))
		resolver = bridge

		go func() {
			defer close(tuiDone)
			if _, err := program.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			}
		}()
	} else {
		close(tuiDone)
		bus.Subscribe(events.LogHandler(events.LogConfig{Writer: os.Stderr, IncludePayload: a.verbose}))
		// Piped stdout gets the machine-readable stream; the human log
		// above stays on stderr either way.
		if events.IsJSONMode(false) {
			bus.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(os.Stdout)))
		}
		resolver = NewTerminalResolver(os.Stdin, os.Stderr)
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

	implementer, err := agent.FromConfig(agent.Config{
		Provider: string(cfg.Agent.Provider),
		Command:  cfg.Agent.Command,
	})
	if err != nil {
		return err
	}
	agentTimeout, err := cfg.AgentTimeoutDuration()
	if err != nil {
		return fmt.Errorf("invalid agent timeout: %w", err)
	}

	sink, err := openAuditSink(cfg)
	if err != nil {
		return fmt.Errorf("failed to open audit sink: %w", err)
	}
	defer sink.Close()

	escalator, err := escalate.FromConfig(escalate.Config{
		Backends:     cfg.Escalation.Backends,
		SlackWebhook: cfg.Escalation.SlackWebhook,
		WebhookURL:   cfg.Escalation.WebhookURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create escalator: %w", err)
	}

	coordinator, err := cycle.New(cycle.Config{
		Workdir:        wd,
		Feature:        runPlan.Feature,
		Brief:          runPlan.Body,
		Threshold:      cfg.Review.Threshold,
		Strict:         cfg.Review.Strict,
		MaxIterations:  cfg.Review.MaxIterations,
		AgentMaxTurns:  cfg.Agent.MaxTurns,
		AgentTimeout:   agentTimeout,
		CommitEnabled:  cfg.Commit.Enabled,
		CommitNoVerify: cfg.Commit.NoVerify,
	}, specs, cycle.Dependencies{
		Agent:     implementer,
		Reviewer:  evaluator,
		Audit:     sink,
		Escalator: escalator,
		Resolver:  resolver,
		Bus:       bus,
	})
	if err != nil {
		return err
	}

	result, runErr := coordinator.Run(ctx)

	// Leave the alt screen before printing the summary.
	if bridge != nil {
		bridge.SendDone()
	}
	<-tuiDone

	// Keep stdout parseable when the event stream goes there.
	summaryOut := io.Writer(os.Stdout)
	if !useTUI && events.IsJSONMode(false) {
		summaryOut = os.Stderr
	}
	PrintRunSummary(summaryOut, result)
	return runErr
}
