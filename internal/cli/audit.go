package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bailiff-dev/bailiff/internal/audit"
	"github.com/bailiff-dev/bailiff/internal/config"
)

// NewAuditCmd creates the audit command
func NewAuditCmd(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "audit <run-id>",
		Short: "Show the control handoff trail for a run",
		Long: `Audit prints every recorded handoff of a run in append order: who
acted, who acted next, and why. The trail survives crashes because
entries are written before each transition takes effect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ShowAudit(cmd.Context(), args[0], jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as JSON lines")

	return cmd
}

// ShowAudit prints a run's audit trail
func (a *App) ShowAudit(ctx context.Context, runID string, jsonOut bool) error {
	wd, err := repoRoot()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(wd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sink, err := openAuditSink(cfg)
	if err != nil {
		return fmt.Errorf("failed to open audit sink: %w", err)
	}
	defer sink.Close()

	entries, err := sink.List(ctx, runID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no audit entries for run %q", runID)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return fmt.Errorf("encode entry: %w", err)
			}
		}
		return nil
	}

	printAuditTrail(os.Stdout, runID, entries)
	return nil
}

func printAuditTrail(w io.Writer, runID string, entries []audit.Entry) {
	fmt.Fprintf(w, "Run %s (%d entries, started %s)\n\n",
		runID, len(entries), entries[0].Time.Format("2006-01-02 15:04 MST"))

	layerWidth := 1
	for _, e := range entries {
		if len(e.Layer) > layerWidth {
			layerWidth = len(e.Layer)
		}
	}

	for _, e := range entries {
		layer := e.Layer
		if layer == "" {
			layer = "-"
		}
		fmt.Fprintf(w, "%s  %-11s → %-11s  %-*s  %s\n",
			e.Time.Format("15:04:05"), e.FromActor, e.ToActor, layerWidth, layer, e.Summary)

		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "          %s=%s\n", k, e.Details[k])
		}
	}
}
