package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bailiff-dev/bailiff/internal/config"
	"github.com/bailiff-dev/bailiff/internal/pattern"
)

// NewPatternsCmd creates the patterns command group.
func NewPatternsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and validate the pattern catalog",
	}

	cmd.AddCommand(
		newPatternsListCmd(),
		newPatternsShowCmd(),
		newPatternsValidateCmd(),
	)

	return cmd
}

func newPatternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every pattern the catalog resolves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := resolveCatalog()
			if err != nil {
				return err
			}
			if len(catalog) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No patterns found.")
				return nil
			}

			w := cmd.OutOrStdout()
			nameWidth := len("NAME")
			for _, p := range catalog {
				if len(p.Name) > nameWidth {
					nameWidth = len(p.Name)
				}
			}
			fmt.Fprintf(w, "%-*s  %-8s %7s %11s  %s\n",
				nameWidth, "NAME", "VERSION", "TACTICS", "CONSTRAINTS", "APPLIES TO")
			for _, p := range catalog {
				version := p.Version
				if version == "" {
					version = "-"
				}
				fmt.Fprintf(w, "%-*s  %-8s %7d %11d  %s\n",
					nameWidth, p.Name, version, len(p.Tactics), len(p.Constraints), appliesTo(p))
			}
			return nil
		},
	}
}

func newPatternsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a pattern's tactics, rubric anchors, and constraints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := resolveCatalog()
			if err != nil {
				return err
			}
			for i := range catalog {
				if catalog[i].Name == args[0] {
					printPattern(cmd.OutOrStdout(), &catalog[i])
					return nil
				}
			}
			return fmt.Errorf("unknown pattern %q", args[0])
		},
	}
}

func newPatternsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate every pattern file in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) > 0 {
				dir = args[0]
			} else {
				wd, err := repoRoot()
				if err != nil {
					return err
				}
				cfg, err := config.LoadConfig(wd)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				dir = cfg.Patterns.Dir
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("read patterns dir: %w", err)
			}

			var valid int
			var failures []string
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				name := entry.Name()
				if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
					continue
				}
				if strings.HasSuffix(name, ".calibration.yaml") {
					continue
				}
				if _, err := pattern.Load(filepath.Join(dir, name)); err != nil {
					failures = append(failures, fmt.Sprintf("%s: %v", name, err))
					continue
				}
				valid++
			}

			if len(failures) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Pattern validation errors (%d):\n", len(failures))
				for _, f := range failures {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", f)
				}
				return fmt.Errorf("%d of %d pattern files invalid", len(failures), len(failures)+valid)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pattern validation OK (patterns=%d)\n", valid)
			return nil
		},
	}
}

// resolveCatalog loads the merged catalog the run and review commands
// would see: builtins plus the configured pattern directory.
func resolveCatalog() ([]pattern.Pattern, error) {
	wd, err := repoRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(wd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return loadCatalog(cfg)
}

func appliesTo(p pattern.Pattern) string {
	if len(p.AppliesTo) == 0 {
		return "*"
	}
	return strings.Join(p.AppliesTo, ", ")
}

func printPattern(w io.Writer, p *pattern.Pattern) {
	fmt.Fprint(w, p.Name)
	if p.Version != "" {
		fmt.Fprintf(w, " (version %s)", p.Version)
	}
	fmt.Fprintln(w)
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
	if p.Goal != "" {
		fmt.Fprintf(w, "  goal: %s\n", p.Goal)
	}
	if p.GuidingPolicy != "" {
		fmt.Fprintf(w, "  guiding policy: %s\n", p.GuidingPolicy)
	}
	fmt.Fprintf(w, "  applies to: %s\n", appliesTo(*p))

	if len(p.Tactics) > 0 {
		fmt.Fprintf(w, "\nTactics (%d):\n", len(p.Tactics))
		for _, t := range p.Tactics {
			fmt.Fprintf(w, "  [%s] %s", t.Priority, t.ID)
			if t.Title != "" {
				fmt.Fprintf(w, " - %s", t.Title)
			}
			fmt.Fprintln(w)
			if t.Description != "" {
				fmt.Fprintf(w, "      %s\n", t.Description)
			}

			levels := make([]int, 0, len(t.Rubric))
			for level := range t.Rubric {
				levels = append(levels, level)
			}
			sort.Ints(levels)
			for _, level := range levels {
				fmt.Fprintf(w, "      %d: %s\n", level, t.Rubric[level])
			}
		}
	}

	if len(p.Constraints) > 0 {
		fmt.Fprintf(w, "\nConstraints (%d):\n", len(p.Constraints))
		for _, c := range p.Constraints {
			fmt.Fprintf(w, "  %s: %s\n", c.ID, c.Rule)
			if c.Description != "" {
				fmt.Fprintf(w, "      %s\n", c.Description)
			}
			for _, exc := range c.Exceptions {
				fmt.Fprintf(w, "      exception: %s\n", exc)
			}
			if c.Mode == pattern.ModeDeterministic {
				fmt.Fprintln(w, "      mode: deterministic")
			}
		}
	}
}
