package cli

import (
	"github.com/spf13/cobra"
)

// VersionInfo carries build metadata injected by main via ldflags.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App represents the CLI application with all wired commands
type App struct {
	rootCmd     *cobra.Command
	versionInfo VersionInfo
	verbose     bool
}

// New creates a new CLI application with every command registered
func New() *App {
	app := &App{}
	app.setupRootCmd()
	app.rootCmd.AddCommand(
		NewRunCmd(app),
		NewReviewCmd(app),
		NewPatternsCmd(app),
		NewAuditCmd(app),
		NewVersionCmd(app),
	)
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the build metadata shown by the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "bailiff",
		Short: "Pattern-compliance review and fix-cycle orchestration",
		Long: `Bailiff scores staged changes against declared architectural patterns
using a judge model and drives an implement-review-fix cycle per layer
until the quality gate passes or a human decision is required.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output")
}
