package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/branding"
	"github.com/pyboot-dev/pyboot/internal/config"
	"github.com/pyboot-dev/pyboot/internal/sysdeps"
	"github.com/pyboot-dev/pyboot/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` takes a Python project from bare checkout to running process:
it provisions system build dependencies, creates a virtual environment,
installs the project's requirements into it, and launches the entry point
with the environment activated. Every step is checked; the first failure
stops the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetReportTimestamp(false)
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		config.Load()

		parts := strings.Fields(cmd.CommandPath())
		group := ""
		if len(parts) > 1 {
			group = parts[1]
		}

		// Upgrade manages its own version state; the others must keep
		// their output clean.
		switch group {
		case "upgrade", "version", "completion", "help":
			return
		}

		// Non-blocking banner from cached version check.
		u := updater.New(buildVersion)
		u.CheckAndPrintBanner(os.Stderr, config.Dir())

		// Skip the staleness notice for commands that manage the stamp
		// themselves or emit machine-readable output.
		switch group {
		case "provision", "up", "init", "config", "env", "clean":
			return
		}

		// Only nag once a stamp exists: a missing stamp means provisioning
		// never ran, and the provision errors already point there.
		if !sysdeps.ReadStamp().IsZero() && sysdeps.IsStale(sysdeps.DefaultMaxAge) {
			fmt.Fprintf(os.Stderr, "System packages were last provisioned over 7 days ago. Run '%s provision --update'.\n", branding.CLIName())
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func versionString() string {
	if buildVersion == "dev" || buildVersion == "" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", buildVersion, buildCommit, buildDate)
}

// Execute runs the root command with build info injected via ldflags.
// ExitError values travel back to main, which exits with their code.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
}
