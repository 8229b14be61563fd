package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/bootstrap"
	"github.com/pyboot-dev/pyboot/internal/sysdeps"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

var (
	upSkipProvision bool
	upSkipInstall   bool
	upNoLaunch      bool
	upRecreate      bool
	upYes           bool
	upDryRun        bool
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Provision, build, install, and launch in one go",
	Long: `Bring the project up from a bare checkout: install system build
dependencies, create the virtual environment, install Python
dependencies, and launch the entry point. Each phase runs only when the
one before it succeeded. The process exits with the entry point's exit
code.`,
	RunE: runUp,
}

func init() {
	upCmd.Flags().BoolVar(&upSkipProvision, "skip-provision", false, "do not install system packages")
	upCmd.Flags().BoolVar(&upSkipInstall, "skip-install", false, "do not install Python dependencies")
	upCmd.Flags().BoolVar(&upNoLaunch, "no-launch", false, "prepare everything but do not launch the entry point")
	upCmd.Flags().BoolVar(&upRecreate, "recreate", false, "rebuild the virtual environment from scratch")
	upCmd.Flags().BoolVarP(&upYes, "yes", "y", false, "skip the provisioning confirmation prompt")
	upCmd.Flags().BoolVar(&upDryRun, "dry-run", false, "print the planned steps without running them")
	rootCmd.AddCommand(upCmd)
}

// childExitError marks a launch step that ran but exited non-zero.
type childExitError struct {
	Code int
}

func (e *childExitError) Error() string {
	return fmt.Sprintf("entry point exited with status %d", e.Code)
}

func runUp(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	p, err := loadProject()
	if err != nil {
		return err
	}

	var plan *sysdeps.Plan
	if !upSkipProvision {
		plan, err = resolveProvision(p, true)
		if err != nil {
			return err
		}
	}

	files, specs, err := resolveInstallSources(p, nil)
	if err != nil {
		return err
	}

	if upDryRun {
		printUpPlan(out, p, plan, files, specs)
		return nil
	}

	if plan != nil {
		fmt.Fprintf(out, "Provisioning with %s:\n", plan.Manager.Name)
		for _, argv := range plan.Commands() {
			fmt.Fprintf(out, "  %s\n", strings.Join(argv, " "))
		}
		if !upYes && !confirm(cmd, "Proceed with provisioning?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	var pipe bootstrap.Pipeline

	if plan != nil {
		pipe.Add("provision", func(ctx context.Context) error {
			if err := plan.Run(ctx, out, cmd.ErrOrStderr()); err != nil {
				return err
			}
			sysdeps.WriteStamp()
			return nil
		})
	} else {
		pipe.Skip("provision")
	}

	pipe.Add("venv", func(ctx context.Context) error {
		py, err := p.findInterpreter(ctx)
		if err != nil {
			return err
		}
		if err := venv.Create(ctx, p.VenvDir, venv.CreateOptions{
			Python:             py.Path,
			Prompt:             venvPromptFor(p),
			SystemSitePackages: p.Manifest.Venv.SystemSitePackages,
			Recreate:           upRecreate,
		}); err != nil {
			return err
		}
		if _, err := venv.EnsureIgnored(p.Dir, p.VenvDir); err != nil {
			log.Warn("could not update .gitignore", "err", err)
		}
		return nil
	})

	if upSkipInstall || len(files) == 0 && len(specs) == 0 {
		pipe.Skip("install")
	} else {
		pipe.Add("install", func(ctx context.Context) error {
			return installDependencies(cmd, p, files, specs, false, false)
		})
	}

	if upNoLaunch {
		pipe.Skip("launch")
	} else {
		pipe.Add("launch", func(ctx context.Context) error {
			code, err := launchProject(cmd, p, p.entrypointPath(), p.Manifest.Args, nil, nil)
			if err != nil {
				return err
			}
			if code != 0 {
				return &childExitError{Code: code}
			}
			return nil
		})
	}

	runErr := pipe.Run(cmd.Context())
	pipe.Summary(out)
	if runErr != nil {
		var child *childExitError
		if errors.As(runErr, &child) {
			return &ExitError{Code: child.Code}
		}
		return runErr
	}
	return nil
}

// printUpPlan writes the dry-run view of what up would do.
func printUpPlan(w io.Writer, p *project, plan *sysdeps.Plan, files, specs []string) {
	fmt.Fprintln(w, "Planned steps:")

	switch {
	case upSkipProvision:
		fmt.Fprintln(w, "  provision: disabled (--skip-provision)")
	case plan == nil:
		fmt.Fprintln(w, "  provision: nothing to do")
	default:
		for _, argv := range plan.Commands() {
			fmt.Fprintf(w, "  provision: %s\n", strings.Join(argv, " "))
		}
	}

	if st := venv.Inspect(p.VenvDir); st.Healthy && !upRecreate {
		fmt.Fprintf(w, "  venv: %s already healthy\n", p.VenvDir)
	} else {
		binary := p.Manifest.Python.Binary
		if binary == "" {
			binary = "python3"
		}
		fmt.Fprintf(w, "  venv: %s -m venv %s\n", binary, p.VenvDir)
	}

	switch {
	case upSkipInstall:
		fmt.Fprintln(w, "  install: disabled (--skip-install)")
	case len(files) == 0 && len(specs) == 0:
		fmt.Fprintln(w, "  install: nothing to do")
	default:
		for _, f := range files {
			fmt.Fprintf(w, "  install: pip install -r %s\n", displayPath(f, p.Dir))
		}
		if len(specs) > 0 {
			fmt.Fprintf(w, "  install: pip install %s\n", strings.Join(specs, " "))
		}
	}

	if upNoLaunch {
		fmt.Fprintln(w, "  launch: disabled (--no-launch)")
	} else {
		line := displayPath(p.entrypointPath(), p.Dir)
		if len(p.Manifest.Args) > 0 {
			line += " " + strings.Join(p.Manifest.Args, " ")
		}
		fmt.Fprintf(w, "  launch: %s %s\n", displayPath(venv.Python(p.VenvDir), p.Dir), line)
	}
}
