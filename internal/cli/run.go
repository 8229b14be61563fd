package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/launcher"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

var (
	runEntrypoint string
	runEnvVars    []string
	runEnvFiles   []string
)

var runCmd = &cobra.Command{
	Use:   "run [args...]",
	Short: "Launch the project entry point",
	Long: `Launch the project entry point with the virtual environment's
interpreter. Arguments after -- go to the entry point; giving any
replaces the manifest's args list. The process exits with the entry
point's exit code.`,
	Args: cobra.ArbitraryArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runEntrypoint, "entrypoint", "", "entry point script (overrides the manifest)")
	runCmd.Flags().StringArrayVarP(&runEnvVars, "env", "e", nil, "extra KEY=VALUE for the entry point (repeatable)")
	runCmd.Flags().StringArrayVar(&runEnvFiles, "env-file", nil, "extra .env file to load (repeatable)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if err := p.ensureVenv(); err != nil {
		return err
	}

	overrides, err := parseEnvFlags(runEnvVars)
	if err != nil {
		return err
	}

	entrypoint := p.entrypointPath()
	if runEntrypoint != "" {
		entrypoint = runEntrypoint
		if !filepath.IsAbs(entrypoint) {
			entrypoint = filepath.Join(p.Dir, entrypoint)
		}
	}

	childArgs := p.Manifest.Args
	if len(args) > 0 {
		childArgs = args
	}

	code, err := launchProject(cmd, p, entrypoint, childArgs, runEnvFiles, overrides)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// launchProject runs the pre_run hook and then the entry point, returning
// the entry point's exit code.
func launchProject(cmd *cobra.Command, p *project, entrypoint string, args []string, extraEnvFiles []string, overrides map[string]string) (int, error) {
	env := venv.Activate(os.Environ(), p.VenvDir)
	if err := runHook(cmd, p, "pre_run", p.Manifest.Hooks.PreRun, env); err != nil {
		return 0, err
	}

	res, err := launcher.Launch(cmd.Context(), launcher.Options{
		Python:     venv.Python(p.VenvDir),
		Entrypoint: entrypoint,
		Args:       args,
		Dir:        p.Dir,
		Env:        env,
		Vars:       p.Manifest.Env,
		EnvFiles:   append(append([]string(nil), p.Manifest.EnvFiles...), extraEnvFiles...),
		Overrides:  overrides,
	})
	if err != nil {
		return 0, err
	}
	log.Debug("entry point exited", "code", res.ExitCode, "duration", res.Duration)
	return res.ExitCode, nil
}

// parseEnvFlags parses repeated KEY=VALUE flags into a map.
func parseEnvFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env value %q, want KEY=VALUE", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
