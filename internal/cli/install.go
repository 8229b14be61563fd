package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/config"
	"github.com/pyboot-dev/pyboot/internal/pip"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

var (
	installRequirements []string
	installUpgrade      bool
	installNoDeps       bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install Python dependencies into the virtual environment",
	Long: `Install the project's Python dependencies into the virtual
environment. Requirement files come from the manifest or are discovered
(requirements.txt at the project root, then src/*/requirements.txt).
When the manifest points at a pyproject.toml its dependencies are
installed as well.`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringArrayVarP(&installRequirements, "requirements", "r", nil, "requirement file to install (repeatable, overrides discovery)")
	installCmd.Flags().BoolVar(&installUpgrade, "upgrade", false, "upgrade packages to the newest allowed versions")
	installCmd.Flags().BoolVar(&installNoDeps, "no-deps", false, "do not install package dependencies")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if err := p.ensureVenv(); err != nil {
		return err
	}

	files, specs, err := resolveInstallSources(p, installRequirements)
	if err != nil {
		return err
	}
	if len(files) == 0 && len(specs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to install.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Installing dependencies:")
	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", displayPath(f, p.Dir))
	}
	if len(specs) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d package(s))\n", p.Manifest.Pyproject, len(specs))
	}

	if err := installDependencies(cmd, p, files, specs, installUpgrade, installNoDeps); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Dependencies installed")
	return nil
}

// resolveInstallSources returns the requirement files (absolute) and
// pyproject dependency specs to install. flagFiles overrides the
// manifest and discovery.
func resolveInstallSources(p *project, flagFiles []string) ([]string, []string, error) {
	files := append([]string(nil), flagFiles...)
	if len(files) == 0 {
		files = p.requirementFiles()
	}
	abs := make([]string, len(files))
	for i, f := range files {
		if filepath.IsAbs(f) {
			abs[i] = f
		} else {
			abs[i] = filepath.Join(p.Dir, f)
		}
	}

	var specs []string
	pyp, err := p.pyproject()
	if err != nil {
		return nil, nil, err
	}
	if pyp != nil {
		specs = pyp.Project.Dependencies
	}
	return abs, specs, nil
}

// installDependencies runs the install hooks around a pip install of the
// given sources.
func installDependencies(cmd *cobra.Command, p *project, files, specs []string, upgrade, noDeps bool) error {
	env := venv.Activate(os.Environ(), p.VenvDir)
	if err := runHook(cmd, p, "pre_install", p.Manifest.Hooks.PreInstall, env); err != nil {
		return err
	}

	pc := pip.New(p.VenvDir)
	pc.Stdout = cmd.OutOrStdout()
	pc.Stderr = cmd.ErrOrStderr()
	if err := pc.Install(cmd.Context(), pip.InstallOptions{
		RequirementFiles: files,
		Specs:            specs,
		Upgrade:          upgrade,
		NoDeps:           noDeps,
		IndexURL:         config.PipIndexURL(),
		ExtraArgs:        config.PipExtraArgs(),
	}); err != nil {
		return err
	}

	return runHook(cmd, p, "post_install", p.Manifest.Hooks.PostInstall, env)
}

// displayPath renders path relative to base when it is inside it.
func displayPath(path, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
