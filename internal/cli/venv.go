package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/pip"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

var (
	venvRecreate           bool
	venvPrompt             string
	venvSystemSitePackages bool
	venvUpgradePip         bool
)

var venvCmd = &cobra.Command{
	Use:   "venv",
	Short: "Create the project virtual environment",
	Long: `Create the project virtual environment with the resolved Python
interpreter. An existing healthy environment is left in place unless
--recreate is given; a broken one is rebuilt.`,
	RunE: runVenv,
}

func init() {
	venvCmd.Flags().BoolVar(&venvRecreate, "recreate", false, "rebuild the environment even when it is healthy")
	venvCmd.Flags().StringVar(&venvPrompt, "prompt", "", "shell prompt prefix for the environment")
	venvCmd.Flags().BoolVar(&venvSystemSitePackages, "system-site-packages", false, "give the environment access to system site-packages")
	venvCmd.Flags().BoolVar(&venvUpgradePip, "upgrade-pip", false, "upgrade pip inside the environment afterwards")
	rootCmd.AddCommand(venvCmd)
}

func runVenv(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	py, err := p.findInterpreter(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Using Python %s at %s\n", py.Raw, py.Path)

	if err := venv.Create(cmd.Context(), p.VenvDir, venv.CreateOptions{
		Python:             py.Path,
		Prompt:             venvPromptFor(p),
		SystemSitePackages: venvSystemSitePackages || p.Manifest.Venv.SystemSitePackages,
		Recreate:           venvRecreate,
	}); err != nil {
		return err
	}

	if _, err := venv.EnsureIgnored(p.Dir, p.VenvDir); err != nil {
		log.Warn("could not update .gitignore", "err", err)
	}

	if venvUpgradePip {
		pc := pip.New(p.VenvDir)
		pc.Stdout = cmd.OutOrStdout()
		pc.Stderr = cmd.ErrOrStderr()
		if err := pc.UpgradeSelf(cmd.Context()); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Virtual environment ready at %s\n", p.VenvDir)
	return nil
}

// venvPromptFor picks the shell prompt prefix: flag, then manifest, then
// the project name.
func venvPromptFor(p *project) string {
	if venvPrompt != "" {
		return venvPrompt
	}
	if p.Manifest.Venv.Prompt != "" {
		return p.Manifest.Venv.Prompt
	}
	return p.Manifest.Name
}
