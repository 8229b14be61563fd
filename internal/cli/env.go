package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/platform"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

var (
	envShell string
	envJSON  bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print activation commands for the virtual environment",
	Long: `Print shell commands that activate the project virtual environment,
for use with eval:

  eval "$(pyboot env)"
  pyboot env --shell fish | source`,
	RunE: runEnv,
}

func init() {
	envCmd.Flags().StringVar(&envShell, "shell", "bash", "target shell (bash, zsh, fish, powershell)")
	envCmd.Flags().BoolVar(&envJSON, "json", false, "print environment details as JSON instead")
	rootCmd.AddCommand(envCmd)
}

func runEnv(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	if envJSON {
		st := venv.Inspect(p.VenvDir)
		info := struct {
			VenvDir    string `json:"venv_dir"`
			Python     string `json:"python"`
			Entrypoint string `json:"entrypoint"`
			Exists     bool   `json:"exists"`
			Healthy    bool   `json:"healthy"`
		}{p.VenvDir, venv.Python(p.VenvDir), p.entrypointPath(), st.Exists, st.Healthy}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if err := p.ensureVenv(); err != nil {
		return err
	}
	snippet, err := renderActivation(envShell, p.VenvDir)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), snippet)
	return nil
}

// renderActivation renders the activation snippet for a shell. venvDir
// must be absolute.
func renderActivation(shell, venvDir string) (string, error) {
	bin := platform.VenvBinDir(venvDir)
	var b strings.Builder
	switch shell {
	case "bash", "zsh":
		fmt.Fprintf(&b, "export VIRTUAL_ENV=\"%s\"\n", venvDir)
		fmt.Fprintf(&b, "export PATH=\"%s%c$PATH\"\n", bin, os.PathListSeparator)
		fmt.Fprintf(&b, "unset PYTHONHOME\n")
	case "fish":
		fmt.Fprintf(&b, "set -gx VIRTUAL_ENV \"%s\"\n", venvDir)
		fmt.Fprintf(&b, "set -gx PATH \"%s\" $PATH\n", bin)
		fmt.Fprintf(&b, "set -e PYTHONHOME\n")
	case "powershell":
		fmt.Fprintf(&b, "$env:VIRTUAL_ENV = \"%s\"\n", venvDir)
		fmt.Fprintf(&b, "$env:PATH = \"%s%c\" + $env:PATH\n", bin, os.PathListSeparator)
		fmt.Fprintf(&b, "Remove-Item Env:PYTHONHOME -ErrorAction SilentlyContinue\n")
	default:
		return "", fmt.Errorf("unsupported shell %q (want bash, zsh, fish, or powershell)", shell)
	}
	return b.String(), nil
}
