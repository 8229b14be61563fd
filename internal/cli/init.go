package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/manifest"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter manifest for the current directory",
	Long: `Write a pyboot.yaml manifest describing the project in the current
directory. Requirement files already on disk are picked up and listed.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// Starter manifest written by init. The name and the requirements block
// are filled in.
const manifestTemplate = `# Project manifest. Fields omitted here fall back to the tool defaults.
name: %s

# python:
#   version: ">=3.9"

venv:
  dir: pyenv

%sentrypoint: run.py
`

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	if existing, ok := manifest.Find(dir); ok {
		return fmt.Errorf("manifest already exists at %s", existing)
	}

	var reqBlock string
	if reqs := manifest.DiscoverRequirements(dir); len(reqs) > 0 {
		var b strings.Builder
		b.WriteString("requirements:\n")
		for _, r := range reqs {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
		b.WriteString("\n")
		reqBlock = b.String()
	}

	path := filepath.Join(dir, manifest.DefaultFileName)
	content := fmt.Sprintf(manifestTemplate, defaultProjectName(dir), reqBlock)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", manifest.DefaultFileName)

	added, err := venv.EnsureIgnored(dir, filepath.Join(dir, manifest.DefaultVenvDir))
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	if added {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s/ to .gitignore\n", manifest.DefaultVenvDir)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "")
	fmt.Fprintln(cmd.OutOrStdout(), "Next steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "  pyboot up        # provision, build, install, and launch")
	fmt.Fprintln(cmd.OutOrStdout(), "  pyboot doctor    # check the environment")
	return nil
}

// defaultProjectName derives a manifest-safe name from the directory
// base name: lowercased, with anything else mapped to dashes.
func defaultProjectName(dir string) string {
	base := strings.ToLower(filepath.Base(dir))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-_.")
	if name == "" {
		return "app"
	}
	return name
}
