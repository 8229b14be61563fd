package venv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pyboot-dev/pyboot/internal/platform"
)

// CreateOptions control how a virtual environment is built.
type CreateOptions struct {
	// Python is the interpreter that builds the environment. Required.
	Python string
	// Prompt names the environment in shell prompts (venv --prompt).
	Prompt string
	// SystemSitePackages gives the environment access to system packages.
	SystemSitePackages bool
	// Recreate clears an existing environment before building.
	Recreate bool
}

// Create builds the virtual environment at dir. A healthy existing
// environment is left untouched unless Recreate is set; a broken one is
// cleared and rebuilt.
func Create(ctx context.Context, dir string, opts CreateOptions) error {
	if opts.Python == "" {
		return fmt.Errorf("creating virtual environment: no interpreter given")
	}

	status := Inspect(dir)
	if status.Healthy && !opts.Recreate {
		log.Debug("virtual environment already healthy", "dir", dir)
		return nil
	}
	if status.Exists && !status.Healthy {
		log.Info("rebuilding broken virtual environment", "dir", dir, "issues", strings.Join(status.Issues, "; "))
	}

	args := []string{"-m", "venv"}
	if opts.Prompt != "" {
		args = append(args, "--prompt", opts.Prompt)
	}
	if opts.SystemSitePackages {
		args = append(args, "--system-site-packages")
	}
	if opts.Recreate || (status.Exists && !status.Healthy) {
		args = append(args, "--clear")
	}
	args = append(args, dir)

	log.Debug("creating virtual environment", "python", opts.Python, "args", strings.Join(args, " "))

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, opts.Python, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(output.String())
		if detail != "" {
			return fmt.Errorf("creating virtual environment at %s: %w: %s", dir, err, detail)
		}
		return fmt.Errorf("creating virtual environment at %s: %w", dir, err)
	}
	return nil
}

// Python returns the interpreter path inside the environment.
func Python(dir string) string {
	return platform.VenvPython(dir)
}

// Remove deletes a virtual environment directory. A missing directory is
// not an error. Directories without a pyvenv.cfg marker are refused: only
// something that is actually a venv gets deleted.
func Remove(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, "pyvenv.cfg")); err != nil {
		return fmt.Errorf("refusing to remove %s: not a virtual environment (no pyvenv.cfg)", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing virtual environment %s: %w", dir, err)
	}
	return nil
}
