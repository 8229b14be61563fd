package pip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pyboot-dev/pyboot/internal/platform"
)

// Pip drives the pip module of one interpreter. Running pip as
// `python -m pip` pins it to that interpreter's environment, so a venv
// Pip can never touch system site-packages.
type Pip struct {
	// Python is the interpreter whose pip module is invoked.
	Python string
	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Pip bound to the virtual environment at venvDir.
func New(venvDir string) *Pip {
	return &Pip{Python: platform.VenvPython(venvDir)}
}

// InstallOptions control a pip install invocation.
type InstallOptions struct {
	// RequirementFiles are passed as -r arguments. pip resolves nested
	// -r includes itself.
	RequirementFiles []string
	// Specs are individual requirement strings like "flask>=2.0".
	Specs []string
	// Upgrade passes --upgrade.
	Upgrade bool
	// NoDeps passes --no-deps.
	NoDeps bool
	// IndexURL overrides the package index.
	IndexURL string
	// ExtraArgs are appended verbatim before the requirements.
	ExtraArgs []string
}

// Install runs pip install with the given options. Output streams to the
// configured writers so long dependency builds stay visible.
func (p *Pip) Install(ctx context.Context, opts InstallOptions) error {
	if len(opts.RequirementFiles) == 0 && len(opts.Specs) == 0 {
		return fmt.Errorf("installing packages: nothing to install")
	}

	args := []string{"-m", "pip", "install", "--disable-pip-version-check"}
	if opts.Upgrade {
		args = append(args, "--upgrade")
	}
	if opts.NoDeps {
		args = append(args, "--no-deps")
	}
	if opts.IndexURL != "" {
		args = append(args, "--index-url", opts.IndexURL)
	}
	args = append(args, opts.ExtraArgs...)
	for _, file := range opts.RequirementFiles {
		args = append(args, "-r", file)
	}
	args = append(args, opts.Specs...)

	log.Debug("running pip install", "python", p.Python, "args", strings.Join(args, " "))
	if err := p.run(ctx, args...); err != nil {
		return fmt.Errorf("installing packages: %w", err)
	}
	return nil
}

// UpgradeSelf upgrades pip itself inside the environment. Fresh venvs
// often ship a pip too old for current wheels.
func (p *Pip) UpgradeSelf(ctx context.Context) error {
	if err := p.run(ctx, "-m", "pip", "install", "--disable-pip-version-check", "--upgrade", "pip"); err != nil {
		return fmt.Errorf("upgrading pip: %w", err)
	}
	return nil
}

// Package is one installed distribution as pip reports it.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// List returns the distributions installed in the environment.
func (p *Pip) List(ctx context.Context) ([]Package, error) {
	cmd := exec.CommandContext(ctx, p.Python, "-m", "pip", "list", "--format=json", "--disable-pip-version-check")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("listing installed packages: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("listing installed packages: %w", err)
	}

	var packages []Package
	if err := json.Unmarshal(stdout.Bytes(), &packages); err != nil {
		return nil, fmt.Errorf("parsing pip list output: %w", err)
	}
	return packages, nil
}

// run executes the interpreter with args, streaming output to the
// configured writers.
func (p *Pip) run(ctx context.Context, args ...string) error {
	stdout := p.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := p.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cmd := exec.CommandContext(ctx, p.Python, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}
