package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/branding"
	"github.com/pyboot-dev/pyboot/internal/config"
	"github.com/pyboot-dev/pyboot/internal/hook"
	"github.com/pyboot-dev/pyboot/internal/interpreter"
	"github.com/pyboot-dev/pyboot/internal/manifest"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

// project bundles everything commands resolve from the working directory.
type project struct {
	Dir      string
	Manifest *manifest.Manifest
	// VenvDir is absolute.
	VenvDir string
	// SystemPackagesDeclared reports whether the manifest itself listed
	// system packages rather than inheriting the defaults.
	SystemPackagesDeclared bool
}

// loadProject resolves the manifest and derived paths for the working
// directory. Where the manifest and global config can both set a value,
// an explicit manifest entry wins over config, which wins over the
// built-in default.
func loadProject() (*project, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	m, err := manifest.LoadBare(dir)
	if err != nil {
		return nil, err
	}
	if m.Venv.Dir == "" {
		m.Venv.Dir = config.VenvDir()
	}
	if m.Python.Binary == "" {
		m.Python.Binary = config.PythonBinary()
	}
	declared := m.SystemPackages != nil
	m.ApplyDefaults()

	venvDir := m.Venv.Dir
	if !filepath.IsAbs(venvDir) {
		venvDir = filepath.Join(dir, venvDir)
	}
	return &project{
		Dir:                    dir,
		Manifest:               m,
		VenvDir:                venvDir,
		SystemPackagesDeclared: declared,
	}, nil
}

// requirementFiles returns the requirement files to install: the
// manifest's list when given, discovered files otherwise.
func (p *project) requirementFiles() []string {
	if len(p.Manifest.Requirements) > 0 {
		return p.Manifest.Requirements
	}
	return manifest.DiscoverRequirements(p.Dir)
}

// entrypointPath returns the absolute entry point path.
func (p *project) entrypointPath() string {
	entrypoint := p.Manifest.Entrypoint
	if !filepath.IsAbs(entrypoint) {
		entrypoint = filepath.Join(p.Dir, entrypoint)
	}
	return entrypoint
}

// pyproject loads the manifest-declared pyproject.toml, or nil when the
// project does not use one.
func (p *project) pyproject() (*manifest.PyProject, error) {
	if p.Manifest.Pyproject == "" {
		return nil, nil
	}
	path := p.Manifest.Pyproject
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Dir, path)
	}
	return manifest.ParsePyProjectFile(path)
}

// findInterpreter resolves the interpreter and enforces the version
// constraints from the manifest and, when present, pyproject.toml.
func (p *project) findInterpreter(ctx context.Context) (*interpreter.Interpreter, error) {
	py, err := interpreter.Find(ctx, p.Manifest.Python.Binary)
	if err != nil {
		return nil, err
	}
	if err := py.CheckConstraint(p.Manifest.Python.Version); err != nil {
		return nil, err
	}

	pyp, err := p.pyproject()
	if err != nil {
		return nil, err
	}
	if pyp != nil && pyp.Project.RequiresPython != "" {
		if err := py.CheckConstraint(pyp.Project.RequiresPython); err != nil {
			return nil, err
		}
	}
	return py, nil
}

// ensureVenv fails unless a healthy virtual environment exists.
func (p *project) ensureVenv() error {
	st := venv.Inspect(p.VenvDir)
	if !st.Exists {
		return fmt.Errorf("no virtual environment at %s; run '%s venv' first", p.VenvDir, branding.CLIName())
	}
	if !st.Healthy {
		return fmt.Errorf("virtual environment at %s is broken (%s); run '%s venv --recreate'",
			p.VenvDir, strings.Join(st.Issues, "; "), branding.CLIName())
	}
	return nil
}

// runHook executes a manifest hook in the project directory.
func runHook(cmd *cobra.Command, p *project, name, script string, env []string) error {
	return hook.Run(cmd.Context(), hook.Hook{Name: name, Script: script}, hook.RunOptions{
		Dir:    p.Dir,
		Env:    env,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
}

// requirementSpecs flattens the project's requirement sources into parsed
// requirements: every file in requirementFiles plus pyproject dependencies.
func (p *project) requirementSpecs() ([]manifest.Requirement, error) {
	var reqs []manifest.Requirement
	for _, file := range p.requirementFiles() {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.Dir, path)
		}
		rf, err := manifest.ParseRequirementsFile(path)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, rf.Requirements...)
	}

	pyp, err := p.pyproject()
	if err != nil {
		return nil, err
	}
	if pyp != nil {
		fromToml, err := pyp.Requirements()
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, fromToml...)
	}
	return reqs, nil
}
