package interpreter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/pyboot-dev/pyboot/internal/branding"
	"github.com/pyboot-dev/pyboot/internal/manifest"
)

// Interpreter is a resolved Python installation.
type Interpreter struct {
	Path    string          // absolute path of the binary
	Version *semver.Version // parsed version
	Raw     string          // version as reported, e.g. "3.11.4"
}

// NotFoundError is returned when no usable interpreter exists on PATH.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no python interpreter found (tried %s); install python3 or point %s at one",
		strings.Join(e.Tried, ", "), branding.EnvVar("PYTHON"))
}

// versionProbe prints exactly the interpreter version, no banner.
const versionProbe = `import sys; print("%d.%d.%d" % sys.version_info[:3])`

// Find locates a Python interpreter. An explicit override (manifest
// python.binary or config) is authoritative: when it does not resolve, Find
// fails rather than falling back. The same applies to the PYBOOT_PYTHON
// environment variable. Otherwise python3 and python are tried on PATH.
func Find(ctx context.Context, override string) (*Interpreter, error) {
	if override != "" {
		return resolve(ctx, override)
	}
	if envPython := os.Getenv(branding.EnvVar("PYTHON")); envPython != "" {
		return resolve(ctx, envPython)
	}

	tried := make([]string, 0, 2)
	for _, cand := range []string{"python3", "python"} {
		path, err := exec.LookPath(cand)
		if err != nil {
			tried = append(tried, cand)
			continue
		}
		// Present on PATH but unusable is worth surfacing, not skipping.
		return Probe(ctx, path)
	}
	return nil, &NotFoundError{Tried: tried}
}

func resolve(ctx context.Context, binary string) (*Interpreter, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("configured interpreter %q not found: %w", binary, err)
	}
	return Probe(ctx, path)
}

// Probe runs the interpreter at path and reads its version.
func Probe(ctx context.Context, path string) (*Interpreter, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-c", versionProbe)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("probing %s: %w: %s", path, err, detail)
		}
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}

	raw := strings.TrimSpace(stdout.String())
	v, err := manifest.NormalizeVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}
	return &Interpreter{Path: path, Version: v, Raw: raw}, nil
}

// Satisfies reports whether the interpreter version matches a PEP 440
// specifier. An empty specifier is always satisfied.
func (i *Interpreter) Satisfies(spec string) (bool, error) {
	if spec == "" {
		return true, nil
	}
	c, err := manifest.ConstraintFromSpecifier(spec)
	if err != nil {
		return false, err
	}
	return c.Check(i.Version), nil
}

// CheckConstraint returns a descriptive error when the interpreter does not
// satisfy the specifier.
func (i *Interpreter) CheckConstraint(spec string) error {
	ok, err := i.Satisfies(spec)
	if err != nil {
		return fmt.Errorf("checking python version constraint %q: %w", spec, err)
	}
	if !ok {
		return fmt.Errorf("python %s at %s does not satisfy required version %q", i.Raw, i.Path, spec)
	}
	return nil
}
