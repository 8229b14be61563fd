// Package hook runs the shell snippets a manifest declares around
// provisioning, installation, and launch. Scripts run in an embedded
// POSIX interpreter, so hooks behave the same everywhere and need no
// /bin/sh on the host.
package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Hook is one named script from the manifest.
type Hook struct {
	// Name identifies the hook in errors, e.g. "pre_install".
	Name string
	// Script is the shell source to run. Empty scripts are no-ops.
	Script string
}

// RunOptions control hook execution.
type RunOptions struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is the hook environment; nil means os.Environ().
	Env []string
	// Stdout and Stderr default to the process's own.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes one hook. Parse failures and non-zero exits are both
// errors; the exit status is folded into the message.
func Run(ctx context.Context, h Hook, opts RunOptions) error {
	if strings.TrimSpace(h.Script) == "" {
		return nil
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(h.Script), h.Name)
	if err != nil {
		return fmt.Errorf("parsing %s hook: %w", h.Name, err)
	}

	env := opts.Env
	if env == nil {
		env = os.Environ()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	runner, err := interp.New(
		interp.Dir(opts.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("preparing %s hook: %w", h.Name, err)
	}

	log.Debug("running hook", "hook", h.Name)
	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return fmt.Errorf("%s hook exited with status %d", h.Name, int(status))
		}
		return fmt.Errorf("running %s hook: %w", h.Name, err)
	}
	return nil
}

// RunAll executes hooks in order, stopping at the first failure.
func RunAll(ctx context.Context, hooks []Hook, opts RunOptions) error {
	for _, h := range hooks {
		if err := Run(ctx, h, opts); err != nil {
			return err
		}
	}
	return nil
}
