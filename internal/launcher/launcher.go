package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pyboot-dev/pyboot/internal/platform"
)

// Options describe one launch of the project entrypoint. The child
// environment is built in precedence order: Env, then Vars, then
// EnvFiles in order, then Overrides. Later layers win.
type Options struct {
	// Python is the interpreter, normally the virtual environment's.
	Python string
	// Entrypoint is the script to run.
	Entrypoint string
	// Args are passed to the script verbatim.
	Args []string
	// Dir is the child working directory; empty inherits ours. Relative
	// EnvFiles paths resolve against it.
	Dir string
	// Env is the base environment; nil means os.Environ().
	Env []string
	// Vars are set over Env; manifest env entries land here.
	Vars map[string]string
	// EnvFiles are dotenv files applied over Vars; later files win.
	EnvFiles []string
	// Overrides are applied last; --env flag values land here.
	Overrides map[string]string
	// Stdout, Stderr and Stdin default to the process's own.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// Result reports how the launched process ended.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Launch runs the entrypoint and waits for it to finish. A non-zero
// child exit is reported in Result, not as an error; errors mean the
// child could not be started or configured at all.
func Launch(ctx context.Context, opts Options) (Result, error) {
	if opts.Python == "" {
		return Result{}, errors.New("launching entrypoint: no interpreter given")
	}
	if opts.Entrypoint == "" {
		return Result{}, errors.New("launching entrypoint: no entrypoint given")
	}

	entrypoint := opts.Entrypoint
	if _, err := os.Stat(entrypoint); err != nil {
		return Result{}, fmt.Errorf("entrypoint %s: %w", entrypoint, err)
	}
	if err := platform.EnsureExecutable(entrypoint); err != nil {
		log.Warn("could not mark entrypoint executable", "path", entrypoint, "err", err)
	}

	env, err := buildEnv(opts)
	if err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, opts.Python, append([]string{entrypoint}, opts.Args...)...)
	cmd.Dir = opts.Dir
	cmd.Env = env
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.Stdin = opts.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	log.Debug("launching entrypoint", "python", opts.Python, "entrypoint", entrypoint, "args", strings.Join(opts.Args, " "))

	start := time.Now()
	runErr := cmd.Run()
	result := Result{Duration: time.Since(start)}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitCode(exitErr)
			return result, nil
		}
		return result, fmt.Errorf("launching %s: %w", entrypoint, runErr)
	}
	return result, nil
}

// buildEnv assembles the child environment in precedence order.
func buildEnv(opts Options) ([]string, error) {
	env := opts.Env
	if env == nil {
		env = os.Environ()
	}

	for _, key := range sortedKeys(opts.Vars) {
		env = setEnv(env, key, opts.Vars[key])
	}

	if len(opts.EnvFiles) > 0 {
		fromFiles := make(map[string]string)
		for _, path := range opts.EnvFiles {
			if err := LoadEnvFile(fromFiles, path, opts.Dir); err != nil {
				return nil, err
			}
		}
		for _, key := range sortedKeys(fromFiles) {
			env = setEnv(env, key, fromFiles[key])
		}
	}

	for _, key := range sortedKeys(opts.Overrides) {
		env = setEnv(env, key, opts.Overrides[key])
	}
	return env, nil
}

// exitCode maps a child exit to the shell convention: the exit status
// when the child exited, 128+N when signal N killed it.
func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if status.Exited() {
			return status.ExitStatus()
		}
		if status.Signaled() {
			return 128 + int(status.Signal())
		}
	}
	return 1
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
