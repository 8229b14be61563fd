//go:build integration

package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pyboot-dev/pyboot/internal/interpreter"
	"github.com/pyboot-dev/pyboot/internal/launcher"
	"github.com/pyboot-dev/pyboot/internal/platform"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

// buildVenv creates an environment with the fake interpreter and returns
// its directory.
func buildVenv(t *testing.T, env *testEnv) string {
	t.Helper()
	ctx := context.Background()
	venvDir := filepath.Join(env.ProjectDir, "pyenv")

	py, err := interpreter.Find(ctx, "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if err := venv.Create(ctx, venvDir, venv.CreateOptions{Python: py.Path}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return venvDir
}

// TestLaunchPropagatesFailureExitCode runs an entry point that fails and
// checks the code reaches the caller unchanged.
func TestLaunchPropagatesFailureExitCode(t *testing.T) {
	env := setupTestEnv(t)
	installFakePython(t, env)
	venvDir := buildVenv(t, env)

	entry := filepath.Join(env.ProjectDir, "run.py")
	writeExecutable(t, entry, "#!/bin/sh\nexit 7\n")

	res, err := launcher.Launch(context.Background(), launcher.Options{
		Python:     venv.Python(venvDir),
		Entrypoint: entry,
		Dir:        env.ProjectDir,
		Env:        venv.Activate(os.Environ(), venvDir),
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if res.ExitCode != 7 {
		t.Errorf("exit code = %d, want 7", res.ExitCode)
	}
}

// TestLaunchSeesActivatedEnvironment checks VIRTUAL_ENV and PATH reach
// the entry point the way an activate script would set them.
func TestLaunchSeesActivatedEnvironment(t *testing.T) {
	env := setupTestEnv(t)
	installFakePython(t, env)
	venvDir := buildVenv(t, env)

	marker := filepath.Join(env.ProjectDir, "seen.txt")
	entry := filepath.Join(env.ProjectDir, "run.py")
	writeExecutable(t, entry,
		"#!/bin/sh\necho \"$VIRTUAL_ENV\" > \""+marker+"\"\necho \"$PATH\" >> \""+marker+"\"\nexit 0\n")

	res, err := launcher.Launch(context.Background(), launcher.Options{
		Python:     venv.Python(venvDir),
		Entrypoint: entry,
		Dir:        env.ProjectDir,
		Env:        venv.Activate(os.Environ(), venvDir),
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}

	assertFileContains(t, marker, venvDir)
	assertFileContains(t, marker, platform.VenvBinDir(venvDir)+string(os.PathListSeparator))
}
