//go:build integration

package integration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pyboot-dev/pyboot/internal/bootstrap"
	"github.com/pyboot-dev/pyboot/internal/interpreter"
	"github.com/pyboot-dev/pyboot/internal/launcher"
	"github.com/pyboot-dev/pyboot/internal/manifest"
	"github.com/pyboot-dev/pyboot/internal/pip"
	"github.com/pyboot-dev/pyboot/internal/platform"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

// TestFullFlowVenvInstallLaunch drives the whole bootstrap:
// resolve interpreter -> create venv -> install requirements -> launch,
// then verifies the environment layout and the entry point's view of it.
func TestFullFlowVenvInstallLaunch(t *testing.T) {
	env := setupTestEnv(t)
	installFakePython(t, env)

	writeFile(t, filepath.Join(env.ProjectDir, "pyboot.yaml"), `name: score-endpoint
requirements:
  - src/score_interactive_endpoint/requirements.txt
entrypoint: run.py
env:
  APP_MODE: managed
`)
	reqFile := filepath.Join(env.ProjectDir, "src", "score_interactive_endpoint", "requirements.txt")
	writeFile(t, reqFile, "flask>=2.0\nrequests\n")
	marker := filepath.Join(env.ProjectDir, "launched.txt")
	entry := filepath.Join(env.ProjectDir, "run.py")
	writeFile(t, entry, "#!/bin/sh\necho \"mode=$APP_MODE\" > \""+marker+"\"\nexit 0\n")

	m, err := manifest.Load(env.ProjectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx := context.Background()
	venvDir := filepath.Join(env.ProjectDir, m.Venv.Dir)

	// Step 1: interpreter discovery finds python3 on PATH.
	py, err := interpreter.Find(ctx, m.Python.Binary)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if py.Raw != "3.11.4" {
		t.Fatalf("probed version = %q, want 3.11.4", py.Raw)
	}

	// Step 2: create the environment.
	if err := venv.Create(ctx, venvDir, venv.CreateOptions{Python: py.Path, Prompt: m.Name}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	st := venv.Inspect(venvDir)
	if !st.Healthy {
		t.Fatalf("venv unhealthy after create: %v", st.Issues)
	}
	assertFileExists(t, filepath.Join(venvDir, "pyvenv.cfg"))

	// Step 3: install requirements through the venv's pip.
	if err := pip.New(venvDir).Install(ctx, pip.InstallOptions{
		RequirementFiles: []string{reqFile},
	}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	assertFileContains(t, env.RecordFile, "pip install --disable-pip-version-check -r "+reqFile)

	// Step 4: launch the entry point inside the activated environment.
	res, err := launcher.Launch(ctx, launcher.Options{
		Python:     venv.Python(venvDir),
		Entrypoint: entry,
		Dir:        env.ProjectDir,
		Env:        venv.Activate(os.Environ(), venvDir),
		Vars:       m.Env,
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}
	assertFileContains(t, marker, "mode=managed")

	// The launcher restores the exec bit on the entry point.
	if !platform.IsExecutable(entry) {
		t.Error("entry point not marked executable")
	}
}

// TestVenvCreateIsIdempotent reruns create against a healthy environment
// and checks it is preserved, then forces a rebuild.
func TestVenvCreateIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	installFakePython(t, env)

	ctx := context.Background()
	venvDir := filepath.Join(env.ProjectDir, "pyenv")

	py, err := interpreter.Find(ctx, "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if err := venv.Create(ctx, venvDir, venv.CreateOptions{Python: py.Path}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	canary := filepath.Join(venvDir, "keep.txt")
	writeFile(t, canary, "still here\n")

	// A healthy environment is left alone.
	if err := venv.Create(ctx, venvDir, venv.CreateOptions{Python: py.Path}); err != nil {
		t.Fatalf("Create (rerun): %v", err)
	}
	assertFileExists(t, canary)

	// Recreate wipes it.
	if err := venv.Create(ctx, venvDir, venv.CreateOptions{Python: py.Path, Recreate: true}); err != nil {
		t.Fatalf("Create (recreate): %v", err)
	}
	assertFileNotExists(t, canary)
	if st := venv.Inspect(venvDir); !st.Healthy {
		t.Fatalf("venv unhealthy after recreate: %v", st.Issues)
	}
}

// TestPipelineStopsAfterInstallFailure wires the bootstrap pipeline the
// way up does and fails the install step.
func TestPipelineStopsAfterInstallFailure(t *testing.T) {
	env := setupTestEnv(t)
	installFakePython(t, env)
	t.Setenv("FAKE_PIP_EXIT", "3")

	venvDir := filepath.Join(env.ProjectDir, "pyenv")
	launched := false

	var pipe bootstrap.Pipeline
	pipe.Add("venv", func(ctx context.Context) error {
		py, err := interpreter.Find(ctx, "")
		if err != nil {
			return err
		}
		return venv.Create(ctx, venvDir, venv.CreateOptions{Python: py.Path})
	})
	pipe.Add("install", func(ctx context.Context) error {
		return pip.New(venvDir).Install(ctx, pip.InstallOptions{Specs: []string{"flask"}})
	})
	pipe.Add("launch", func(ctx context.Context) error {
		launched = true
		return nil
	})

	err := pipe.Run(context.Background())
	if err == nil {
		t.Fatal("expected pipeline failure")
	}
	var stepErr *bootstrap.StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "install" {
		t.Fatalf("err = %v, want install step failure", err)
	}
	if launched {
		t.Error("launch ran after install failed")
	}

	steps := pipe.Steps()
	if steps[0].Status != bootstrap.StatusSucceeded {
		t.Errorf("venv status = %s, want succeeded", steps[0].Status)
	}
	if steps[2].Status != bootstrap.StatusSkipped {
		t.Errorf("launch status = %s, want skipped", steps[2].Status)
	}
}
