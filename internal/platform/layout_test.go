package platform

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestVenvLayout(t *testing.T) {
	venv := filepath.Join("proj", "pyenv")

	binDir := VenvBinDir(venv)
	python := VenvPython(venv)

	if runtime.GOOS == "windows" {
		if want := filepath.Join(venv, "Scripts"); binDir != want {
			t.Errorf("VenvBinDir = %q, want %q", binDir, want)
		}
		if want := filepath.Join(venv, "Scripts", "python.exe"); python != want {
			t.Errorf("VenvPython = %q, want %q", python, want)
		}
		return
	}

	if want := filepath.Join(venv, "bin"); binDir != want {
		t.Errorf("VenvBinDir = %q, want %q", binDir, want)
	}
	if want := filepath.Join(venv, "bin", "python"); python != want {
		t.Errorf("VenvPython = %q, want %q", python, want)
	}
}
