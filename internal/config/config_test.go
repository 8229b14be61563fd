package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDirHonorsHomeOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PYBOOT_HOME", tmp)

	if got := Dir(); got != tmp {
		t.Errorf("Dir() = %q, want %q", got, tmp)
	}
	if got, want := FilePath(), filepath.Join(tmp, "config.yaml"); got != want {
		t.Errorf("FilePath() = %q, want %q", got, want)
	}
}

func TestSetAndGet(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PYBOOT_HOME", tmp)
	viper.Reset()
	t.Cleanup(viper.Reset)

	Load()
	if err := Set(KeyVenvDir, ".venv"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if got := Get(KeyVenvDir); got != ".venv" {
		t.Errorf("Get(%q) = %q, want %q", KeyVenvDir, got, ".venv")
	}
	if got := VenvDir(); got != ".venv" {
		t.Errorf("VenvDir() = %q, want %q", got, ".venv")
	}

	if _, err := os.Stat(FilePath()); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	// A fresh load must see the persisted value.
	viper.Reset()
	Load()
	if got := VenvDir(); got != ".venv" {
		t.Errorf("VenvDir() after reload = %q, want %q", got, ".venv")
	}
}

func TestEnvironmentOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PYBOOT_HOME", tmp)
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("PYBOOT_VENV_DIR", "envdir")
	Load()
	if got := VenvDir(); got != "envdir" {
		t.Errorf("VenvDir() from env = %q, want %q", got, "envdir")
	}
}

func TestGetUnsetKey(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PYBOOT_HOME", tmp)
	viper.Reset()
	t.Cleanup(viper.Reset)

	Load()
	if got := Get("no.such.key"); got != "" {
		t.Errorf("Get(unset) = %q, want empty", got)
	}
}
