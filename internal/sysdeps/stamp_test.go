package sysdeps

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestStampLifecycle(t *testing.T) {
	t.Setenv("PYBOOT_HOME", t.TempDir())

	if !IsStale(DefaultMaxAge) {
		t.Error("IsStale() = false with no stamp")
	}
	if !ReadStamp().IsZero() {
		t.Error("ReadStamp() returned non-zero time with no stamp")
	}

	WriteStamp()

	last := ReadStamp()
	if last.IsZero() {
		t.Fatal("ReadStamp() returned zero time after WriteStamp")
	}
	if d := time.Since(last); d < 0 || d > time.Minute {
		t.Errorf("stamp age %v, want just written", d)
	}
	if IsStale(DefaultMaxAge) {
		t.Error("IsStale() = true right after WriteStamp")
	}
}

func TestIsStaleOldStamp(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PYBOOT_HOME", home)

	old := time.Now().Add(-30 * 24 * time.Hour).Unix()
	path := filepath.Join(home, "provision.stamp")
	if err := os.WriteFile(path, []byte(strconv.FormatInt(old, 10)), 0o644); err != nil {
		t.Fatalf("writing old stamp: %v", err)
	}

	if !IsStale(DefaultMaxAge) {
		t.Error("IsStale() = false for a 30 day old stamp")
	}
	if IsStale(60 * 24 * time.Hour) {
		t.Error("IsStale() = true within a 60 day threshold")
	}
}

func TestReadStampGarbage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PYBOOT_HOME", home)

	path := filepath.Join(home, "provision.stamp")
	if err := os.WriteFile(path, []byte("not-a-timestamp"), 0o644); err != nil {
		t.Fatalf("writing stamp: %v", err)
	}

	if !ReadStamp().IsZero() {
		t.Error("ReadStamp() parsed garbage into a time")
	}
	if !IsStale(DefaultMaxAge) {
		t.Error("IsStale() = false for unreadable stamp")
	}
}
