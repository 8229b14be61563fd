package sysdeps

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pyboot-dev/pyboot/internal/config"
)

const (
	// stampFile records the last successful provision as a Unix timestamp.
	stampFile = "provision.stamp"

	// DefaultMaxAge is the staleness threshold for the package index.
	DefaultMaxAge = 7 * 24 * time.Hour
)

// StampPath returns the provision stamp location under the tool home.
func StampPath() string {
	return filepath.Join(config.Dir(), stampFile)
}

// WriteStamp records the current time as the last successful provision.
// Best effort: the stamp only feeds advisory staleness notices.
func WriteStamp() {
	if err := config.EnsureDir(); err != nil {
		return
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(StampPath(), []byte(ts), 0o644)
}

// ReadStamp returns when provisioning last succeeded, or the zero time
// when the stamp is missing or unreadable.
func ReadStamp() time.Time {
	data, err := os.ReadFile(StampPath())
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale reports whether provisioning last succeeded more than maxAge
// ago. A missing stamp is stale.
func IsStale(maxAge time.Duration) bool {
	last := ReadStamp()
	if last.IsZero() {
		return true
	}
	return time.Since(last) > maxAge
}
