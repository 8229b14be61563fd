package venv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pyboot-dev/pyboot/internal/platform"
)

// Activate returns a copy of env adjusted the way `source bin/activate`
// would adjust a shell: VIRTUAL_ENV points at the environment, its bin
// directory leads PATH, and PYTHONHOME is cleared so the base install
// cannot leak in.
func Activate(env []string, dir string) []string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	binDir := platform.VenvBinDir(abs)

	out := make([]string, 0, len(env)+2)
	oldPath := ""
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			out = append(out, kv)
			continue
		}
		switch {
		case strings.EqualFold(key, "PATH"):
			oldPath = value
		case key == "VIRTUAL_ENV", key == "PYTHONHOME":
			// replaced below / must not survive activation
		default:
			out = append(out, kv)
		}
	}

	path := binDir
	if oldPath != "" {
		path += string(os.PathListSeparator) + oldPath
	}
	out = append(out, "VIRTUAL_ENV="+abs, "PATH="+path)
	return out
}
