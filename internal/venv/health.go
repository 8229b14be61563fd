package venv

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyboot-dev/pyboot/internal/platform"
)

// Status describes the state of a virtual environment directory.
type Status struct {
	Dir      string
	Exists   bool
	Healthy  bool
	Cfg      map[string]string // parsed pyvenv.cfg when readable
	Issues   []string          // problems that make the environment unusable
	Warnings []string          // oddities that do not block use
}

// Inspect examines a virtual environment directory without touching it.
func Inspect(dir string) Status {
	st := Status{Dir: dir}

	info, err := os.Stat(dir)
	if err != nil {
		st.Issues = append(st.Issues, "directory does not exist")
		return st
	}
	if !info.IsDir() {
		st.Issues = append(st.Issues, "path exists but is not a directory")
		return st
	}
	st.Exists = true

	cfg, err := ParsePyvenvCfg(filepath.Join(dir, "pyvenv.cfg"))
	if err != nil {
		st.Issues = append(st.Issues, fmt.Sprintf("pyvenv.cfg unreadable: %v", err))
	} else {
		st.Cfg = cfg
	}

	python := platform.VenvPython(dir)
	if !platform.IsExecutable(python) {
		st.Issues = append(st.Issues, fmt.Sprintf("interpreter missing at %s", python))
	}

	// CPython records the directory of the interpreter that built the
	// environment; when it moves, the venv silently degrades.
	if home := cfg["home"]; home != "" {
		if _, err := os.Stat(home); err != nil {
			st.Warnings = append(st.Warnings, fmt.Sprintf("base interpreter directory %s is gone", home))
		}
	}

	st.Healthy = len(st.Issues) == 0
	return st
}

// ParsePyvenvCfg reads the `key = value` lines CPython writes at the root
// of every virtual environment.
func ParsePyvenvCfg(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	cfg := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		cfg[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cfg, nil
}
