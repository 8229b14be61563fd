package venv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ignoreLine returns the .gitignore line covering the environment directory,
// or ok=false when the environment lives outside the project.
func ignoreLine(projectDir, venvDir string) (string, bool) {
	rel, err := filepath.Rel(projectDir, venvDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel) + "/", true
}

// EnsureIgnored appends an ignore line for the environment directory to the
// project's .gitignore, creating the file when missing. It reports whether a
// line was added: environments outside the project and entries already
// present (with or without the trailing slash) leave the file untouched.
func EnsureIgnored(projectDir, venvDir string) (bool, error) {
	line, ok := ignoreLine(projectDir, venvDir)
	if !ok {
		return false, nil
	}

	gitignorePath := filepath.Join(projectDir, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading .gitignore: %w", err)
	}

	for _, l := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(l)
		if trimmed == line || trimmed == strings.TrimSuffix(line, "/") {
			return false, nil
		}
	}

	// Append the line. Ensure there's a newline before our addition.
	suffix := line + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		suffix = "\n" + suffix
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening .gitignore for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(suffix); err != nil {
		return false, fmt.Errorf("writing to .gitignore: %w", err)
	}

	return true, nil
}
