package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"
)

// Find returns the path of the project manifest in dir, preferring
// pyboot.yaml over pyboot.yml. The second return is false when neither
// exists.
func Find(dir string) (string, bool) {
	for _, name := range []string{DefaultFileName, AltFileName} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Load returns the effective manifest for a project directory. A missing
// manifest is not an error: the defaults reproduce the classic bootstrap
// layout. A present manifest is schema-validated before parsing, so all
// commands fail the same way on a malformed file.
func Load(dir string) (*Manifest, error) {
	m, err := LoadBare(dir)
	if err != nil {
		return nil, err
	}
	m.ApplyDefaults()
	return m, nil
}

// LoadBare is Load without default application, for callers that layer
// other sources between the manifest and the defaults.
func LoadBare(dir string) (*Manifest, error) {
	path, ok := Find(dir)
	if !ok {
		return &Manifest{}, nil
	}

	result, err := ValidateFile(path)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &InvalidManifestError{Path: path, Issues: result.Issues}
	}

	return ParseFile(path)
}

// ParseFile reads and parses a pyboot.yaml without schema validation or
// default application.
func ParseFile(path string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse unmarshals manifest YAML. The path is used only for error messages.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// InvalidManifestError reports schema violations in a project manifest.
type InvalidManifestError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *InvalidManifestError) Error() string {
	if len(e.Issues) == 1 {
		i := e.Issues[0]
		return fmt.Sprintf("manifest %s invalid: %s %s", e.Path, i.Path, i.Message)
	}
	return fmt.Sprintf("manifest %s invalid: %d schema violations", e.Path, len(e.Issues))
}

// DiscoverRequirements scans a project directory for requirements files the
// way the classic bootstrap did: requirements.txt at the root, then one
// level under src/. Returned paths are relative to dir and sorted with the
// root file first.
func DiscoverRequirements(dir string) []string {
	var found []string
	if info, err := os.Stat(filepath.Join(dir, "requirements.txt")); err == nil && !info.IsDir() {
		found = append(found, "requirements.txt")
	}

	matches, err := filepath.Glob(filepath.Join(dir, "src", "*", "requirements.txt"))
	if err != nil {
		return found
	}
	sort.Strings(matches)
	for _, m := range matches {
		if rel, err := filepath.Rel(dir, m); err == nil {
			found = append(found, rel)
		}
	}
	return found
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
