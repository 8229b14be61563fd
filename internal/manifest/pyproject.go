package manifest

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// PyProject models the subset of pyproject.toml that drives bootstrapping:
// the [project] table's dependency lists and interpreter constraint.
// Build-system tables are pip's business and not represented.
type PyProject struct {
	Project PyProjectTable `toml:"project"`
}

// PyProjectTable is the [project] table of a pyproject.toml.
type PyProjectTable struct {
	Name                 string              `toml:"name"`
	RequiresPython       string              `toml:"requires-python"`
	Dependencies         []string            `toml:"dependencies"`
	OptionalDependencies map[string][]string `toml:"optional-dependencies"`
}

// ParsePyProjectFile reads and parses a pyproject.toml.
func ParsePyProjectFile(path string) (*PyProject, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var p PyProject
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing pyproject %s: %w", path, err)
	}
	return &p, nil
}

// Requirements parses the dependency list, plus any named optional
// dependency groups, into requirements.
func (p *PyProject) Requirements(extras ...string) ([]Requirement, error) {
	specs := append([]string(nil), p.Project.Dependencies...)
	for _, extra := range extras {
		group, ok := p.Project.OptionalDependencies[extra]
		if !ok {
			return nil, fmt.Errorf("pyproject has no optional dependency group %q", extra)
		}
		specs = append(specs, group...)
	}

	reqs := make([]Requirement, 0, len(specs))
	for _, spec := range specs {
		req, err := ParseRequirement(spec)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
