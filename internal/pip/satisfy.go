package pip

import (
	"github.com/pyboot-dev/pyboot/internal/manifest"
)

// Satisfaction records whether one requirement is met by what is
// installed.
type Satisfaction struct {
	Requirement manifest.Requirement
	// Installed is the version found, empty when the package is absent.
	Installed string
	// Present is true when a distribution with the name exists.
	Present bool
	// Satisfied is true when the installed version meets the specifier.
	Satisfied bool
	// Checked is false when the installed version could not be compared,
	// in which case presence alone decides Satisfied.
	Checked bool
}

// CheckSatisfaction compares requirements against the installed set.
// Requirements pinned to URLs or editable installs are matched by name
// only; pip does not report enough to verify more.
func CheckSatisfaction(reqs []manifest.Requirement, installed []Package) []Satisfaction {
	byName := make(map[string]string, len(installed))
	for _, pkg := range installed {
		byName[manifest.CanonicalName(pkg.Name)] = pkg.Version
	}

	out := make([]Satisfaction, 0, len(reqs))
	for _, req := range reqs {
		s := Satisfaction{Requirement: req}
		version, ok := byName[manifest.CanonicalName(req.Name)]
		if ok {
			s.Present = true
			s.Installed = version
			switch {
			case req.Specifier == "" || req.URL != "" || req.Editable:
				s.Satisfied = true
				s.Checked = true
			default:
				satisfied, err := manifest.SpecifierSatisfied(req.Specifier, version)
				if err != nil {
					s.Satisfied = true
					s.Checked = false
				} else {
					s.Satisfied = satisfied
					s.Checked = true
				}
			}
		}
		out = append(out, s)
	}
	return out
}

// Unsatisfied filters a satisfaction report down to the requirements
// that need installing.
func Unsatisfied(report []Satisfaction) []Satisfaction {
	var out []Satisfaction
	for _, s := range report {
		if !s.Satisfied {
			out = append(out, s)
		}
	}
	return out
}
