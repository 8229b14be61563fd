package manifest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ConstraintFromSpecifier converts a PEP 440 version specifier into semver
// constraints. Supported operators: ==, !=, >=, <=, >, <, ~=, === and
// trailing .* wildcards, joined by commas. A bare X.Y means that release
// series; a bare X.Y.Z means exactly that version.
func ConstraintFromSpecifier(spec string) (*semver.Constraints, error) {
	parts := strings.Split(spec, ",")
	translated := make([]string, 0, len(parts))
	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		t, err := translateClause(p)
		if err != nil {
			return nil, err
		}
		translated = append(translated, t)
	}
	if len(translated) == 0 {
		return nil, fmt.Errorf("empty version specifier %q", spec)
	}
	c, err := semver.NewConstraint(strings.Join(translated, ", "))
	if err != nil {
		return nil, fmt.Errorf("specifier %q: %w", spec, err)
	}
	return c, nil
}

func translateClause(p string) (string, error) {
	switch {
	case strings.HasPrefix(p, "~="):
		return translateCompatible(strings.TrimSpace(p[2:]))
	case strings.HasPrefix(p, "==="):
		return "=" + strings.TrimSpace(p[3:]), nil
	case strings.HasPrefix(p, "=="):
		v := strings.TrimSpace(p[2:])
		if strings.HasSuffix(v, ".*") {
			return strings.TrimSuffix(v, ".*") + ".x", nil
		}
		return "=" + v, nil
	case strings.HasPrefix(p, "!="):
		v := strings.TrimSpace(p[2:])
		if strings.HasSuffix(v, ".*") {
			return "!=" + strings.TrimSuffix(v, ".*") + ".x", nil
		}
		return "!=" + v, nil
	case strings.HasPrefix(p, ">="), strings.HasPrefix(p, "<="):
		return p[:2] + strings.TrimSpace(p[2:]), nil
	case strings.HasPrefix(p, ">"), strings.HasPrefix(p, "<"):
		return p[:1] + strings.TrimSpace(p[1:]), nil
	case strings.HasPrefix(p, "="):
		return "=" + strings.TrimSpace(p[1:]), nil
	}
	if strings.Count(p, ".") <= 1 {
		return "~" + p, nil
	}
	return "=" + p, nil
}

// translateCompatible expands a compatible release clause: ~=X.Y becomes
// >=X.Y,<X+1 and ~=X.Y.Z becomes >=X.Y.Z,<X.Y+1.
func translateCompatible(v string) (string, error) {
	segs := strings.Split(v, ".")
	if len(segs) < 2 {
		return "", fmt.Errorf("compatible release ~=%s needs at least two version components", v)
	}
	upper := make([]string, len(segs)-1)
	for i := range upper {
		n, err := strconv.Atoi(segs[i])
		if err != nil {
			return "", fmt.Errorf("compatible release ~=%s: %w", v, err)
		}
		if i == len(upper)-1 {
			n++
		}
		upper[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf(">=%s, <%s", v, strings.Join(upper, ".")), nil
}

var (
	postDevPattern    = regexp.MustCompile(`[._-]?(post|dev)\d*`)
	pythonVersionForm = regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:(a|b|rc|c)(\d+))?`)
)

// NormalizeVersion parses a Python version string into a semver version.
// PEP 440 forms with no semver equivalent are reduced: epoch and local
// segments are dropped, .postN/.devN suffixes are ignored, release segments
// beyond the third are truncated, and aN/bN/rcN pre-releases map to semver
// pre-release identifiers.
func NormalizeVersion(s string) (*semver.Version, error) {
	orig := s
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")

	if i := strings.IndexByte(s, '!'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	s = postDevPattern.ReplaceAllString(s, "")

	m := pythonVersionForm.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return nil, fmt.Errorf("unparseable version %q", orig)
	}
	release := strings.Split(m[1], ".")
	if len(release) > 3 {
		release = release[:3]
	}
	for len(release) < 3 {
		release = append(release, "0")
	}
	out := strings.Join(release, ".")
	if m[2] != "" {
		phase := map[string]string{"a": "alpha", "b": "beta", "rc": "rc", "c": "rc"}[m[2]]
		out += "-" + phase + "." + m[3]
	}
	v, err := semver.NewVersion(out)
	if err != nil {
		return nil, fmt.Errorf("unparseable version %q: %w", orig, err)
	}
	return v, nil
}

// SpecifierSatisfied reports whether a Python version satisfies a PEP 440
// specifier, using the semver translations above. Pre-release versions only
// satisfy specifiers that mention a pre-release, matching pip's default.
func SpecifierSatisfied(spec, version string) (bool, error) {
	c, err := ConstraintFromSpecifier(spec)
	if err != nil {
		return false, err
	}
	v, err := NormalizeVersion(version)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}
