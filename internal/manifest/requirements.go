package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Requirement is a single dependency parsed from a requirements file or a
// pyproject dependency list.
type Requirement struct {
	Name      string   // distribution name as written
	Extras    []string // requested extras, e.g. requests[socks]
	Specifier string   // PEP 440 version specifier, empty when unpinned
	Marker    string   // environment marker following ';', kept verbatim
	URL       string   // direct reference target of a `name @ url` line
	Editable  bool     // -e / --editable install
	Raw       string   // the logical line as written
}

// RequirementsFile is a parsed requirements file with -r includes flattened
// in place. Option lines other than includes are collected verbatim; pip
// re-reads them itself when the file is passed with -r, so they only matter
// for inspection.
type RequirementsFile struct {
	Path         string
	Requirements []Requirement
	Options      []string
}

// ParseRequirementsFile reads and parses a requirements file, following
// -r/--requirement includes relative to the file's directory. Include
// cycles are an error.
func ParseRequirementsFile(path string) (*RequirementsFile, error) {
	return parseRequirementsPath(path, make(map[string]bool))
}

func parseRequirementsPath(path string, visited map[string]bool) (*RequirementsFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if visited[abs] {
		return nil, fmt.Errorf("requirements include cycle at %s", path)
	}
	visited[abs] = true

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading requirements %s: %w", path, err)
	}
	defer f.Close()

	rf := &RequirementsFile{Path: path}
	if err := parseRequirements(f, filepath.Dir(path), rf, visited); err != nil {
		return nil, fmt.Errorf("parsing requirements %s: %w", path, err)
	}
	return rf, nil
}

func parseRequirements(r io.Reader, dir string, rf *RequirementsFile, visited map[string]bool) error {
	scanner := bufio.NewScanner(r)
	var pending string
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		// A trailing backslash joins the next line before anything else.
		if strings.HasSuffix(line, "\\") {
			pending += strings.TrimSuffix(line, "\\")
			continue
		}
		line = pending + line
		pending = ""
		if err := parseRequirementsLine(line, dir, rf, visited); err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if pending != "" {
		if err := parseRequirementsLine(pending, dir, rf, visited); err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	return scanner.Err()
}

func parseRequirementsLine(line, dir string, rf *RequirementsFile, visited map[string]bool) error {
	line = stripComment(line)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if target, ok := optionValue(line, "-r", "--requirement"); ok {
		if target == "" {
			return fmt.Errorf("missing path after -r")
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		included, err := parseRequirementsPath(target, visited)
		if err != nil {
			return err
		}
		rf.Requirements = append(rf.Requirements, included.Requirements...)
		rf.Options = append(rf.Options, included.Options...)
		return nil
	}

	if target, ok := optionValue(line, "-e", "--editable"); ok {
		if target == "" {
			return fmt.Errorf("missing target after -e")
		}
		rf.Requirements = append(rf.Requirements, Requirement{
			Name:     editableName(target),
			Editable: true,
			Raw:      line,
		})
		return nil
	}

	// Any other option line (--index-url, -c, …) belongs to pip.
	if strings.HasPrefix(line, "-") {
		rf.Options = append(rf.Options, line)
		return nil
	}

	req, err := ParseRequirement(line)
	if err != nil {
		return err
	}
	rf.Requirements = append(rf.Requirements, req)
	return nil
}

// stripComment removes a pip-style comment: a # at the start of the line or
// preceded by whitespace.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] == ' ' || line[i-1] == '\t') {
			return line[:i]
		}
	}
	return line
}

// optionValue matches a short or long option and returns its value.
// Accepted forms: "-r x", "-rx", "--requirement x", "--requirement=x".
func optionValue(line, short, long string) (string, bool) {
	if strings.HasPrefix(line, long) {
		rest := line[len(long):]
		if rest == "" {
			return "", true
		}
		if rest[0] == ' ' || rest[0] == '\t' || rest[0] == '=' {
			return strings.TrimSpace(rest[1:]), true
		}
		return "", false
	}
	if strings.HasPrefix(line, short) && !strings.HasPrefix(line, "--") {
		return strings.TrimSpace(line[len(short):]), true
	}
	return "", false
}

// editableName extracts the distribution name from an #egg= fragment, the
// only place an editable target names itself.
func editableName(target string) string {
	i := strings.Index(target, "#egg=")
	if i < 0 {
		return ""
	}
	name := target[i+len("#egg="):]
	if j := strings.IndexAny(name, "&#["); j >= 0 {
		name = name[:j]
	}
	return name
}

var requirementNamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)

// ParseRequirement parses a single PEP 508 requirement string such as
// "requests[socks]>=2.28,<3; python_version < '3.12'".
func ParseRequirement(line string) (Requirement, error) {
	req := Requirement{Raw: strings.TrimSpace(line)}
	rest := req.Raw

	if i := strings.IndexByte(rest, ';'); i >= 0 {
		req.Marker = strings.TrimSpace(rest[i+1:])
		rest = strings.TrimSpace(rest[:i])
	}

	// Direct reference: name [extras] @ url.
	if i := strings.IndexByte(rest, '@'); i >= 0 {
		req.URL = strings.TrimSpace(rest[i+1:])
		rest = strings.TrimSpace(rest[:i])
	}

	name := requirementNamePattern.FindString(rest)
	if name == "" {
		return req, fmt.Errorf("invalid requirement %q", line)
	}
	req.Name = name
	rest = strings.TrimSpace(rest[len(name):])

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return req, fmt.Errorf("invalid requirement %q: unterminated extras", line)
		}
		for _, e := range strings.Split(rest[1:end], ",") {
			if e = strings.TrimSpace(e); e != "" {
				req.Extras = append(req.Extras, e)
			}
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	// The remainder is the version specifier, possibly parenthesized.
	rest = strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")")
	req.Specifier = strings.TrimSpace(rest)
	if req.Specifier != "" && !strings.ContainsAny(req.Specifier, "=<>!~") {
		return req, fmt.Errorf("invalid requirement %q: unexpected %q", line, req.Specifier)
	}
	return req, nil
}

var canonicalNamePattern = regexp.MustCompile(`[-_.]+`)

// CanonicalName normalizes a distribution name per PEP 503: lowercase, with
// runs of dots, dashes, and underscores collapsed to a single dash.
// "Flask_RESTful" and "flask.restful" name the same distribution.
func CanonicalName(name string) string {
	return strings.ToLower(canonicalNamePattern.ReplaceAllString(name, "-"))
}
