package sysdeps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Manager describes one system package manager.
type Manager struct {
	// Name is the executable, e.g. "apt-get".
	Name string
	// Family groups compatible managers; manifest package lists are keyed
	// by family, so yum hosts use the dnf list.
	Family string
	// UpdateArgs refresh the package index. Empty for managers that
	// refresh on install.
	UpdateArgs []string
	// InstallArgs install packages non-interactively; names are appended.
	InstallArgs []string
	// NeedsRoot is false for managers that run as the invoking user.
	NeedsRoot bool
}

// managers in detection order. apt-get before apt: the former has the
// stable scripting interface.
var managers = []Manager{
	{Name: "apt-get", Family: "apt", UpdateArgs: []string{"update"}, InstallArgs: []string{"install", "-y"}, NeedsRoot: true},
	{Name: "dnf", Family: "dnf", InstallArgs: []string{"install", "-y"}, NeedsRoot: true},
	{Name: "yum", Family: "dnf", InstallArgs: []string{"install", "-y"}, NeedsRoot: true},
	{Name: "apk", Family: "apk", UpdateArgs: []string{"update"}, InstallArgs: []string{"add"}, NeedsRoot: true},
	{Name: "pacman", Family: "pacman", UpdateArgs: []string{"-Sy"}, InstallArgs: []string{"-S", "--noconfirm", "--needed"}, NeedsRoot: true},
	{Name: "zypper", Family: "zypper", UpdateArgs: []string{"refresh"}, InstallArgs: []string{"install", "-y"}, NeedsRoot: true},
	{Name: "brew", Family: "brew", UpdateArgs: []string{"update"}, InstallArgs: []string{"install"}, NeedsRoot: false},
}

// Families returns the known manager families in detection order.
func Families() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range managers {
		if !seen[m.Family] {
			seen[m.Family] = true
			out = append(out, m.Family)
		}
	}
	return out
}

// Detect finds the system package manager on PATH. A non-empty override
// names the manager or family to use; an override that is not installed
// is an error rather than a fallback.
func Detect(override string) (Manager, error) {
	if override != "" {
		for _, m := range managers {
			if m.Name == override || m.Family == override {
				if _, err := exec.LookPath(m.Name); err != nil {
					return Manager{}, fmt.Errorf("package manager %s not found on PATH: %w", m.Name, err)
				}
				return m, nil
			}
		}
		return Manager{}, fmt.Errorf("unsupported package manager %q (supported: %s)", override, strings.Join(managerNames(), ", "))
	}

	for _, m := range managers {
		if _, err := exec.LookPath(m.Name); err == nil {
			return m, nil
		}
	}
	return Manager{}, fmt.Errorf("no supported package manager found (tried %s)", strings.Join(managerNames(), ", "))
}

func managerNames() []string {
	out := make([]string, len(managers))
	for i, m := range managers {
		out[i] = m.Name
	}
	return out
}
