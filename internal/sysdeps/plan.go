package sysdeps

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Plan is a resolved provisioning run: which manager, what to install,
// and whether commands go through sudo.
type Plan struct {
	Manager  Manager
	Update   bool
	Packages []string
	Sudo     bool
}

// PlanOptions control plan construction.
type PlanOptions struct {
	// Update refreshes the package index before installing.
	Update bool
	// NoSudo never prepends sudo, even when not running as root.
	NoSudo bool
}

// NewPlan builds the plan for installing packages with an already
// detected manager. Callers detect first: the package list is keyed by
// the manager's family.
func NewPlan(manager Manager, packages []string, opts PlanOptions) (Plan, error) {
	sudo, err := needsSudo(manager, os.Geteuid(), opts.NoSudo)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Manager:  manager,
		Update:   opts.Update,
		Packages: packages,
		Sudo:     sudo,
	}, nil
}

// needsSudo decides whether the plan escalates. Root never escalates,
// NoSudo forbids it, and managers like brew refuse root outright.
func needsSudo(m Manager, euid int, noSudo bool) (bool, error) {
	if !m.NeedsRoot || noSudo || euid == 0 {
		return false, nil
	}
	if _, err := exec.LookPath("sudo"); err != nil {
		return false, fmt.Errorf("%s needs root privileges: run as root, install sudo, or set provision.no_sudo", m.Name)
	}
	return true, nil
}

// Commands returns the argv lines the plan will execute, in order. Dry
// runs print these instead of executing.
func (p Plan) Commands() [][]string {
	var prefix []string
	if p.Sudo {
		prefix = []string{"sudo"}
	}

	var out [][]string
	if p.Update && len(p.Manager.UpdateArgs) > 0 {
		argv := append([]string{}, prefix...)
		argv = append(argv, p.Manager.Name)
		argv = append(argv, p.Manager.UpdateArgs...)
		out = append(out, argv)
	}
	if len(p.Packages) > 0 {
		argv := append([]string{}, prefix...)
		argv = append(argv, p.Manager.Name)
		argv = append(argv, p.Manager.InstallArgs...)
		argv = append(argv, p.Packages...)
		out = append(out, argv)
	}
	return out
}

// Run executes the plan's commands in order, streaming output to the
// given writers. The first failing command aborts the run.
func (p Plan) Run(ctx context.Context, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	for _, argv := range p.Commands() {
		log.Debug("provisioning", "cmd", strings.Join(argv, " "))
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("running %s: %w", strings.Join(argv, " "), err)
		}
	}
	return nil
}
