package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/config"
	"github.com/pyboot-dev/pyboot/internal/interpreter"
	"github.com/pyboot-dev/pyboot/internal/pip"
	"github.com/pyboot-dev/pyboot/internal/platform"
	"github.com/pyboot-dev/pyboot/internal/sysdeps"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

var (
	checkInterpreter bool
	checkVenv        bool
	checkDeps        bool
	checkEntrypoint  bool
	doctorFix        bool
)

func init() {
	doctorCmd.Flags().BoolVar(&checkInterpreter, "check-interpreter", false, "Verify a usable Python interpreter")
	doctorCmd.Flags().BoolVar(&checkVenv, "check-venv", false, "Verify the virtual environment")
	doctorCmd.Flags().BoolVar(&checkDeps, "check-deps", false, "Verify installed packages against the requirements")
	doctorCmd.Flags().BoolVar(&checkEntrypoint, "check-entrypoint", false, "Verify the entry point")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair what can be repaired (rebuild the venv, set the exec bit)")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the project environment",
	Long:  `Run diagnostic checks on the project: interpreter, virtual environment, installed dependencies, and entry point.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}

		anyFlag := checkInterpreter || checkVenv || checkDeps || checkEntrypoint

		failures := 0
		if !anyFlag || checkInterpreter {
			failures += runInterpreterCheck(cmd, p)
		}
		if !anyFlag || checkVenv {
			failures += runVenvCheck(cmd, p)
		}
		if !anyFlag || checkDeps {
			failures += runDepsCheck(cmd, p)
		}
		if !anyFlag || checkEntrypoint {
			failures += runEntrypointCheck(p)
		}
		if !anyFlag {
			runManagerCheck()
		}

		if failures > 0 {
			return fmt.Errorf("%d check(s) failed", failures)
		}
		return nil
	},
}

func runInterpreterCheck(cmd *cobra.Command, p *project) int {
	fmt.Println("Interpreter check:")

	py, err := interpreter.Find(cmd.Context(), p.Manifest.Python.Binary)
	if err != nil {
		fmt.Printf("  [MISS] %v\n", err)
		return 1
	}
	fmt.Printf("  [ OK ] Python %s at %s\n", py.Raw, py.Path)

	if spec := p.Manifest.Python.Version; spec != "" {
		if err := py.CheckConstraint(spec); err != nil {
			fmt.Printf("  [FAIL] %v\n", err)
			return 1
		}
		fmt.Printf("  [ OK ] satisfies %q\n", spec)
	}
	if pyp, err := p.pyproject(); err != nil {
		fmt.Printf("  [WARN] cannot read pyproject: %v\n", err)
	} else if pyp != nil && pyp.Project.RequiresPython != "" {
		if err := py.CheckConstraint(pyp.Project.RequiresPython); err != nil {
			fmt.Printf("  [FAIL] %v\n", err)
			return 1
		}
		fmt.Printf("  [ OK ] satisfies requires-python %q\n", pyp.Project.RequiresPython)
	}
	return 0
}

func runVenvCheck(cmd *cobra.Command, p *project) int {
	fmt.Println("Virtual environment check:")

	st := venv.Inspect(p.VenvDir)
	switch {
	case !st.Exists:
		if doctorFix {
			return fixVenv(cmd, p, "created")
		}
		fmt.Printf("  [MISS] no virtual environment at %s\n", p.VenvDir)
		return 1
	case !st.Healthy:
		if doctorFix {
			return fixVenv(cmd, p, "rebuilt")
		}
		for _, issue := range st.Issues {
			fmt.Printf("  [FAIL] %s\n", issue)
		}
		return 1
	}

	fmt.Printf("  [ OK ] %s\n", p.VenvDir)
	for _, w := range st.Warnings {
		fmt.Printf("  [WARN] %s\n", w)
	}
	return 0
}

func fixVenv(cmd *cobra.Command, p *project, verb string) int {
	py, err := p.findInterpreter(cmd.Context())
	if err != nil {
		fmt.Printf("  [FAIL] cannot fix: %v\n", err)
		return 1
	}
	err = venv.Create(cmd.Context(), p.VenvDir, venv.CreateOptions{
		Python:             py.Path,
		Prompt:             venvPromptFor(p),
		SystemSitePackages: p.Manifest.Venv.SystemSitePackages,
	})
	if err != nil {
		fmt.Printf("  [FAIL] %v\n", err)
		return 1
	}
	fmt.Printf("  [ OK ] %s %s\n", verb, p.VenvDir)
	return 0
}

func runDepsCheck(cmd *cobra.Command, p *project) int {
	fmt.Println("Dependency check:")

	reqs, err := p.requirementSpecs()
	if err != nil {
		fmt.Printf("  [FAIL] %v\n", err)
		return 1
	}
	if len(reqs) == 0 {
		fmt.Printf("  [INFO] No requirements declared\n")
		return 0
	}

	if st := venv.Inspect(p.VenvDir); !st.Healthy {
		fmt.Printf("  [FAIL] virtual environment not usable, %d requirement(s) unchecked\n", len(reqs))
		return 1
	}
	installed, err := pip.New(p.VenvDir).List(cmd.Context())
	if err != nil {
		fmt.Printf("  [FAIL] %v\n", err)
		return 1
	}

	failures := 0
	for _, s := range pip.CheckSatisfaction(reqs, installed) {
		switch {
		case !s.Present:
			fmt.Printf("  [MISS] %s not installed\n", s.Requirement.Name)
			failures++
		case !s.Satisfied:
			fmt.Printf("  [FAIL] %s: installed %s, want %s\n", s.Requirement.Name, s.Installed, s.Requirement.Specifier)
			failures++
		case !s.Checked:
			fmt.Printf("  [WARN] %s: installed %s not comparable to %q\n", s.Requirement.Name, s.Installed, s.Requirement.Specifier)
		default:
			fmt.Printf("  [ OK ] %s %s\n", s.Requirement.Name, s.Installed)
		}
	}
	return failures
}

func runEntrypointCheck(p *project) int {
	fmt.Println("Entry point check:")

	path := p.entrypointPath()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("  [MISS] %s not found\n", displayPath(path, p.Dir))
		return 1
	}
	if info.IsDir() {
		fmt.Printf("  [FAIL] %s is a directory\n", displayPath(path, p.Dir))
		return 1
	}

	if !platform.IsExecutable(path) {
		if doctorFix {
			if err := platform.EnsureExecutable(path); err != nil {
				fmt.Printf("  [FAIL] %v\n", err)
				return 1
			}
			fmt.Printf("  [ OK ] marked %s executable\n", displayPath(path, p.Dir))
			return 0
		}
		fmt.Printf("  [WARN] %s is not executable (run doctor --fix)\n", displayPath(path, p.Dir))
		return 0
	}
	fmt.Printf("  [ OK ] %s\n", displayPath(path, p.Dir))
	return 0
}

func runManagerCheck() {
	fmt.Println("Package manager check:")

	manager, err := sysdeps.Detect(config.ProvisionManager())
	if err != nil {
		fmt.Printf("  [WARN] %v\n", err)
		return
	}
	fmt.Printf("  [ OK ] %s (%s family)\n", manager.Name, manager.Family)
	if sysdeps.IsStale(sysdeps.DefaultMaxAge) {
		fmt.Printf("  [INFO] Provisioning never ran or is stale\n")
	}
}
