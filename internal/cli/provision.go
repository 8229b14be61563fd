package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/config"
	"github.com/pyboot-dev/pyboot/internal/sysdeps"
)

var (
	provisionDryRun bool
	provisionYes    bool
	provisionUpdate bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Install system build dependencies",
	Long: `Install the system packages the project needs to build its Python
dependencies (compilers, Python headers, venv support).

The package manager is detected from the host. The manifest's
system_packages section selects the package list per manager family;
without one, a built-in list for the detected family is used.`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().BoolVar(&provisionDryRun, "dry-run", false, "print the commands without running them")
	provisionCmd.Flags().BoolVarP(&provisionYes, "yes", "y", false, "skip the confirmation prompt")
	provisionCmd.Flags().BoolVar(&provisionUpdate, "update", true, "refresh the package index before installing")
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	plan, err := resolveProvision(p, provisionUpdate)
	if err != nil {
		return err
	}
	if plan == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to provision on this platform.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Provisioning with %s:\n", plan.Manager.Name)
	for _, argv := range plan.Commands() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", strings.Join(argv, " "))
	}
	if provisionDryRun {
		return nil
	}

	if !provisionYes && !confirm(cmd, "Proceed with provisioning?") {
		fmt.Fprintln(cmd.OutOrStdout(), "Provisioning cancelled.")
		return nil
	}

	if err := plan.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return err
	}
	sysdeps.WriteStamp()

	fmt.Fprintf(cmd.OutOrStdout(), "\u2713 System packages installed (%d)\n", len(plan.Packages))
	return nil
}

// resolveProvision builds the system package plan for the project. A nil
// plan without error means there is nothing to install on this host.
func resolveProvision(p *project, update bool) (*sysdeps.Plan, error) {
	manager, err := sysdeps.Detect(config.ProvisionManager())
	if err != nil {
		// Detection failure is fatal only when the manifest itself asks
		// for system packages.
		if p.SystemPackagesDeclared && packagesRequested(p.Manifest.SystemPackages) {
			return nil, err
		}
		log.Debug("no package manager detected, skipping provisioning", "err", err)
		return nil, nil
	}

	packages := p.Manifest.SystemPackages[manager.Family]
	if len(packages) == 0 {
		return nil, nil
	}

	plan, err := sysdeps.NewPlan(manager, packages, sysdeps.PlanOptions{
		Update: update,
		NoSudo: config.ProvisionNoSudo(),
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func packagesRequested(families map[string][]string) bool {
	for _, pkgs := range families {
		if len(pkgs) > 0 {
			return true
		}
	}
	return false
}
