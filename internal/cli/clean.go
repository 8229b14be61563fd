package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/sysdeps"
	"github.com/pyboot-dev/pyboot/internal/venv"
)

var (
	cleanAll bool
	cleanYes bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the virtual environment",
	Long: `Remove the project virtual environment. With --all the provision
stamp is cleared too, so the next up provisions again.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "also clear provisioning state")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	st := venv.Inspect(p.VenvDir)
	if !st.Exists && !cleanAll {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clean.")
		return nil
	}

	if st.Exists {
		if !cleanYes && !confirm(cmd, fmt.Sprintf("Remove virtual environment at %s?", p.VenvDir)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Clean cancelled.")
			return nil
		}
		if err := venv.Remove(p.VenvDir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", p.VenvDir)
	}

	if cleanAll {
		if err := os.Remove(sysdeps.StampPath()); err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared provisioning state")
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("removing provision stamp: %w", err)
		}
	}
	return nil
}
