package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pyboot-dev/pyboot/internal/branding"
	"github.com/pyboot-dev/pyboot/internal/config"
	"github.com/pyboot-dev/pyboot/internal/updater"
)

var (
	upgradeCheck   bool
	upgradeForce   bool
	upgradeVersion string
)

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeCheck, "check", false, "Only check for updates, don't install")
	upgradeCmd.Flags().BoolVar(&upgradeForce, "force", false, "Force upgrade even if already on latest version")
	upgradeCmd.Flags().StringVar(&upgradeVersion, "version", "", "Install a specific version (e.g., 1.2.0)")

	rootCmd.AddCommand(upgradeCmd)
}

var upgradeCmd = &cobra.Command{
	Use:     "upgrade",
	Aliases: []string{"self-update"},
	Short:   "Upgrade pyboot to the latest version",
	Long: `Downloads and installs the latest version of pyboot from GitHub releases
or a configured mirror.

  pyboot upgrade                  # upgrade to latest
  pyboot upgrade --check          # check only
  pyboot upgrade --version 1.2.0  # install specific version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolve mirror from config or env var.
		mirror := config.UpdateMirror()
		if envMirror := os.Getenv(branding.EnvVar("MIRROR")); envMirror != "" {
			mirror = envMirror
		}

		var opts []updater.Option
		if mirror != "" {
			opts = append(opts, updater.WithMirror(mirror))
		}

		u := updater.New(buildVersion, opts...)

		// Fetch release.
		var release *updater.Release
		var err error
		if upgradeVersion != "" {
			fmt.Fprintf(os.Stderr, "Checking for version %s...\n", upgradeVersion)
			release, err = u.CheckSpecificVersion(upgradeVersion)
		} else {
			fmt.Fprintln(os.Stderr, "Checking for updates...")
			release, err = u.CheckLatestVersion()
		}
		if err != nil {
			return fmt.Errorf("checking for updates: %w", err)
		}

		// Compare versions. A source build has no comparable version and is
		// always eligible.
		available, err := updater.IsUpdateAvailable(buildVersion, release.Version)
		if err != nil {
			if buildVersion == "dev" || buildVersion == "" {
				available = true
			} else {
				return fmt.Errorf("comparing versions: %w", err)
			}
		}

		if upgradeCheck {
			if available {
				fmt.Printf("Update available: %s -> %s\n", buildVersion, release.Version)
			} else {
				fmt.Printf("You are on the latest version (%s)\n", buildVersion)
			}
			return nil
		}

		if !available && !upgradeForce {
			fmt.Printf("You are on the latest version (%s)\n", buildVersion)
			return nil
		}

		// Download.
		fmt.Fprintf(os.Stderr, "Downloading %s %s for %s/%s...\n", branding.CLIName(), release.Version, runtime.GOOS, runtime.GOARCH)

		tmpDir, err := os.MkdirTemp("", branding.CLIName()+"-upgrade-*")
		if err != nil {
			return fmt.Errorf("creating temp directory: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		archivePath, err := u.DownloadBinary(release, tmpDir)
		if err != nil {
			return fmt.Errorf("downloading binary: %w", err)
		}

		// Verify checksum.
		fmt.Fprintln(os.Stderr, "Verifying checksum...")
		if err := u.VerifyChecksum(release, archivePath); err != nil {
			return fmt.Errorf("checksum verification failed: %w", err)
		}

		// Extract.
		binPath, err := updater.ExtractBinary(archivePath, tmpDir)
		if err != nil {
			return fmt.Errorf("extracting binary: %w", err)
		}

		// Replace.
		fmt.Fprintln(os.Stderr, "Installing...")
		currentBinary, err := os.Executable()
		if err != nil {
			return fmt.Errorf("finding current binary: %w", err)
		}

		if err := updater.ReplaceBinary(binPath, currentBinary, release.Version); err != nil {
			return err
		}

		// Update cache.
		cache := &updater.VersionCache{
			LatestVersion:   release.Version,
			CurrentVersion:  release.Version,
			UpdateAvailable: false,
		}
		_ = updater.SaveCache(config.Dir(), cache)

		fmt.Printf("Successfully upgraded to %s\n", release.Version)
		return nil
	},
}
