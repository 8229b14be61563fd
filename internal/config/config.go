package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyboot-dev/pyboot/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Known configuration keys.
const (
	KeyPythonBinary     = "python.binary"
	KeyVenvDir          = "venv.dir"
	KeyPipIndexURL      = "pip.index_url"
	KeyPipExtraArgs     = "pip.extra_args"
	KeyProvisionManager = "provision.manager"
	KeyProvisionNoSudo  = "provision.no_sudo"
	KeyUpdateMirror     = "update.mirror"
)

// Dir returns the path to the PyBoot home directory (~/.pyboot/). The
// PYBOOT_HOME environment variable overrides the default location.
func Dir() string {
	if override := os.Getenv(branding.EnvVar("HOME")); override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.pyboot/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the home directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating home directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// Dotted keys map to underscored variables, e.g. venv.dir → PYBOOT_VENV_DIR.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// PythonBinary returns the configured interpreter binary, empty when unset.
func PythonBinary() string {
	return viper.GetString(KeyPythonBinary)
}

// VenvDir returns the configured virtual environment directory, empty when
// unset (callers fall back to the manifest or the built-in default).
func VenvDir() string {
	return viper.GetString(KeyVenvDir)
}

// PipIndexURL returns an alternate package index URL, empty when unset.
func PipIndexURL() string {
	return viper.GetString(KeyPipIndexURL)
}

// PipExtraArgs returns extra arguments appended to every pip install.
func PipExtraArgs() []string {
	return viper.GetStringSlice(KeyPipExtraArgs)
}

// ProvisionManager returns a forced system package manager name, empty when
// auto-detection should be used.
func ProvisionManager() string {
	return viper.GetString(KeyProvisionManager)
}

// ProvisionNoSudo reports whether sudo elevation is disabled.
func ProvisionNoSudo() bool {
	return viper.GetBool(KeyProvisionNoSudo)
}

// UpdateMirror returns an alternate release download mirror, empty when unset.
func UpdateMirror() string {
	return viper.GetString(KeyUpdateMirror)
}
