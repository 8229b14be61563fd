// Package config manages user-level settings stored at ~/.pyboot/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the preferred Python binary, the default virtual environment directory,
// and pip/provisioner tuning. Every key can also be supplied through the
// PYBOOT_* environment.
package config
