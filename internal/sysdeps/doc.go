// Package sysdeps provisions the system packages a Python build
// environment needs: compilers, headers, and the venv module itself.
// It detects the host's package manager, plans the install commands,
// runs them with privilege escalation when required, and tracks when
// the package index was last refreshed.
package sysdeps
