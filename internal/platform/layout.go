package platform

import (
	"path/filepath"
	"runtime"
)

// VenvBinDir returns the directory inside a virtual environment that holds
// executables: bin/ on Unix, Scripts\ on Windows.
func VenvBinDir(venvDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvDir, "Scripts")
	}
	return filepath.Join(venvDir, "bin")
}

// VenvPython returns the path of the interpreter inside a virtual
// environment.
func VenvPython(venvDir string) string {
	return filepath.Join(VenvBinDir(venvDir), ExeName("python"))
}

// ExeName appends the platform executable suffix to a bare binary name.
func ExeName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
