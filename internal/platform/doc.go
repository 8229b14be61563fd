// Package platform provides cross-platform filesystem and layout helpers:
// permission management (a no-op on Windows, which has no Unix permission
// bits) and the platform-specific shape of a Python virtual environment
// (bin/ vs Scripts/, python vs python.exe).
package platform
