// Package interpreter locates a host Python installation and checks it
// against a project's version constraint. Discovery prefers an explicit
// binary (manifest or config), then the PYBOOT_PYTHON environment variable,
// then python3 and python on PATH; the chosen interpreter is probed to read
// its real version.
package interpreter
