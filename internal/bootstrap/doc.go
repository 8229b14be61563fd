// Package bootstrap sequences the phases that take a project from bare
// checkout to running process: system provisioning, virtual environment
// creation, dependency installation, and launch. Steps run in order and
// the first failure aborts the run; later steps are recorded as skipped
// instead of attempted.
package bootstrap
