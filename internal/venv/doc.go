// Package venv builds and inspects Python virtual environments. Creation
// shells out to `python -m venv`; inspection reads the pyvenv.cfg marker
// and checks the embedded interpreter. Activate produces the environment
// mutations that `source bin/activate` would apply, for use by child
// processes.
package venv
