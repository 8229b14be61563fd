// Package manifest handles the dependency declarations a Python project
// carries: the pyboot.yaml project manifest (parsed from YAML and validated
// against an embedded JSON Schema), pip requirements files including -r
// includes and editable installs, PEP 440 version specifiers, and the
// [project] table of pyproject.toml.
package manifest
