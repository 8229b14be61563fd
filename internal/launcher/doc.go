// Package launcher runs the project entrypoint inside its virtual
// environment: it assembles the child environment in a fixed precedence
// order, wires stdio straight through, and reports the child's exit
// code, mapping signal deaths to 128+N.
package launcher
