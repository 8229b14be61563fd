// Package cli implements the pyboot command tree. Each command lives in
// its own file and registers itself on the root command in init().
package cli
