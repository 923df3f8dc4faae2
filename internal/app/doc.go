// Package app wires configuration, item sources, the packer, exporters,
// metrics and run history together for the command-line interface. It keeps
// the main package focused on flag parsing and exit codes.
package app
