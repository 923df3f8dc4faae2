// Package config resolves the labelnest runtime configuration.
//
// Values are merged from four sources, lowest precedence first:
// built-in defaults, environment variables (optionally seeded from a .env
// file), a YAML config file and command-line flags. The merged result is
// validated once, after every source has been applied.
package config
