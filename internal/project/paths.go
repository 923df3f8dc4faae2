// Package project persists job files and the local run history as JSON.
package project

import (
	"os"
	"path/filepath"
)

// DefaultDir returns the per-user data directory, ~/.labelnest.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".labelnest")
}

// DefaultHistoryPath returns the default run history file.
func DefaultHistoryPath() string {
	return filepath.Join(DefaultDir(), "history.json")
}

// DefaultJobsDir returns the directory used for job names without a path.
func DefaultJobsDir() string {
	return filepath.Join(DefaultDir(), "jobs")
}

// writeJSON creates missing parent directories and writes data to path.
func writeJSON(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
