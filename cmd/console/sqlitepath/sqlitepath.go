// Package sqlitepath resolves the transcript database location shared by
// the console subcommands.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveSQLitePath returns the transcript database path. An explicit
// override wins; otherwise the database lives under ~/.console, which is
// created if missing.
func ResolveSQLitePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".console")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create %s: %w", dir, err)
	}

	return filepath.Join(dir, "console.db"), nil
}

// ResolveLogPath returns the chat log file path under the same directory
// as the transcript database.
func ResolveLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".console")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create %s: %w", dir, err)
	}

	return filepath.Join(dir, "console.log"), nil
}
