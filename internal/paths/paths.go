// Package paths provides centralized path resolution for trailmcp.
// This package has NO internal imports (only stdlib) to avoid import cycles.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigBaseName is the file name (without extension) of the config file.
const ConfigBaseName = "trailmcp"

// ConfigExtensions lists the supported config formats in lookup order.
var ConfigExtensions = []string{".json", ".toml", ".yaml", ".yml"}

// BaseDir returns the trailmcp base directory (~/.trailmcp).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".trailmcp"), nil
}

// DataPath returns a path within the base directory (~/.trailmcp/<subpath>).
func DataPath(subpath string) (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, subpath), nil
}

// ConfigPath returns the active config file path.
// Priority: ./trailmcp.<ext> (current dir) > ~/.trailmcp/trailmcp.<ext>
// Returns ("", nil) if no config exists - this is a valid state, not an error.
func ConfigPath() (string, error) {
	for _, ext := range ConfigExtensions {
		local := ConfigBaseName + ext
		if _, err := os.Stat(local); err == nil {
			abs, err := filepath.Abs(local)
			if err != nil {
				return "", fmt.Errorf("failed to get absolute path: %w", err)
			}
			return abs, nil
		}
	}

	for _, ext := range ConfigExtensions {
		global, err := DataPath(ConfigBaseName + ext)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// DefaultConfigPath returns the location new configs are written to.
func DefaultConfigPath(ext string) (string, error) {
	if ext == "" {
		ext = ".json"
	}
	return DataPath(ConfigBaseName + ext)
}

// ExpandTilde expands a path that starts with ~ to the user's home directory.
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if len(path) == 1 {
		return home, nil
	}
	return filepath.Join(home, path[1:]), nil
}
