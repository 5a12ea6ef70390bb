package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roelfdiedericks/trailmcp/internal/logging"
)

// ErrExists is returned by Write when the target exists and force is off.
var ErrExists = errors.New("config file already exists")

// Write renders cfg in the format implied by path's extension and writes it
// atomically. An existing file is kept as <path>.bak when force is set.
func Write(path string, cfg *Config, force bool) error {
	format := FormatOf(path)
	if format == "" {
		return fmt.Errorf("unsupported config format %q (use .json, .toml or .yaml)", filepath.Ext(path))
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrExists, path)
		}
		if err := copyFile(path, path+".bak"); err != nil {
			logging.L_warn("config: backup failed, continuing with save", "error", err)
		}
	}

	data, err := Encode(cfg, format)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := AtomicWrite(path, data, 0600); err != nil {
		return err
	}
	logging.L_debug("config: saved", "path", path)
	return nil
}

// AtomicWrite writes data to path atomically using temp file + rename.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// same directory, so the rename stays on one filesystem
	tmp, err := os.CreateTemp(dir, ".trailmcp-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp to target: %w", err)
	}

	success = true
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return AtomicWrite(dst, data, 0600)
}
