package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
)

// ProfileInfo contains information about the browser profile
type ProfileInfo struct {
	Path     string    `json:"path"`
	Exists   bool      `json:"exists"`
	Size     int64     `json:"size"`     // Total size in bytes
	LastUsed time.Time `json:"lastUsed"` // Last modification time
	Locked   bool      `json:"locked"`   // A Chrome singleton lock is present
}

// Profile is the single persistent profile the platform login lives in
type Profile struct {
	dir string
}

// NewProfile returns a handle on the profile directory
func NewProfile(dir string) *Profile {
	return &Profile{dir: dir}
}

// Dir returns the profile directory
func (p *Profile) Dir() string {
	return p.dir
}

// Ensure creates the profile directory if needed
func (p *Profile) Ensure() (string, error) {
	if err := os.MkdirAll(p.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create profile directory: %w", err)
	}
	return p.dir, nil
}

var lockFiles = []string{"SingletonLock", "SingletonCookie", "SingletonSocket"}

// CleanupStaleLocks removes Chrome lock files left behind by a crash.
// Chrome refuses to start on a profile that still has them.
func (p *Profile) CleanupStaleLocks() {
	for _, name := range lockFiles {
		path := filepath.Join(p.dir, name)
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			L_warn("browser: failed to remove stale lock file", "file", path, "error", err)
		} else {
			L_info("browser: removed stale lock file", "file", path)
		}
	}
}

// Info walks the profile and reports its size and age
func (p *Profile) Info() (ProfileInfo, error) {
	info := ProfileInfo{Path: p.dir}

	st, err := os.Stat(p.dir)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("failed to stat profile: %w", err)
	}
	if !st.IsDir() {
		return info, fmt.Errorf("profile path %s is not a directory", p.dir)
	}
	info.Exists = true

	for _, name := range lockFiles {
		if _, err := os.Lstat(filepath.Join(p.dir, name)); err == nil {
			info.Locked = true
		}
	}

	err = filepath.Walk(p.dir, func(_ string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !fi.IsDir() {
			info.Size += fi.Size()
		}
		if fi.ModTime().After(info.LastUsed) {
			info.LastUsed = fi.ModTime()
		}
		return nil
	})
	return info, err
}

// Clear removes all data from the profile (cookies, cache, login) but keeps
// the directory itself.
func (p *Profile) Clear() error {
	entries, err := os.ReadDir(p.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read profile directory: %w", err)
	}

	var failed int
	for _, entry := range entries {
		path := filepath.Join(p.dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			L_warn("browser: failed to remove profile entry", "path", path, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d profile entries", failed)
	}
	L_info("browser: cleared profile", "path", p.dir)
	return nil
}

// FormatSize returns a human-readable size string
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
