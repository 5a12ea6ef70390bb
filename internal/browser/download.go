package browser

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod/lib/launcher"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
)

// Downloader resolves the browser binary to launch
type Downloader struct {
	bin          string // explicitly configured binary
	binDir       string
	revision     int
	autoDownload bool

	mu      sync.Mutex
	binPath string // cached once resolved

	// overridable in tests
	lookPath func() (string, bool)
	download func() (string, error)
}

// NewDownloader creates a downloader for the given config
func NewDownloader(cfg BrowserConfig, binDir string) *Downloader {
	d := &Downloader{
		bin:          cfg.Bin,
		binDir:       binDir,
		revision:     cfg.Revision,
		autoDownload: cfg.AutoDownload,
		lookPath:     launcher.LookPath,
	}
	d.download = d.fetch
	return d
}

// EnsureBrowser returns a launchable binary. Order: the configured binary,
// an installed Chrome/Chromium, then a downloaded Chromium.
func (d *Downloader) EnsureBrowser() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.binPath != "" {
		if _, err := os.Stat(d.binPath); err == nil {
			return d.binPath, nil
		}
		d.binPath = ""
	}

	if d.bin != "" {
		if _, err := os.Stat(d.bin); err != nil {
			return "", fmt.Errorf("configured browser %s: %w", d.bin, err)
		}
		d.binPath = d.bin
		return d.binPath, nil
	}

	if path, ok := d.lookPath(); ok {
		L_debug("browser: using installed browser", "path", path)
		d.binPath = path
		return path, nil
	}

	if !d.autoDownload {
		return "", fmt.Errorf("no Chrome or Chromium found and autoDownload is disabled")
	}

	path, err := d.download()
	if err != nil {
		return "", err
	}
	d.binPath = path
	return path, nil
}

func (d *Downloader) fetch() (string, error) {
	if err := os.MkdirAll(d.binDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create browser bin directory: %w", err)
	}

	L_info("browser: downloading Chromium", "dir", d.binDir, "revision", d.revision)

	b := launcher.NewBrowser()
	b.RootDir = d.binDir
	if d.revision > 0 {
		b.Revision = d.revision
	}

	path, err := b.Get()
	if err != nil {
		return "", fmt.Errorf("failed to download browser: %w", err)
	}
	L_info("browser: ready", "path", path)
	return path, nil
}
