package browser

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/devices"
)

// BrowserConfig holds browser configuration
type BrowserConfig struct {
	DebugPorts   []int  `json:"debugPorts" toml:"debugPorts" yaml:"debugPorts"`       // Ports probed for a running browser, in order
	Dir          string `json:"dir" toml:"dir" yaml:"dir"`                            // Browser data directory (empty = ~/.trailmcp/browser)
	Bin          string `json:"bin" toml:"bin" yaml:"bin"`                            // Browser binary (empty = search, then download)
	AutoDownload bool   `json:"autoDownload" toml:"autoDownload" yaml:"autoDownload"` // Download Chromium if no browser is installed
	Revision     int    `json:"revision" toml:"revision" yaml:"revision"`             // Chromium revision to download (0 = rod's default)
	Headless     bool   `json:"headless" toml:"headless" yaml:"headless"`             // Run a launched browser headless
	NoSandbox    bool   `json:"noSandbox" toml:"noSandbox" yaml:"noSandbox"`          // Disable sandbox (needed for Docker/root)
	Stealth      bool   `json:"stealth" toml:"stealth" yaml:"stealth"`                // Open new tabs through go-rod/stealth
	Device       string `json:"device" toml:"device" yaml:"device"`                   // Device emulation: "clear", "laptop", "iphone-x", etc.
	WindowWidth  int    `json:"windowWidth" toml:"windowWidth" yaml:"windowWidth"`
	WindowHeight int    `json:"windowHeight" toml:"windowHeight" yaml:"windowHeight"`

	// DetachOnExit leaves a browser we attached to running at shutdown.
	// Browsers we launched are always closed.
	DetachOnExit bool `json:"detachOnExit" toml:"detachOnExit" yaml:"detachOnExit"`
	// BlockPrivateNetworks makes goto-page refuse loopback, private and
	// cloud metadata addresses.
	BlockPrivateNetworks bool `json:"blockPrivateNetworks" toml:"blockPrivateNetworks" yaml:"blockPrivateNetworks"`

	Timeout      string `json:"timeout" toml:"timeout" yaml:"timeout"`                // Navigation timeout (e.g., "30s")
	IdleTimeout  string `json:"idleTimeout" toml:"idleTimeout" yaml:"idleTimeout"`    // Longest wait for network idle after load
	IdleDuration string `json:"idleDuration" toml:"idleDuration" yaml:"idleDuration"` // Quiet period that counts as idle
	ProbeTimeout string `json:"probeTimeout" toml:"probeTimeout" yaml:"probeTimeout"` // Liveness and port probe timeout
	ClickTimeout string `json:"clickTimeout" toml:"clickTimeout" yaml:"clickTimeout"` // Element lookup and click timeout
}

// DefaultBrowserConfig returns the default browser configuration
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		DebugPorts:   []int{9222, 9223, 9224},
		AutoDownload: true,
		Headless:     false, // the user logs in to the platform in this window
		Stealth:      true,
		Device:       "clear",
		WindowWidth:  1280,
		WindowHeight: 900,
		Timeout:      "30s",
		IdleTimeout:  "10s",
		IdleDuration: "500ms",
		ProbeTimeout: "2s",
		ClickTimeout: "5s",
	}
}

// ResolveDir returns the browser directory, defaulting to ~/.trailmcp/browser
func (c *BrowserConfig) ResolveDir(baseDir string) string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(baseDir, "browser")
}

// ResolveBinDir returns the chromium download directory
func (c *BrowserConfig) ResolveBinDir(baseDir string) string {
	return filepath.Join(c.ResolveDir(baseDir), "bin")
}

// ResolveProfileDir returns the persistent profile directory
func (c *BrowserConfig) ResolveProfileDir(baseDir string) string {
	return filepath.Join(c.ResolveDir(baseDir), "profile")
}

func resolveDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// ResolveTimeout returns the navigation timeout
func (c *BrowserConfig) ResolveTimeout() time.Duration {
	return resolveDuration(c.Timeout, 30*time.Second)
}

// ResolveIdle returns the network idle wait bound and quiet period
func (c *BrowserConfig) ResolveIdle() (timeout, quiet time.Duration) {
	return resolveDuration(c.IdleTimeout, 10*time.Second), resolveDuration(c.IdleDuration, 500*time.Millisecond)
}

// ResolveProbeTimeout returns the liveness/probe timeout
func (c *BrowserConfig) ResolveProbeTimeout() time.Duration {
	return resolveDuration(c.ProbeTimeout, 2*time.Second)
}

// ResolveClickTimeout returns the element lookup timeout
func (c *BrowserConfig) ResolveClickTimeout() time.Duration {
	return resolveDuration(c.ClickTimeout, 5*time.Second)
}

// ResolveDevice returns the devices.Device for the configured device name.
// Unknown names fall back to "clear" (no emulation, page fills the window).
func (c *BrowserConfig) ResolveDevice() devices.Device {
	switch strings.ToLower(c.Device) {
	case "laptop", "laptop-mdpi":
		return devices.LaptopWithMDPIScreen
	case "laptop-hidpi":
		return devices.LaptopWithHiDPIScreen
	case "laptop-touch":
		return devices.LaptopWithTouch
	case "ipad":
		return devices.IPad
	case "ipad-pro":
		return devices.IPadPro
	case "iphone-x":
		return devices.IPhoneX
	case "pixel-2":
		return devices.Pixel2
	default:
		return devices.Clear
	}
}
