package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
	"github.com/roelfdiedericks/trailmcp/internal/trail"
)

// Manager owns the one browser trailmcp drives. It attaches to a browser
// already listening on a debug port when there is one, and launches its own
// on the persistent profile otherwise. Manager implements
// trail.BrowserProvider.
type Manager struct {
	config     BrowserConfig
	downloader *Downloader
	profile    *Profile

	mu       sync.Mutex
	browser  *rod.Browser
	attached bool
	closed   bool

	// overridable in tests
	resolveURL func(host string) (string, error)
}

// NewManager creates a manager. baseDir is the trailmcp data directory; no
// browser is touched until Acquire.
func NewManager(cfg BrowserConfig, baseDir string) *Manager {
	m := &Manager{
		config:     cfg,
		downloader: NewDownloader(cfg, cfg.ResolveBinDir(baseDir)),
		profile:    NewProfile(cfg.ResolveProfileDir(baseDir)),
		resolveURL: launcher.ResolveURL,
	}
	L_debug("browser: manager initialized",
		"debugPorts", cfg.DebugPorts,
		"profileDir", m.profile.Dir(),
		"headless", cfg.Headless,
		"stealth", cfg.Stealth,
	)
	return m
}

// Profile returns the persistent profile
func (m *Manager) Profile() *Profile {
	return m.profile
}

// Config returns the current configuration
func (m *Manager) Config() BrowserConfig {
	return m.config
}

// Acquire returns the browser, attaching or launching on first use and
// whenever the previous one stopped answering.
func (m *Manager) Acquire(ctx context.Context) (trail.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("browser manager is closed")
	}

	if m.browser != nil {
		if m.connected(ctx) {
			return m.wrap(), nil
		}
		L_debug("browser: existing browser disconnected, reconnecting")
		m.browser = nil
		m.attached = false
	}

	if b, port, ok := m.attach(); ok {
		L_info("browser: attached to running browser", "port", port)
		m.browser = b
		m.attached = true
	} else {
		b, err := m.launch()
		if err != nil {
			return nil, err
		}
		m.browser = b
		m.attached = false
	}

	// rod defaults to LaptopWithMDPIScreen which constrains the viewport
	m.browser.DefaultDevice(m.config.ResolveDevice())
	return m.wrap(), nil
}

// connected reports whether the cached browser still answers.
// A dead CDP client can panic inside rod; that counts as disconnected.
func (m *Manager) connected(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			L_debug("browser: connection check panicked, browser is dead", "panic", r)
			ok = false
		}
	}()
	b := m.browser.Context(ctx).Timeout(m.config.ResolveProbeTimeout())
	defer b.CancelTimeout()
	_, err := b.Version()
	return err == nil
}

// attach probes the debug ports in order. Failures just move on to the next
// port.
func (m *Manager) attach() (*rod.Browser, int, bool) {
	for _, port := range m.config.DebugPorts {
		u, err := m.resolveURL(fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			L_trace("browser: no browser on debug port", "port", port, "error", err)
			continue
		}
		b := rod.New().ControlURL(u)
		if err := b.Connect(); err != nil {
			L_debug("browser: connect failed", "port", port, "error", err)
			continue
		}
		return b, port, true
	}
	return nil, 0, false
}

// launch starts a browser on the persistent profile. It listens on the
// first debug port so a later trailmcp run can attach to it.
func (m *Manager) launch() (*rod.Browser, error) {
	binPath, err := m.downloader.EnsureBrowser()
	if err != nil {
		return nil, fmt.Errorf("failed to ensure browser: %w", err)
	}

	profileDir, err := m.profile.Ensure()
	if err != nil {
		return nil, err
	}
	m.profile.CleanupStaleLocks()

	l := m.launcher(binPath, profileDir)

	L_debug("browser: launching browser", "bin", binPath, "profileDir", profileDir, "headless", m.config.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	L_info("browser: launched", "controlURL", controlURL)
	return b, nil
}

func (m *Manager) launcher(binPath, profileDir string) *launcher.Launcher {
	l := launcher.New().
		Bin(binPath).
		UserDataDir(profileDir).
		Headless(m.config.Headless).
		Set("restore-last-session").
		Set("hide-crash-restore-bubble").
		Set("disable-session-crashed-bubble").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-dev-shm-usage")

	if len(m.config.DebugPorts) > 0 {
		l = l.RemoteDebuggingPort(m.config.DebugPorts[0])
	}

	// otherwise Chrome opens a tiny window
	if !m.config.Headless && m.config.WindowWidth > 0 && m.config.WindowHeight > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", m.config.WindowWidth, m.config.WindowHeight))
	}

	if m.config.Stealth {
		l = l.Set("disable-blink-features", "AutomationControlled").
			Delete("enable-automation")
	}

	// needed for Docker/root
	if m.config.NoSandbox {
		l = l.Set("no-sandbox")
	}
	return l
}

func (m *Manager) wrap() *rodBrowser {
	return &rodBrowser{browser: m.browser, config: &m.config}
}

// Close shuts down a launched browser. An attached browser is closed too
// unless DetachOnExit is set. Safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.browser == nil {
		return nil
	}
	b := m.browser
	m.browser = nil

	if m.attached && m.config.DetachOnExit {
		L_info("browser: leaving attached browser running")
		return nil
	}
	if err := b.Close(); err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	L_info("browser: closed")
	return nil
}

// rodBrowser adapts rod.Browser to trail.Browser
type rodBrowser struct {
	browser *rod.Browser
	config  *BrowserConfig
}

func (b *rodBrowser) Pages(ctx context.Context) ([]trail.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages, err := b.browser.Pages()
	if err != nil {
		return nil, err
	}
	out := make([]trail.Page, 0, len(pages))
	for _, p := range pages {
		out = append(out, newPage(p, b.config))
	}
	return out, nil
}

func (b *rodBrowser) NewPage(ctx context.Context) (trail.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		p   *rod.Page
		err error
	)
	if b.config.Stealth {
		p, err = stealth.Page(b.browser)
	} else {
		p, err = b.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return newPage(p, b.config), nil
}
