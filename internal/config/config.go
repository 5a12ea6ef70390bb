// Package config loads trailmcp configuration.
//
// Sources, later wins: built-in defaults, the config file (JSON, TOML or
// YAML, chosen by extension), then TRAILMCP_* environment variables.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/roelfdiedericks/trailmcp/internal/browser"
	"github.com/roelfdiedericks/trailmcp/internal/paths"
	"github.com/roelfdiedericks/trailmcp/internal/trail"
)

// EnvPrefix is the prefix of environment overrides (TRAILMCP_LOG_LEVEL, ...)
const EnvPrefix = "trailmcp"

// Config represents the trailmcp configuration
type Config struct {
	Log      LogConfig             `json:"log" toml:"log" yaml:"log"`
	Browser  browser.BrowserConfig `json:"browser" toml:"browser" yaml:"browser"`
	Site     trail.Site            `json:"site" toml:"site" yaml:"site"`
	Timeouts trail.Timeouts        `json:"timeouts" toml:"timeouts" yaml:"timeouts"`

	// Watch reloads the site section when the config file changes
	Watch bool `json:"watch" toml:"watch" yaml:"watch"`
}

// LogConfig controls the logger. Output always goes to stderr.
type LogConfig struct {
	Level      string `json:"level" toml:"level" yaml:"level"` // trace, debug, info, warn, error
	File       string `json:"file" toml:"file" yaml:"file"`    // optional copy of the log
	ShowCaller bool   `json:"showCaller" toml:"showCaller" yaml:"showCaller"`
}

// envOverrides maps TRAILMCP_* variables. Pointers and empty values mean
// "not set".
type envOverrides struct {
	LogLevel             string   `envconfig:"LOG_LEVEL"`
	LogFile              string   `envconfig:"LOG_FILE"`
	DebugPorts           []int    `envconfig:"DEBUG_PORTS"`
	BrowserBin           string   `envconfig:"BROWSER_BIN"`
	BrowserDir           string   `envconfig:"BROWSER_DIR"`
	Headless             *bool    `envconfig:"HEADLESS"`
	NoSandbox            *bool    `envconfig:"NO_SANDBOX"`
	Stealth              *bool    `envconfig:"STEALTH"`
	AutoDownload         *bool    `envconfig:"AUTO_DOWNLOAD"`
	DetachOnExit         *bool    `envconfig:"DETACH_ON_EXIT"`
	BlockPrivateNetworks *bool    `envconfig:"BLOCK_PRIVATE_NETWORKS"`
	SiteDomains          []string `envconfig:"SITE_DOMAINS"`
	Watch                *bool    `envconfig:"WATCH"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info"},
		Browser:  browser.DefaultBrowserConfig(),
		Site:     trail.DefaultSite(),
		Timeouts: trail.DefaultTimeouts(),
		Watch:    true,
	}
}

// Load builds the effective configuration. An empty path means "look in the
// usual places"; finding no file there is fine. The returned path is the
// file actually read, or "".
func Load(path string) (*Config, string, error) {
	if path == "" {
		found, err := paths.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	cfg := Default()
	if path != "" {
		expanded, err := paths.ExpandTilde(path)
		if err != nil {
			return nil, "", err
		}
		path = expanded

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
		if err := Decode(path, data, cfg); err != nil {
			return nil, "", err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", err
	}
	if err := cfg.fillDefaults(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Decode parses data onto cfg, choosing the format from path's extension.
// Fields missing from the file keep the values already in cfg.
func Decode(path string, data []byte, cfg *Config) error {
	var err error
	switch format := FormatOf(path); format {
	case "json":
		err = json.Unmarshal(data, cfg)
	case "toml":
		_, err = toml.Decode(string(data), cfg)
	case "yaml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q (use .json, .toml or .yaml)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Encode renders cfg in the given format (json, toml or yaml)
func Encode(cfg *Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported config format %q", format)
}

// FormatOf returns json, toml or yaml for a config path, or "".
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}

	setString(&c.Log.Level, env.LogLevel)
	setString(&c.Log.File, env.LogFile)
	setString(&c.Browser.Bin, env.BrowserBin)
	setString(&c.Browser.Dir, env.BrowserDir)
	if len(env.DebugPorts) > 0 {
		c.Browser.DebugPorts = env.DebugPorts
	}
	if len(env.SiteDomains) > 0 {
		c.Site.Domains = env.SiteDomains
	}
	setBool(&c.Browser.Headless, env.Headless)
	setBool(&c.Browser.NoSandbox, env.NoSandbox)
	setBool(&c.Browser.Stealth, env.Stealth)
	setBool(&c.Browser.AutoDownload, env.AutoDownload)
	setBool(&c.Browser.DetachOnExit, env.DetachOnExit)
	setBool(&c.Browser.BlockPrivateNetworks, env.BlockPrivateNetworks)
	setBool(&c.Watch, env.Watch)
	return nil
}

// fillDefaults puts defaults back into string and list settings a config
// file left empty. Booleans are not touched: false is a real answer there.
func (c *Config) fillDefaults() error {
	def := Default()
	if err := mergo.Merge(&c.Site, def.Site); err != nil {
		return fmt.Errorf("failed to merge site defaults: %w", err)
	}
	if err := mergo.Merge(&c.Timeouts, def.Timeouts); err != nil {
		return fmt.Errorf("failed to merge timeout defaults: %w", err)
	}
	if err := mergo.Merge(&c.Log, def.Log); err != nil {
		return fmt.Errorf("failed to merge log defaults: %w", err)
	}
	if len(c.Browser.DebugPorts) == 0 {
		c.Browser.DebugPorts = def.Browser.DebugPorts
	}
	return nil
}

// SiteWithDefaults fills the empty parts of site from the built-in site.
func SiteWithDefaults(site trail.Site) (trail.Site, error) {
	if err := mergo.Merge(&site, trail.DefaultSite()); err != nil {
		return site, err
	}
	return site, nil
}
