package main

import (
	"fmt"
	"os"

	"github.com/roelfdiedericks/trailmcp/internal/config"
	"github.com/roelfdiedericks/trailmcp/internal/paths"
)

// ConfigCmd groups the config subcommands
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a config file with the defaults."`
	Show ConfigShowCmd `cmd:"" help:"Print the effective config (file plus environment)."`
}

// ConfigInitCmd writes the default config
type ConfigInitCmd struct {
	Format string `help:"File format." enum:"json,toml,yaml" default:"json"`
	Force  bool   `help:"Overwrite an existing file (the old one is kept as .bak)."`
	Path   string `arg:"" optional:"" type:"path" help:"Where to write (default: ~/.trailmcp/trailmcp.<format>)."`
}

func (c *ConfigInitCmd) Run() error {
	path := c.Path
	if path == "" {
		var err error
		if path, err = paths.DefaultConfigPath("." + c.Format); err != nil {
			return err
		}
	}
	if f := config.FormatOf(path); f != "" && c.Path != "" {
		c.Format = f
	}

	if err := config.Write(path, config.Default(), c.Force); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s config to %s\n", c.Format, path)
	return nil
}

// ConfigShowCmd prints the effective config
type ConfigShowCmd struct {
	Format string `help:"Output format." enum:"json,toml,yaml" default:"json"`
}

func (c *ConfigShowCmd) Run(g *Globals) error {
	cfg, path, err := g.load()
	if err != nil {
		return err
	}
	data, err := config.Encode(cfg, c.Format)
	if err != nil {
		return err
	}
	if path == "" {
		path = "(none, using defaults)"
	}
	fmt.Fprintf(os.Stderr, "# config file: %s\n", path)
	_, err = os.Stdout.Write(data)
	return err
}
