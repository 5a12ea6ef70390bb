// Command trailmcp serves Trailhead lesson and quiz tools over MCP stdio.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/roelfdiedericks/trailmcp/internal/browser"
	"github.com/roelfdiedericks/trailmcp/internal/config"
	"github.com/roelfdiedericks/trailmcp/internal/logging"
	"github.com/roelfdiedericks/trailmcp/internal/paths"
)

var version = "0.1.0"

// Globals are the flags every command sees
type Globals struct {
	Config string `help:"Config file (default: ./trailmcp.{json,toml,yaml}, then ~/.trailmcp/)." short:"c" type:"path" placeholder:"FILE"`
	Debug  bool   `help:"Log at debug level." short:"d"`
	Trace  bool   `help:"Log at trace level."`
}

// CLI is the command tree
type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Run the MCP server on stdio (default)."`
	Version VersionCmd `cmd:"" help:"Print the version."`
	Tools   ToolsCmd   `cmd:"" help:"List the tools the server exposes."`
	Conf    ConfigCmd  `cmd:"" name:"config" help:"Manage the config file."`
	Profile ProfileCmd `cmd:"" help:"Inspect or wipe the browser profile."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("trailmcp"),
		kong.Description("MCP server that reads Trailhead lessons and answers their quizzes in a real browser."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	err := ctx.Run(&cli.Globals)
	logging.Close()
	ctx.FatalIfErrorf(err)
}

// load reads the config and sets up logging on stderr
func (g *Globals) load() (*config.Config, string, error) {
	cfg, path, err := config.Load(g.Config)
	if err != nil {
		return nil, "", err
	}

	level, ok := logging.ParseLevel(cfg.Log.Level)
	switch {
	case g.Trace:
		level = logging.LevelTrace
	case g.Debug:
		level = logging.LevelDebug
	}
	logging.Init(&logging.Config{
		Level:      level,
		TimeFormat: "15:04:05",
		ShowCaller: cfg.Log.ShowCaller,
		File:       cfg.Log.File,
	})
	if !ok {
		logging.L_warn("config: unknown log level, using info", "level", cfg.Log.Level)
	}
	if path != "" {
		logging.L_debug("config: loaded", "path", path)
	}
	return cfg, path, nil
}

// manager builds the browser manager on the trailmcp data directory
func manager(cfg *config.Config) (*browser.Manager, error) {
	base, err := paths.BaseDir()
	if err != nil {
		return nil, err
	}
	return browser.NewManager(cfg.Browser, base), nil
}

// VersionCmd prints the version
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("trailmcp %s\n", version)
	return nil
}
