package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roelfdiedericks/trailmcp/internal/config"
	. "github.com/roelfdiedericks/trailmcp/internal/logging"
	. "github.com/roelfdiedericks/trailmcp/internal/metrics"
	"github.com/roelfdiedericks/trailmcp/internal/tools"
	"github.com/roelfdiedericks/trailmcp/internal/trail"
)

// ServeCmd runs the MCP server on stdio
type ServeCmd struct {
	Launch  bool `help:"Start the browser before serving and exit if it cannot be started."`
	NoWatch bool `help:"Do not reload the site section when the config file changes."`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, path, err := g.load()
	if err != nil {
		return err
	}

	mgr, err := manager(cfg)
	if err != nil {
		return err
	}
	svc := trail.NewService(trail.NewSession(mgr), cfg.Site, cfg.Timeouts)

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			L_info("serve: shutting down")
			if err := svc.Close(); err != nil {
				L_warn("serve: browser shutdown failed", "error", err)
			}
			for _, line := range MetricSummary() {
				L_info("metrics: %s", line)
			}
		})
	}
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Launch {
		if _, err := mgr.Acquire(ctx); err != nil {
			return fmt.Errorf("failed to start browser: %w", err)
		}
	}

	if path != "" && cfg.Watch && !c.NoWatch {
		w, err := config.NewWatcher(path, config.DefaultDebounce, func(next *config.Config) {
			site, err := config.SiteWithDefaults(next.Site)
			if err != nil {
				L_warn("serve: ignoring reloaded site", "error", err)
				return
			}
			svc.SetSite(site)
			L_info("serve: site reloaded", "domains", site.Domains)
		})
		if err != nil {
			L_warn("serve: config watcher unavailable", "path", path, "error", err)
		} else {
			defer w.Stop()
		}
	}

	srv := tools.NewServer(svc, version)
	L_info("trailmcp %s ready on stdio", version)
	err = srv.Run(ctx, &mcp.StdioTransport{})
	if ctx.Err() != nil {
		L_info("serve: signal received")
		return nil
	}
	if err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// ToolsCmd lists the registered tools
type ToolsCmd struct{}

func (c *ToolsCmd) Run() error {
	fmt.Print(tools.NewServer(nil, version).Summary())
	return nil
}
