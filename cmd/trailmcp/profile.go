package main

import (
	"fmt"
	"time"

	"github.com/roelfdiedericks/trailmcp/internal/browser"
)

// ProfileCmd groups the browser profile subcommands
type ProfileCmd struct {
	Info  ProfileInfoCmd  `cmd:"" help:"Show where the profile lives and how big it is."`
	Clear ProfileClearCmd `cmd:"" help:"Delete cookies, cache and login from the profile."`
}

// ProfileInfoCmd prints profile details
type ProfileInfoCmd struct{}

func (c *ProfileInfoCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}
	mgr, err := manager(cfg)
	if err != nil {
		return err
	}

	info, err := mgr.Profile().Info()
	if err != nil {
		return err
	}
	fmt.Printf("Profile: %s\n", info.Path)
	if !info.Exists {
		fmt.Println("Status:  not created yet")
		return nil
	}
	fmt.Printf("Size:    %s\n", browser.FormatSize(info.Size))
	if !info.LastUsed.IsZero() {
		fmt.Printf("Used:    %s\n", info.LastUsed.Format(time.RFC1123))
	}
	if info.Locked {
		fmt.Println("Status:  in use (or a browser exited without cleaning up)")
	}
	return nil
}

// ProfileClearCmd wipes the profile
type ProfileClearCmd struct {
	Force bool `help:"Clear even if a browser appears to be using the profile."`
}

func (c *ProfileClearCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}
	mgr, err := manager(cfg)
	if err != nil {
		return err
	}

	p := mgr.Profile()
	info, err := p.Info()
	if err != nil {
		return err
	}
	if info.Locked && !c.Force {
		return fmt.Errorf("profile %s looks in use; close the browser or pass --force", info.Path)
	}
	if err := p.Clear(); err != nil {
		return err
	}
	fmt.Printf("Cleared %s (%s)\n", info.Path, browser.FormatSize(info.Size))
	return nil
}
