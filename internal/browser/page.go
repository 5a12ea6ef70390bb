package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
	"github.com/roelfdiedericks/trailmcp/internal/trail"
)

// rodPage adapts a rod page to trail.Page. Every call is bounded by the
// caller's context and a per-operation timeout from BrowserConfig.
type rodPage struct {
	page *rod.Page
	cfg  *BrowserConfig
}

func newPage(p *rod.Page, cfg *BrowserConfig) *rodPage {
	return &rodPage{page: p, cfg: cfg}
}

// scoped returns a page clone bound to ctx and d. Call CancelTimeout on it.
func (p *rodPage) scoped(ctx context.Context, d time.Duration) *rod.Page {
	return p.page.Context(ctx).Timeout(d)
}

func (p *rodPage) eval(ctx context.Context, js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	pg := p.scoped(ctx, p.cfg.ResolveClickTimeout())
	defer pg.CancelTimeout()
	return pg.Eval(js, args...)
}

// evalFound runs a script returning {found, value} as JSON.
func (p *rodPage) evalFound(ctx context.Context, js, sel string) (string, bool, error) {
	res, err := p.eval(ctx, js, sel)
	if err != nil {
		return "", false, err
	}
	var out struct {
		Found bool   `json:"found"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return "", false, fmt.Errorf("unexpected script result: %w", err)
	}
	return out.Value, out.Found, nil
}

func (p *rodPage) Alive(ctx context.Context) (alive bool) {
	defer func() {
		if r := recover(); r != nil {
			L_debug("browser: liveness check panicked, page is dead", "panic", r)
			alive = false
		}
	}()
	pg := p.scoped(ctx, p.cfg.ResolveProbeTimeout())
	defer pg.CancelTimeout()
	_, err := pg.Eval(jsAlive)
	return err == nil
}

func (p *rodPage) URL(ctx context.Context) string {
	pg := p.scoped(ctx, p.cfg.ResolveProbeTimeout())
	defer pg.CancelTimeout()
	info, err := pg.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) Title(ctx context.Context) (string, error) {
	res, err := p.eval(ctx, jsTitle)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *rodPage) HasFocus(ctx context.Context) bool {
	pg := p.scoped(ctx, p.cfg.ResolveProbeTimeout())
	defer pg.CancelTimeout()
	res, err := pg.Eval(jsHasFocus)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (p *rodPage) Exists(ctx context.Context, sel string) bool {
	res, err := p.eval(ctx, jsExists, sel)
	if err != nil {
		L_trace("browser: exists query failed", "selector", sel, "error", err)
		return false
	}
	return res.Value.Bool()
}

func (p *rodPage) Text(ctx context.Context, sel string) (string, bool, error) {
	return p.evalFound(ctx, jsText, sel)
}

func (p *rodPage) HTML(ctx context.Context, sel string) (string, bool, error) {
	return p.evalFound(ctx, jsHTML, sel)
}

// element resolves a script returning a DOM node (or null) to a rod element.
func (p *rodPage) element(pg *rod.Page, js string, arg interface{}) (*rod.Element, error) {
	obj, err := pg.Evaluate(rod.Eval(js, arg).ByObject())
	if err != nil {
		return nil, err
	}
	if obj.ObjectID == "" {
		return nil, trail.ErrElementNotFound
	}
	return pg.ElementFromObject(obj)
}

// click tries a real mouse click first and falls back to a DOM click for
// controls that are covered or visually hidden (styled radio inputs).
func click(el *rod.Element) error {
	if err := el.ScrollIntoView(); err != nil {
		L_trace("browser: scroll into view failed", "error", err)
	}
	err := el.Click(proto.InputMouseButtonLeft, 1)
	if err == nil {
		return nil
	}
	L_debug("browser: mouse click failed, using DOM click", "error", err)
	if _, jsErr := el.Eval(`function() { this.click(); }`); jsErr != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (p *rodPage) clickWith(ctx context.Context, js string, arg interface{}) error {
	pg := p.scoped(ctx, p.cfg.ResolveClickTimeout())
	defer pg.CancelTimeout()
	el, err := p.element(pg, js, arg)
	if err != nil {
		return err
	}
	return click(el)
}

func (p *rodPage) Click(ctx context.Context, sel string) error {
	return p.clickWith(ctx, jsElement, sel)
}

func (p *rodPage) ClickByID(ctx context.Context, id string) error {
	return p.clickWith(ctx, jsElementByID, id)
}

func (p *rodPage) Probe(ctx context.Context, sel string) (found, enabled bool) {
	res, err := p.eval(ctx, jsProbe, sel)
	if err != nil {
		L_trace("browser: probe failed", "selector", sel, "error", err)
		return false, false
	}
	var out struct {
		Found   bool `json:"found"`
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return false, false
	}
	return out.Found, out.Enabled
}

func (p *rodPage) ClickButtonWithText(ctx context.Context, labels []string) (string, bool, error) {
	pg := p.scoped(ctx, p.cfg.ResolveClickTimeout())
	defer pg.CancelTimeout()

	el, err := p.element(pg, jsButtonWithText, labels)
	if errors.Is(err, trail.ErrElementNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	text, err := el.Text()
	if err != nil {
		return "", false, err
	}
	if err := click(el); err != nil {
		return "", false, err
	}
	return strings.TrimSpace(text), true, nil
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	if p.cfg.BlockPrivateNetworks {
		if err := CheckPublicURL(url); err != nil {
			return err
		}
	}

	idleTimeout, quiet := p.cfg.ResolveIdle()
	idle := p.scoped(ctx, idleTimeout)
	defer idle.CancelTimeout()
	waitIdle := idle.WaitRequestIdle(quiet, nil, nil, nil)

	pg := p.scoped(ctx, p.cfg.ResolveTimeout())
	defer pg.CancelTimeout()

	start := time.Now()
	if err := pg.Navigate(url); err != nil {
		return err
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("page did not finish loading: %w", err)
	}
	waitIdle()
	L_debug("browser: navigated", "url", url, "elapsed", time.Since(start).String())
	return nil
}

func (p *rodPage) Inspect(ctx context.Context, sel string, limit int) (*trail.Inspection, error) {
	res, err := p.eval(ctx, jsInspect, sel, limit)
	if err != nil {
		return nil, err
	}
	var out trail.Inspection
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return nil, fmt.Errorf("unexpected script result: %w", err)
	}
	return &out, nil
}
