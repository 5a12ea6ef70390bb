package trail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
	. "github.com/roelfdiedericks/trailmcp/internal/metrics"
)

// ErrIneligiblePage is returned when the selected tab is not a lesson page.
var ErrIneligiblePage = errors.New("the current page is not a Trailhead lesson. " +
	"Open a Trailhead unit in the browser (or use goto-page) and try again")

// MultipleCandidatesError is returned when more than one open tab is on the
// learning platform and there is no way to tell which one the user means.
type MultipleCandidatesError struct {
	URLs []string
}

func (e *MultipleCandidatesError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "found %d open tabs on the learning platform; close all but one and try again:", len(e.URLs))
	for _, u := range e.URLs {
		b.WriteString("\n- ")
		b.WriteString(u)
	}
	return b.String()
}

// SelectPage picks the tab the tools operate on. A live cached page always
// wins. Otherwise exactly one tab on the site is used, several are an error,
// and with none the focused tab (or the first one) is used.
func SelectPage(ctx context.Context, b Browser, site Site, cached Page) (Page, error) {
	if cached != nil && cached.Alive(ctx) {
		MetricOutcome("select", "", "cached")
		return cached, nil
	}

	pages, err := b.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}

	var live []Page
	for _, p := range pages {
		if p.Alive(ctx) {
			live = append(live, p)
		}
	}
	if len(live) == 0 {
		L_debug("trail: no usable tabs, opening a new one")
		p, err := b.NewPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open a new tab: %w", err)
		}
		MetricOutcome("select", "", "new-tab")
		return p, nil
	}

	var matches []Page
	var urls []string
	for _, p := range live {
		u := p.URL(ctx)
		if site.MatchesURL(u) {
			matches = append(matches, p)
			urls = append(urls, u)
		}
	}
	switch {
	case len(matches) == 1:
		MetricOutcome("select", "", "site-tab")
		return matches[0], nil
	case len(matches) > 1:
		MetricOutcome("select", "", "ambiguous")
		return nil, &MultipleCandidatesError{URLs: urls}
	}

	for _, p := range live {
		if p.HasFocus(ctx) {
			MetricOutcome("select", "", "focused")
			return p, nil
		}
	}
	MetricOutcome("select", "", "first-tab")
	return live[0], nil
}

// Eligible reports whether p shows a lesson: its host belongs to the site and
// a lesson body is present. Foreign hosts are rejected without touching the DOM.
func Eligible(ctx context.Context, p Page, site Site) bool {
	if !site.MatchesURL(p.URL(ctx)) {
		return false
	}
	_, ok := firstExisting(ctx, p, site.LessonSelectors)
	return ok
}

// firstExisting returns the first selector in the list that matches anything.
func firstExisting(ctx context.Context, p Page, selectors []string) (string, bool) {
	for _, sel := range selectors {
		if p.Exists(ctx, sel) {
			return sel, true
		}
	}
	return "", false
}
