// Package trail implements the lesson and quiz automation for the learning
// platform: choosing the tab to work on, reading lesson text, reading and
// answering quizzes, navigation and selector diagnostics.
//
// Everything here talks to the browser through the Page and Browser
// interfaces. internal/browser provides the go-rod implementation.
//
// Selectors passed to a Page are deep selectors: a plain CSS selector matches
// inside every shadow root on the page, and "a >>> b" looks for b inside the
// shadow roots (or subtrees) of the elements matched by a.
package trail

import (
	"context"
	"errors"
)

// ErrElementNotFound is returned by Page methods that need an element which
// is not on the page.
var ErrElementNotFound = errors.New("element not found")

// Page is one browser tab.
type Page interface {
	// Alive reports whether a trivial script can be evaluated on the tab.
	Alive(ctx context.Context) bool
	// URL returns the tab's current address, or "" if it cannot be read.
	URL(ctx context.Context) string
	Title(ctx context.Context) (string, error)
	// HasFocus reports document.hasFocus() for the tab.
	HasFocus(ctx context.Context) bool

	Exists(ctx context.Context, selector string) bool
	// Text returns the rendered text of the first element matching selector.
	Text(ctx context.Context, selector string) (text string, found bool, err error)
	// HTML returns the outer HTML of the first element matching selector with
	// every shadow root serialized inline inside its host.
	HTML(ctx context.Context, selector string) (html string, found bool, err error)

	Click(ctx context.Context, selector string) error
	ClickByID(ctx context.Context, id string) error
	// Probe looks only at the first element matching selector.
	Probe(ctx context.Context, selector string) (found, enabled bool)
	// ClickButtonWithText clicks the first <button> whose trimmed visible text
	// equals one of labels, and returns the label that matched.
	ClickButtonWithText(ctx context.Context, labels []string) (label string, clicked bool, err error)

	// Navigate loads url and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	Inspect(ctx context.Context, selector string, limit int) (*Inspection, error)
}

// Browser is a running, controllable browser.
type Browser interface {
	Pages(ctx context.Context) ([]Page, error)
	NewPage(ctx context.Context) (Page, error)
}

// BrowserProvider hands out the process' browser, creating it on first use.
type BrowserProvider interface {
	Acquire(ctx context.Context) (Browser, error)
	Close() error
}

// ElementInfo describes one element matched by a debug query.
type ElementInfo struct {
	Tag        string            `json:"tag"`
	ID         string            `json:"id"`
	Classes    []string          `json:"classes"`
	Attributes map[string]string `json:"attributes"`
	Text       string            `json:"text"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Enabled    bool              `json:"enabled"`
	Visible    bool              `json:"visible"`
	Parent     string            `json:"parent"`
}

// Inspection is the result of a debug query.
type Inspection struct {
	Count    int           `json:"count"`
	Elements []ElementInfo `json:"elements"`
}
