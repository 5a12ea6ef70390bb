package trail

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Debug report limits
const (
	debugLimit        = 5
	debugLimitVerbose = 20
	snippetLen        = 80
	snippetLenVerbose = 300
)

// DebugSelector runs a deep query for selector and describes what it found.
// It never changes the page.
func DebugSelector(ctx context.Context, p Page, selector string, verbose bool) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return "", fmt.Errorf("selector must not be empty")
	}

	limit, snip := debugLimit, snippetLen
	if verbose {
		limit, snip = debugLimitVerbose, snippetLenVerbose
	}

	res, err := p.Inspect(ctx, selector, limit)
	if err != nil {
		return "", fmt.Errorf("query %q failed: %w", selector, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Selector: %s\n", selector)
	fmt.Fprintf(&b, "Page: %s\n", p.URL(ctx))
	fmt.Fprintf(&b, "Matches: %d\n", res.Count)
	if res.Count == 0 {
		b.WriteString("No elements matched. Shadow roots were searched; use \"host >>> inner\" to target a specific host.\n")
		return b.String(), nil
	}

	for i, el := range res.Elements {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, describeElement(el.Tag, el.ID, el.Classes))
		if text := truncate(normalizeSpace(el.Text), snip); text != "" {
			fmt.Fprintf(&b, "    text: %q\n", text)
		}
		fmt.Fprintf(&b, "    box: x=%.0f y=%.0f w=%.0f h=%.0f\n", el.X, el.Y, el.Width, el.Height)
		fmt.Fprintf(&b, "    enabled: %t  visible: %t\n", el.Enabled, el.Visible)
		if el.Parent != "" {
			fmt.Fprintf(&b, "    parent: %s\n", el.Parent)
		}
		if len(el.Attributes) > 0 && (verbose || len(el.Attributes) <= 4) {
			fmt.Fprintf(&b, "    attributes: %s\n", formatAttributes(el.Attributes, snip))
		}
	}
	if more := res.Count - len(res.Elements); more > 0 {
		fmt.Fprintf(&b, "\n... and %d more\n", more)
	}
	return b.String(), nil
}

func describeElement(tag, id string, classes []string) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(strings.ToLower(tag))
	if id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range classes {
		b.WriteString("." + c)
	}
	b.WriteString(">")
	return b.String()
}

func formatAttributes(attrs map[string]string, snip int) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%q", name, truncate(attrs[name], snip)))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
