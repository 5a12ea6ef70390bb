package trail

import (
	"context"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Content formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// ExtractContent returns the lesson body of the first container found by the
// site's lesson selectors. A page without one yields "" and no error.
func ExtractContent(ctx context.Context, p Page, site Site, format string) (string, error) {
	switch format {
	case "", FormatText:
		for _, sel := range site.LessonSelectors {
			text, ok, err := p.Text(ctx, sel)
			if err != nil {
				return "", fmt.Errorf("failed to read lesson text: %w", err)
			}
			if ok {
				return strings.TrimSpace(text), nil
			}
		}
		return "", nil

	case FormatMarkdown:
		for _, sel := range site.LessonSelectors {
			html, ok, err := p.HTML(ctx, sel)
			if err != nil {
				return "", fmt.Errorf("failed to read lesson markup: %w", err)
			}
			if !ok {
				continue
			}
			md, err := htmltomarkdown.ConvertString(html)
			if err != nil {
				return "", fmt.Errorf("failed to convert lesson to markdown: %w", err)
			}
			return strings.TrimSpace(md), nil
		}
		return "", nil
	}
	return "", fmt.Errorf("unknown format %q (want %q or %q)", format, FormatText, FormatMarkdown)
}
