package trail

import (
	"context"
	"fmt"
	"strings"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
	. "github.com/roelfdiedericks/trailmcp/internal/metrics"
)

// Submission outcome lines
const (
	msgNoSubmitButton = "Could not find submit button"
	msgUnconfirmed    = "Quiz submitted, but completion could not be confirmed. " +
		"Some answers may be wrong; check the page for feedback."
	msgCompleted = "Quiz completed successfully!"
)

// SubmitAnswers selects every option in optionIDs, submits the quiz and
// reports what happened, one line per step. Failures along the way end up
// in the text; nothing here aborts early except a missing submit button.
func SubmitAnswers(ctx context.Context, p Page, site Site, t Timeouts, optionIDs []string) string {
	w := t.resolve()
	expandChallenge(ctx, p, site, w)

	var lines []string
	for _, id := range optionIDs {
		if err := p.ClickByID(ctx, id); err != nil {
			L_debug("trail: option click failed", "id", id, "error", err)
			lines = append(lines, fmt.Sprintf("Failed to select option %s: %v", id, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("Selected option %s", id))
	}

	submit, ok := findSubmitButton(ctx, p, site)
	if !ok {
		lines = append(lines, msgNoSubmitButton)
		MetricOutcome("quiz", "submit", "no-submit-button")
		return strings.Join(lines, "\n")
	}
	if err := p.Click(ctx, submit); err != nil {
		lines = append(lines, fmt.Sprintf("Failed to click submit button: %v", err))
		MetricOutcome("quiz", "submit", "click-failed")
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "Submitted answers")

	if _, ok := waitForAny(ctx, p, site.CompletionSelectors, w.completion, w.poll); !ok {
		lines = append(lines, msgUnconfirmed)
		MetricOutcome("quiz", "submit", "unconfirmed")
		return strings.Join(lines, "\n")
	}
	lines = append(lines, msgCompleted)
	MetricOutcome("quiz", "submit", "completed")

	label, clicked, err := p.ClickButtonWithText(ctx, site.NextLessonLabels)
	switch {
	case err != nil:
		lines = append(lines, fmt.Sprintf("Could not move on to the next lesson: %v", err))
	case clicked:
		lines = append(lines, fmt.Sprintf("Moved on to the next lesson (%q).", label))
	default:
		lines = append(lines, "No next lesson button found.")
	}
	return strings.Join(lines, "\n")
}

// findSubmitButton walks the submit selectors and probes only the first
// element each one matches. The first found and enabled one wins.
func findSubmitButton(ctx context.Context, p Page, site Site) (string, bool) {
	for _, sel := range site.SubmitSelectors {
		found, enabled := p.Probe(ctx, sel)
		if found && enabled {
			return sel, true
		}
		if found {
			L_debug("trail: submit button disabled", "selector", sel)
		}
	}
	return "", false
}
