package trail

import (
	"context"
	"time"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
)

// waitForAny polls until one of selectors matches or timeout passes.
// Running out of time is not an error; callers treat it as "absent".
func waitForAny(ctx context.Context, p Page, selectors []string, timeout, poll time.Duration) (string, bool) {
	if len(selectors) == 0 {
		return "", false
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if sel, ok := firstExisting(ctx, p, selectors); ok {
			return sel, true
		}
		if time.Now().After(deadline) {
			return "", false
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-ticker.C:
		}
	}
}

// expandChallenge opens a collapsed quiz: it waits briefly for the challenge
// container, clicks it and then waits for a quiz widget. Every step is best
// effort.
func expandChallenge(ctx context.Context, p Page, site Site, w waits) {
	sel, ok := waitForAny(ctx, p, site.ChallengeSelectors, w.challenge, w.poll)
	if !ok {
		L_trace("trail: no challenge container")
		return
	}
	if err := p.Click(ctx, sel); err != nil {
		L_debug("trail: challenge click failed", "selector", sel, "error", err)
	}
	if _, ok := waitForAny(ctx, p, site.QuizMarkers, w.quizWidget, w.poll); !ok {
		L_debug("trail: quiz widget did not appear", "timeout", w.quizWidget)
	}
}
