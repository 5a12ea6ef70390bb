package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roelfdiedericks/trailmcp/internal/trail"
)

func (s *Server) registerAll() {
	register(s, ContentTool,
		"Return the text of the Trailhead lesson in the active browser tab. "+
			"Set format to markdown to keep headings, lists and links.",
		s.content)

	register(s, QuizTool,
		"Return the quiz of the current lesson as JSON: questions with their options, "+
			"each option carrying the id to pass to answer-trail-quiz.",
		s.quiz)

	register(s, AnswerTool,
		"Select the given quiz options, submit the quiz and report the outcome. "+
			"Moves on to the next lesson when the quiz is passed.",
		s.answer)

	register(s, GotoTool,
		"Open a URL in the active browser tab and return the page title.",
		s.gotoPage)

	register(s, DebugTool,
		"Describe the elements a CSS selector matches on the active tab. "+
			"Shadow roots are searched; a >>> b steps explicitly into a's shadow root.",
		s.debug)
}

func (s *Server) content(ctx context.Context, in contentInput) (string, error) {
	return s.backend.Content(ctx, strings.ToLower(strings.TrimSpace(in.Format)))
}

// quiz reports extraction problems in the JSON error field. Only a page that
// cannot be used at all is a tool error.
func (s *Server) quiz(ctx context.Context, _ quizInput) (string, error) {
	q, err := s.backend.Quiz(ctx)
	if err != nil {
		return "", err
	}
	if q.Questions == nil {
		q.Questions = []trail.QuizQuestion{}
	}
	out, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode quiz: %w", err)
	}
	return string(out), nil
}

func (s *Server) answer(ctx context.Context, in answerInput) (string, error) {
	return s.backend.Answer(ctx, in.OptionIDs)
}

func (s *Server) gotoPage(ctx context.Context, in gotoInput) (string, error) {
	title, err := s.backend.Goto(ctx, strings.TrimSpace(in.URL))
	if err != nil {
		return "", err
	}
	return "Successfully navigated to: " + title, nil
}

func (s *Server) debug(ctx context.Context, in debugInput) (string, error) {
	sel := strings.TrimSpace(in.Selector)
	if sel == "" {
		return "", errors.New("selector is required")
	}
	return s.backend.Debug(ctx, sel, in.Verbose)
}
