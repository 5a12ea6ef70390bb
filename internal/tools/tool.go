// Package tools exposes the trail operations as MCP tools.
package tools

import (
	"context"

	"github.com/roelfdiedericks/trailmcp/internal/trail"
)

// Tool names as seen by MCP clients
const (
	ContentTool = "get-current-trail-content"
	QuizTool    = "get-trail-quiz-questions"
	AnswerTool  = "answer-trail-quiz"
	GotoTool    = "goto-page"
	DebugTool   = "debug-selector"
)

// Backend is what the tools call into. *trail.Service implements it.
type Backend interface {
	Content(ctx context.Context, format string) (string, error)
	Quiz(ctx context.Context) (trail.QuizStructure, error)
	Answer(ctx context.Context, optionIDs []string) (string, error)
	Goto(ctx context.Context, rawURL string) (string, error)
	Debug(ctx context.Context, selector string, verbose bool) (string, error)
}

// Definition describes a registered tool
type Definition struct {
	Name        string
	Description string
}

type contentInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: text (default) or markdown"`
}

type quizInput struct{}

type answerInput struct {
	OptionIDs []string `json:"optionIds" jsonschema:"Option ids to select, as returned by get-trail-quiz-questions"`
}

type gotoInput struct {
	URL string `json:"url" jsonschema:"Absolute http(s) URL to open in the active tab"`
}

type debugInput struct {
	Selector string `json:"selector" jsonschema:"CSS selector; use >>> to step into a shadow root"`
	Verbose  bool   `json:"verbose,omitempty" jsonschema:"Show more matches and all attributes"`
}
