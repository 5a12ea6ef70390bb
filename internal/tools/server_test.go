package tools

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roelfdiedericks/trailmcp/internal/trail"
)

type stubBackend struct {
	mu    sync.Mutex
	calls []string

	content string
	quiz    trail.QuizStructure
	answer  string
	title   string
	report  string
	err     error
	panic   bool

	gotFormat   string
	gotIDs      []string
	gotURL      string
	gotSelector string
	gotVerbose  bool
}

func (b *stubBackend) record(name string) {
	b.mu.Lock()
	b.calls = append(b.calls, name)
	b.mu.Unlock()
	if b.panic {
		panic("page went away")
	}
}

func (b *stubBackend) Content(ctx context.Context, format string) (string, error) {
	b.record("content")
	b.gotFormat = format
	return b.content, b.err
}

func (b *stubBackend) Quiz(ctx context.Context) (trail.QuizStructure, error) {
	b.record("quiz")
	return b.quiz, b.err
}

func (b *stubBackend) Answer(ctx context.Context, ids []string) (string, error) {
	b.record("answer")
	b.gotIDs = ids
	return b.answer, b.err
}

func (b *stubBackend) Goto(ctx context.Context, url string) (string, error) {
	b.record("goto")
	b.gotURL = url
	return b.title, b.err
}

func (b *stubBackend) Debug(ctx context.Context, sel string, verbose bool) (string, error) {
	b.record("debug")
	b.gotSelector = sel
	b.gotVerbose = verbose
	return b.report, b.err
}

// connect serves backend over in-memory transports and returns a client
// session for it.
func connect(t *testing.T, backend Backend) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := NewServer(backend, "test")
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		cs.Close()
		cancel()
		<-done
	})
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	cs := connect(t, &stubBackend{})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	assert.ElementsMatch(t, []string{ContentTool, QuizTool, AnswerTool, GotoTool, DebugTool}, names)
}

func TestToolResults(t *testing.T) {
	backend := &stubBackend{
		content: "Lesson body",
		quiz: trail.QuizStructure{Questions: []trail.QuizQuestion{{
			Text: "Is Go fun?",
			Options: []trail.QuizOption{
				{ID: "opt-a", Text: "True", Index: 0},
				{ID: "opt-b", Text: "False", Index: 1},
			},
		}}},
		answer: "Selected option opt-a\nSubmitted answers\nQuiz completed successfully!",
		title:  "Lesson 1 | Trailhead",
		report: "Selector: button\nMatches: 2",
	}
	cs := connect(t, backend)

	tests := []struct {
		name  string
		tool  string
		args  map[string]any
		want  string
		check func(t *testing.T)
	}{
		{
			name: "content",
			tool: ContentTool,
			args: map[string]any{"format": " Markdown "},
			want: "Lesson body",
			check: func(t *testing.T) {
				assert.Equal(t, "markdown", backend.gotFormat)
			},
		},
		{
			name: "content default format",
			tool: ContentTool,
			want: "Lesson body",
			check: func(t *testing.T) {
				assert.Equal(t, "", backend.gotFormat)
			},
		},
		{
			name: "answer",
			tool: AnswerTool,
			args: map[string]any{"optionIds": []string{"opt-b", "opt-a"}},
			want: "Quiz completed successfully!",
			check: func(t *testing.T) {
				assert.Equal(t, []string{"opt-b", "opt-a"}, backend.gotIDs)
			},
		},
		{
			name: "goto",
			tool: GotoTool,
			args: map[string]any{"url": "https://example.com/lesson/1"},
			want: "Successfully navigated to: Lesson 1 | Trailhead",
			check: func(t *testing.T) {
				assert.Equal(t, "https://example.com/lesson/1", backend.gotURL)
			},
		},
		{
			name: "debug",
			tool: DebugTool,
			args: map[string]any{"selector": "button", "verbose": true},
			want: "Matches: 2",
			check: func(t *testing.T) {
				assert.Equal(t, "button", backend.gotSelector)
				assert.True(t, backend.gotVerbose)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, cs, tt.tool, tt.args)
			assert.False(t, isErr)
			assert.Contains(t, text, tt.want)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestQuizJSON(t *testing.T) {
	t.Run("questions", func(t *testing.T) {
		cs := connect(t, &stubBackend{quiz: trail.QuizStructure{Questions: []trail.QuizQuestion{{
			Text:    "Pick one",
			Options: []trail.QuizOption{{ID: "opt-a", Text: "True", Index: 0}},
		}}}})
		text, isErr := call(t, cs, QuizTool, nil)
		assert.False(t, isErr)
		assert.JSONEq(t, `{"questions":[{"text":"Pick one","options":[{"id":"opt-a","text":"True","index":0}]}]}`, text)
	})

	t.Run("extraction error is not a tool error", func(t *testing.T) {
		cs := connect(t, &stubBackend{quiz: trail.QuizStructure{Error: "No quiz found on this page"}})
		text, isErr := call(t, cs, QuizTool, nil)
		assert.False(t, isErr)
		assert.JSONEq(t, `{"questions":[],"error":"No quiz found on this page"}`, text)
	})
}

func TestToolErrors(t *testing.T) {
	tests := []struct {
		name    string
		backend *stubBackend
		tool    string
		args    map[string]any
		want    string
	}{
		{
			name:    "ineligible page",
			backend: &stubBackend{err: trail.ErrIneligiblePage},
			tool:    ContentTool,
			want:    trail.ErrIneligiblePage.Error(),
		},
		{
			name:    "ambiguous tabs",
			backend: &stubBackend{err: &trail.MultipleCandidatesError{URLs: []string{"https://a.example.com", "https://b.example.com"}}},
			tool:    QuizTool,
			want:    "https://b.example.com",
		},
		{
			name:    "navigation failure",
			backend: &stubBackend{err: errors.New("navigation to https://nope.invalid failed: net::ERR_NAME_NOT_RESOLVED")},
			tool:    GotoTool,
			args:    map[string]any{"url": "https://nope.invalid"},
			want:    "ERR_NAME_NOT_RESOLVED",
		},
		{
			name:    "blank selector",
			backend: &stubBackend{},
			tool:    DebugTool,
			args:    map[string]any{"selector": "  "},
			want:    "selector is required",
		},
		{
			name:    "panic",
			backend: &stubBackend{panic: true},
			tool:    AnswerTool,
			args:    map[string]any{"optionIds": []string{"opt-a"}},
			want:    "page went away",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := connect(t, tt.backend)
			text, isErr := call(t, cs, tt.tool, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}

	t.Run("server keeps serving after a failed call", func(t *testing.T) {
		backend := &stubBackend{panic: true}
		cs := connect(t, backend)
		_, isErr := call(t, cs, ContentTool, nil)
		assert.True(t, isErr)

		backend.panic = false
		backend.content = "still here"
		text, isErr := call(t, cs, ContentTool, nil)
		assert.False(t, isErr)
		assert.Equal(t, "still here", text)
	})
}

func TestSummary(t *testing.T) {
	srv := NewServer(&stubBackend{}, "test")
	assert.Equal(t, 5, srv.Count())
	assert.True(t, srv.Has(GotoTool))
	assert.False(t, srv.Has("web_fetch"))

	lines := strings.Split(strings.TrimSpace(srv.Summary()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "answer-trail-quiz: Select the given quiz options, submit the quiz and report the outcome.", lines[0])
	assert.Equal(t, "goto-page: Open a URL in the active browser tab and return the page title.", lines[4])
}

func TestTruncateDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"first sentence", "Open a page. Then more.", 100, "Open a page."},
		{"short", "No period here", 100, "No period here"},
		{"word boundary", "alpha beta gamma delta", 12, "alpha beta..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateDescription(tt.in, tt.max))
		})
	}
}
