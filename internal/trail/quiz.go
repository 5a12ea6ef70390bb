package trail

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
)

// QuizOption is one answer choice. ID is the DOM id of the element that
// selects the option; it is exactly what SubmitAnswers accepts.
type QuizOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// QuizQuestion is one quiz question with its options in page order.
type QuizQuestion struct {
	Text    string       `json:"text"`
	Options []QuizOption `json:"options"`
}

// QuizStructure is the result of quiz extraction. A page without a quiz is
// reported through Error, never as a failure. Error is also set next to the
// questions when an option was skipped because its id was ambiguous.
type QuizStructure struct {
	Questions []QuizQuestion `json:"questions"`
	Error     string         `json:"error,omitempty"`
}

const noQuizMessage = "No quiz questions found on this page. " +
	"The quiz may be collapsed, already completed, or this unit has no quiz."

func quizError(msg string) QuizStructure {
	return QuizStructure{Questions: []QuizQuestion{}, Error: msg}
}

// ExtractQuiz expands the challenge if needed and reads every question and
// option from the page, shadow roots included.
func ExtractQuiz(ctx context.Context, p Page, site Site, t Timeouts) QuizStructure {
	expandChallenge(ctx, p, site, t.resolve())

	html, ok, err := p.HTML(ctx, "body")
	if err != nil {
		return quizError(fmt.Sprintf("Failed to read quiz: %v", err))
	}
	if !ok {
		return quizError(noQuizMessage)
	}
	qs, err := ParseQuiz(html, site)
	if err != nil {
		return quizError(fmt.Sprintf("Failed to read quiz: %v", err))
	}
	return qs
}

// ParseQuiz reads quiz questions out of flattened page markup.
func ParseQuiz(html string, site Site) (QuizStructure, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return QuizStructure{}, fmt.Errorf("failed to parse page markup: %w", err)
	}

	questions := firstSelection(doc.Selection, site.QuestionSelectors)
	if questions == nil {
		return quizError(noQuizMessage), nil
	}

	out := QuizStructure{Questions: make([]QuizQuestion, 0, questions.Length())}
	seen := make(map[string]bool)
	questions.Each(func(i int, q *goquery.Selection) {
		question := QuizQuestion{
			Text:    firstText(q, site.QuestionTextSelectors),
			Options: []QuizOption{},
		}
		if question.Text == "" {
			question.Text = fmt.Sprintf("Question %d", i+1)
		}

		if opts := firstSelection(q, site.OptionSelectors); opts != nil {
			opts.Each(func(j int, o *goquery.Selection) {
				id, target := optionID(o)
				if id == "" {
					L_debug("trail: skipping option without id", "question", i+1, "option", j)
					return
				}
				if target.Length() == 0 {
					target = withID(q, id)
				}
				id = qualifyID(doc.Selection, target, id)
				if seen[id] {
					L_warn("trail: skipping option with duplicate id", "question", i+1, "option", j, "id", id)
					out.Error = fmt.Sprintf("Option id %q is shared by more than one option and cannot be answered reliably.", id)
					return
				}
				seen[id] = true
				text := firstText(o, site.OptionTextSelectors)
				if text == "" {
					text = normalizeSpace(o.Text())
				}
				question.Options = append(question.Options, QuizOption{ID: id, Text: text, Index: j})
			})
		}
		out.Questions = append(out.Questions, question)
	})
	return out, nil
}

// firstSelection returns the matches of the first selector that finds
// anything below s, or nil.
func firstSelection(s *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.Find(flatSelector(sel)); found.Length() > 0 {
			return found
		}
	}
	return nil
}

func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := normalizeSpace(s.Find(flatSelector(sel)).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// optionID finds the id that selects an option: the backing radio or
// checkbox, then the option's own id, then the target of its label. The
// element carrying the id is returned with it when it sits inside the option.
func optionID(o *goquery.Selection) (string, *goquery.Selection) {
	const inputs = "input[type=radio], input[type=checkbox]"
	if o.Is(inputs) {
		if id, ok := o.Attr("id"); ok && id != "" {
			return id, o
		}
	}
	if in := o.Find(inputs).First(); in.Length() > 0 {
		if id, ok := in.Attr("id"); ok && id != "" {
			return id, in
		}
	}
	if id, ok := o.Attr("id"); ok && id != "" {
		return id, o
	}
	if o.Is("label") {
		if id, ok := o.Attr("for"); ok && id != "" {
			return id, withID(o, id)
		}
	}
	if id, ok := o.Find("label[for]").First().Attr("for"); ok && id != "" {
		return id, withID(o, id)
	}
	return "", nil
}

// withID returns the elements below s whose id is exactly id.
func withID(s *goquery.Selection, id string) *goquery.Selection {
	return s.Find("[id]").FilterFunction(func(_ int, e *goquery.Selection) bool {
		v, _ := e.Attr("id")
		return v == id
	})
}

// qualifyID appends the 1-based position of target among all elements that
// share its id, as in "choice#2", when the id is not unique on the page.
// The first occurrence keeps the bare id. Element lookup on the page walks
// the same flattened order, so the qualified id clicks the same element.
func qualifyID(root, target *goquery.Selection, id string) string {
	if target == nil || target.Length() == 0 {
		return id
	}
	all := withID(root, id)
	if all.Length() < 2 {
		return id
	}
	if n := all.IndexOfSelection(target.First()); n > 0 {
		return fmt.Sprintf("%s#%d", id, n+1)
	}
	return id
}

// flatSelector turns a deep selector into plain CSS for flattened markup,
// where shadow content already sits inside its host.
func flatSelector(sel string) string {
	return strings.ReplaceAll(sel, ">>>", " ")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
