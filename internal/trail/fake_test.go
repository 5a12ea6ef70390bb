package trail

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fakePage is a Page backed by a goquery document. Markup is treated as
// already flattened, so "a >>> b" behaves like "a b".
type fakePage struct {
	url     string
	doc     *goquery.Document
	dead    bool
	focused bool

	// documents served by Navigate, keyed by URL
	sites  map[string]string
	navErr error

	onClick map[string]func(*fakePage)
	clicks  []string
	queries int
}

func newFakePage(url, html string) *fakePage {
	f := &fakePage{url: url, onClick: map[string]func(*fakePage){}}
	f.load(html)
	return f
}

func (f *fakePage) load(html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	f.doc = doc
}

func (f *fakePage) appendToBody(html string) {
	f.doc.Find("body").AppendHtml(html)
}

func (f *fakePage) find(sel string) *goquery.Selection {
	f.queries++
	return f.doc.Find(flatSelector(sel))
}

func (f *fakePage) Alive(ctx context.Context) bool { return !f.dead }

func (f *fakePage) URL(ctx context.Context) string { return f.url }

func (f *fakePage) Title(ctx context.Context) (string, error) {
	return strings.TrimSpace(f.doc.Find("title").First().Text()), nil
}

func (f *fakePage) HasFocus(ctx context.Context) bool { return f.focused }

func (f *fakePage) Exists(ctx context.Context, sel string) bool {
	return f.find(sel).Length() > 0
}

func (f *fakePage) Text(ctx context.Context, sel string) (string, bool, error) {
	s := f.find(sel).First()
	if s.Length() == 0 {
		return "", false, nil
	}
	return s.Text(), true, nil
}

func (f *fakePage) HTML(ctx context.Context, sel string) (string, bool, error) {
	s := f.find(sel).First()
	if s.Length() == 0 {
		return "", false, nil
	}
	html, err := goquery.OuterHtml(s)
	return html, err == nil, err
}

func (f *fakePage) click(key string) {
	f.clicks = append(f.clicks, key)
	if hook, ok := f.onClick[key]; ok {
		hook(f)
	}
}

func (f *fakePage) Click(ctx context.Context, sel string) error {
	if f.find(sel).Length() == 0 {
		return ErrElementNotFound
	}
	f.click(sel)
	return nil
}

// ClickByID resolves ids the way the browser helper does: an exact match
// first, then "base#n" as the nth element with id base.
func (f *fakePage) ClickByID(ctx context.Context, id string) error {
	f.queries++
	if withID(f.doc.Selection, id).Length() > 0 {
		f.click("#" + id)
		return nil
	}
	if i := strings.LastIndex(id, "#"); i > 0 {
		if n, err := strconv.Atoi(id[i+1:]); err == nil && n > 0 && withID(f.doc.Selection, id[:i]).Length() >= n {
			f.click("#" + id)
			return nil
		}
	}
	return ErrElementNotFound
}

func (f *fakePage) Probe(ctx context.Context, sel string) (bool, bool) {
	s := f.find(sel).First()
	if s.Length() == 0 {
		return false, false
	}
	_, disabled := s.Attr("disabled")
	return true, !disabled
}

func (f *fakePage) ClickButtonWithText(ctx context.Context, labels []string) (string, bool, error) {
	var label string
	f.find("button").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		text := strings.TrimSpace(b.Text())
		for _, l := range labels {
			if text == l {
				label = l
				return false
			}
		}
		return true
	})
	if label == "" {
		return "", false, nil
	}
	f.click("button:" + label)
	return label, true, nil
}

func (f *fakePage) Navigate(ctx context.Context, url string) error {
	if f.navErr != nil {
		return f.navErr
	}
	html, ok := f.sites[url]
	if !ok {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	f.url = url
	f.load(html)
	return nil
}

func (f *fakePage) Inspect(ctx context.Context, sel string, limit int) (*Inspection, error) {
	matches := f.find(sel)
	res := &Inspection{Count: matches.Length()}
	matches.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		node := s.Get(0)
		info := ElementInfo{
			Tag:        goquery.NodeName(s),
			Attributes: map[string]string{},
			Text:       s.Text(),
			Width:      100,
			Height:     20,
			Visible:    true,
		}
		for _, a := range node.Attr {
			info.Attributes[a.Key] = a.Val
			switch a.Key {
			case "id":
				info.ID = a.Val
			case "class":
				info.Classes = strings.Fields(a.Val)
			}
		}
		_, disabled := s.Attr("disabled")
		info.Enabled = !disabled
		if parent := s.Parent(); parent.Length() > 0 {
			info.Parent = "<" + goquery.NodeName(parent) + ">"
		}
		res.Elements = append(res.Elements, info)
		return true
	})
	return res, nil
}

type fakeBrowser struct {
	pages   []Page
	listErr error
	opened  []*fakePage
}

func (b *fakeBrowser) Pages(ctx context.Context) ([]Page, error) {
	return b.pages, b.listErr
}

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) {
	p := newFakePage("about:blank", "<html><body></body></html>")
	b.opened = append(b.opened, p)
	b.pages = append(b.pages, p)
	return p, nil
}

type fakeProvider struct {
	browser    *fakeBrowser
	acquireErr error
	acquired   int
	closed     int
}

func (p *fakeProvider) Acquire(ctx context.Context) (Browser, error) {
	p.acquired++
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.browser, nil
}

func (p *fakeProvider) Close() error {
	p.closed++
	return nil
}

const lessonHTML = `<html><head><title>Lesson 1 | Trailhead</title></head><body>
<th-enhanced-unit-content>
  <h1>Get Started</h1>
  <p>Learn the basics.</p>
</th-enhanced-unit-content>
<th-enhanced-challenge><button>Check your understanding</button></th-enhanced-challenge>
</body></html>`

const quizHTML = `<th-tds-quiz>
  <th-tds-quiz-question>
    <div class="question-label">Go has goroutines.</div>
    <th-tds-quiz-option><input type="radio" id="opt-a" name="q1"><span class="option-text">True</span></th-tds-quiz-option>
    <th-tds-quiz-option><input type="radio" id="opt-b" name="q1"><span class="option-text">False</span></th-tds-quiz-option>
  </th-tds-quiz-question>
  <button type="submit">Check the Quiz</button>
</th-tds-quiz>`

func testSite() Site {
	site := DefaultSite()
	site.Domains = []string{"example.com"}
	return site
}

func testTimeouts() Timeouts {
	return Timeouts{Challenge: "50ms", QuizWidget: "50ms", Completion: "50ms", Poll: "5ms"}
}

// newLessonPage returns a lesson page whose challenge opens the quiz and
// whose submit button completes it.
func newLessonPage(url string) *fakePage {
	f := newFakePage(url, lessonHTML)
	f.onClick["th-enhanced-challenge"] = func(f *fakePage) {
		if f.doc.Find("th-tds-quiz").Length() == 0 {
			f.appendToBody(quizHTML)
		}
	}
	f.onClick["th-tds-quiz >>> button[type='submit']"] = func(f *fakePage) {
		f.appendToBody(`<div class="quiz-complete">Nice work!</div><button> Next Unit </button>`)
	}
	return f
}
