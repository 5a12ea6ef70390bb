package trail

import (
	"net/url"
	"strings"
	"time"
)

// Site describes where the learning platform lives and how its lesson and
// quiz markup can be recognised. Every selector list is tried in order and
// the first one that matches wins.
type Site struct {
	Name    string   `json:"name" toml:"name" yaml:"name"`
	HomeURL string   `json:"homeURL" toml:"homeURL" yaml:"homeURL"`
	Domains []string `json:"domains" toml:"domains" yaml:"domains"`

	LessonSelectors       []string `json:"lessonSelectors" toml:"lessonSelectors" yaml:"lessonSelectors"`
	ChallengeSelectors    []string `json:"challengeSelectors" toml:"challengeSelectors" yaml:"challengeSelectors"`
	QuizMarkers           []string `json:"quizMarkers" toml:"quizMarkers" yaml:"quizMarkers"`
	QuestionSelectors     []string `json:"questionSelectors" toml:"questionSelectors" yaml:"questionSelectors"`
	QuestionTextSelectors []string `json:"questionTextSelectors" toml:"questionTextSelectors" yaml:"questionTextSelectors"`
	OptionSelectors       []string `json:"optionSelectors" toml:"optionSelectors" yaml:"optionSelectors"`
	OptionTextSelectors   []string `json:"optionTextSelectors" toml:"optionTextSelectors" yaml:"optionTextSelectors"`
	SubmitSelectors       []string `json:"submitSelectors" toml:"submitSelectors" yaml:"submitSelectors"`
	CompletionSelectors   []string `json:"completionSelectors" toml:"completionSelectors" yaml:"completionSelectors"`
	NextLessonLabels      []string `json:"nextLessonLabels" toml:"nextLessonLabels" yaml:"nextLessonLabels"`
}

// DefaultSite returns the selectors for Trailhead.
func DefaultSite() Site {
	return Site{
		Name:    "Trailhead",
		HomeURL: "https://trailhead.salesforce.com/",
		Domains: []string{"trailhead.salesforce.com"},
		LessonSelectors: []string{
			"th-enhanced-unit-content",
			".unit-content",
			"[data-test='unit-content']",
		},
		ChallengeSelectors: []string{
			"th-enhanced-challenge",
			"th-challenge",
			".challenge-container",
		},
		QuizMarkers: []string{
			"th-tds-quiz",
			"form.quiz",
		},
		QuestionSelectors: []string{
			"th-tds-quiz-question",
			".quiz-question",
			"fieldset.question",
		},
		QuestionTextSelectors: []string{
			".question-label",
			".question-text",
			"legend",
		},
		OptionSelectors: []string{
			"th-tds-quiz-option",
			".quiz-option",
			".option",
		},
		OptionTextSelectors: []string{
			".option-text",
			"label",
		},
		SubmitSelectors: []string{
			"th-tds-quiz >>> button[type='submit']",
			"button.quiz-submit",
			"form.quiz button[type='submit']",
		},
		CompletionSelectors: []string{
			"th-tds-quiz-success",
			".quiz-complete",
			".challenge-complete",
			"[data-quiz-state='complete']",
		},
		NextLessonLabels: []string{
			"Tackle the Next Unit",
			"Next Unit",
			"Next Lesson",
		},
	}
}

// MatchesURL reports whether rawURL is served from one of the site's domains
// or a subdomain of one.
func (s Site) MatchesURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range s.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Timeouts bounds the waits inside quiz extraction and submission.
// Values are duration strings such as "2s" or "500ms".
type Timeouts struct {
	Challenge  string `json:"challenge" toml:"challenge" yaml:"challenge"`
	QuizWidget string `json:"quizWidget" toml:"quizWidget" yaml:"quizWidget"`
	Completion string `json:"completion" toml:"completion" yaml:"completion"`
	Poll       string `json:"poll" toml:"poll" yaml:"poll"`
}

// DefaultTimeouts returns the waits used when nothing is configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Challenge:  "2s",
		QuizWidget: "3s",
		Completion: "5s",
		Poll:       "100ms",
	}
}

type waits struct {
	challenge  time.Duration
	quizWidget time.Duration
	completion time.Duration
	poll       time.Duration
}

func (t Timeouts) resolve() waits {
	def := DefaultTimeouts()
	return waits{
		challenge:  parseDuration(t.Challenge, def.Challenge),
		quizWidget: parseDuration(t.QuizWidget, def.QuizWidget),
		completion: parseDuration(t.Completion, def.Completion),
		poll:       parseDuration(t.Poll, def.Poll),
	}
}

func parseDuration(s, fallback string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}
