package trail

import (
	"context"
	"sync"
)

// Service is what the tool layer calls. Each method runs inside the session
// lock on the selected page.
type Service struct {
	session  *Session
	timeouts Timeouts

	mu   sync.RWMutex
	site Site
}

// NewService wires a session to the site description and wait timeouts.
func NewService(session *Session, site Site, timeouts Timeouts) *Service {
	return &Service{session: session, site: site, timeouts: timeouts}
}

// Site returns the site description in use.
func (s *Service) Site() Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

// SetSite replaces the site description, e.g. after a config reload.
// Calls already running keep the description they started with.
func (s *Service) SetSite(site Site) {
	s.mu.Lock()
	s.site = site
	s.mu.Unlock()
}

// Content returns the lesson text of the active page.
func (s *Service) Content(ctx context.Context, format string) (string, error) {
	site := s.Site()
	var out string
	err := s.session.WithPage(ctx, site, func(p Page) error {
		if !Eligible(ctx, p, site) {
			return ErrIneligiblePage
		}
		var err error
		out, err = ExtractContent(ctx, p, site, format)
		return err
	})
	return out, err
}

// Quiz returns the quiz on the active page. The error is only set when no
// page could be used at all.
func (s *Service) Quiz(ctx context.Context) (QuizStructure, error) {
	site := s.Site()
	var out QuizStructure
	err := s.session.WithPage(ctx, site, func(p Page) error {
		if !Eligible(ctx, p, site) {
			return ErrIneligiblePage
		}
		out = ExtractQuiz(ctx, p, site, s.timeouts)
		return nil
	})
	return out, err
}

// Answer selects the given options on the active page and submits the quiz.
func (s *Service) Answer(ctx context.Context, optionIDs []string) (string, error) {
	site := s.Site()
	var out string
	err := s.session.WithPage(ctx, site, func(p Page) error {
		if !Eligible(ctx, p, site) {
			return ErrIneligiblePage
		}
		out = SubmitAnswers(ctx, p, site, s.timeouts, optionIDs)
		return nil
	})
	return out, err
}

// Goto navigates the active page and returns the new title.
func (s *Service) Goto(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}
	var title string
	err := s.session.WithPage(ctx, s.Site(), func(p Page) error {
		var err error
		title, err = Goto(ctx, p, rawURL)
		return err
	})
	return title, err
}

// Debug describes the elements selector matches on the active page.
func (s *Service) Debug(ctx context.Context, selector string, verbose bool) (string, error) {
	var out string
	err := s.session.WithPage(ctx, s.Site(), func(p Page) error {
		var err error
		out, err = DebugSelector(ctx, p, selector, verbose)
		return err
	})
	return out, err
}

// Close shuts the session down.
func (s *Service) Close() error {
	return s.session.Close()
}
