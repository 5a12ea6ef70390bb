package trail

import (
	"context"
	"fmt"
	"sync"
)

// Session owns the browser provider and the cached active page. Tool calls
// may arrive concurrently; Session runs them one at a time.
type Session struct {
	provider BrowserProvider

	mu     sync.Mutex
	active Page
	closed bool
}

// NewSession creates a session. No browser is touched until the first call.
func NewSession(provider BrowserProvider) *Session {
	return &Session{provider: provider}
}

// WithPage acquires the browser, selects the active page and runs fn on it
// while holding the session lock.
func (s *Session) WithPage(ctx context.Context, site Site, fn func(Page) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session is closed")
	}

	b, err := s.provider.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("browser unavailable: %w", err)
	}

	p, err := SelectPage(ctx, b, site, s.active)
	if err != nil {
		s.active = nil
		return err
	}
	s.active = p
	return fn(p)
}

// Close releases the browser. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.active = nil
	return s.provider.Close()
}
