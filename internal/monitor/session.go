package monitor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/raysh454/ethicheck/internal/utils"
)

// Session is the monitor's only state: the last URL seen and the run that
// URL started. Each navigation bumps the generation and cancels the previous
// run, so a late result can tell it is stale.
type Session struct {
	ID string

	mu         sync.Mutex
	lastURL    string
	seen       bool
	generation uint64
	cancel     context.CancelFunc
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// LastURL returns the last URL observed.
func (s *Session) LastURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL
}

// Generation counts navigations.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// begin records rawURL. changed is false when rawURL matches the last URL
// (ignoring fragments and default ports). On change the previous run is
// canceled and ctx is the new run's context.
func (s *Session) begin(parent context.Context, rawURL string) (ctx context.Context, gen uint64, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen && sameURL(s.lastURL, rawURL) {
		return nil, s.generation, false
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.seen = true
	s.lastURL = rawURL
	s.generation++
	ctx, s.cancel = context.WithCancel(parent)
	return ctx, s.generation, true
}

// ifCurrent runs fn while holding the session lock, only if gen is still the
// latest navigation. A newer navigation therefore cannot slip in between the
// check and fn. fn may do surface I/O; begin for the next navigation waits
// for it on purpose.
func (s *Session) ifCurrent(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	fn()
	return true
}

// stop cancels the in-flight run, if any.
func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func sameURL(a, b string) bool {
	if a == b {
		return true
	}
	ca, errA := utils.Canonicalize(a, utils.CanonicalizeOptions{})
	cb, errB := utils.Canonicalize(b, utils.CanonicalizeOptions{})
	return errA == nil && errB == nil && ca == cb
}
