package banner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/logging"
)

// Surface is where banners are drawn.
type Surface interface {
	Mount(b Banner) error
	Unmount(id string) error
}

// ErrNotShown is returned by Dismiss for an id that is not on screen.
var ErrNotShown = errors.New("banner: not shown")

// Presenter keeps at most one banner mounted on a surface.
type Presenter struct {
	mu      sync.Mutex
	surface Surface
	current *Banner
	logger  logging.Logger
}

func NewPresenter(surface Surface, logger logging.Logger) *Presenter {
	return &Presenter{
		surface: surface,
		logger:  logging.OrNop(logger).With(logging.Component("banner")),
	}
}

// Show replaces whatever is on screen with a banner for a.
func (p *Presenter) Show(a assessor.RiskAssessment) (Banner, error) {
	b := Build(a)
	return b, p.Present(b)
}

// Present mounts an already built banner in place of the current one.
func (p *Presenter) Present(b Banner) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.unmountLocked(); err != nil {
		return err
	}
	if err := p.surface.Mount(b); err != nil {
		return fmt.Errorf("mount banner: %w", err)
	}
	p.current = &b
	p.logger.Debug("banner shown",
		logging.Field{Key: "id", Value: b.ID},
		logging.Field{Key: "source", Value: string(b.Source)},
		logging.Field{Key: "level", Value: string(b.Pill.Level)})
	return nil
}

// Dismiss removes the banner with id. Later Show calls are unaffected.
func (p *Presenter) Dismiss(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.ID != id {
		return ErrNotShown
	}
	return p.unmountLocked()
}

// Clear removes the current banner, if any.
func (p *Presenter) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unmountLocked()
}

// Current returns the banner on screen.
func (p *Presenter) Current() (Banner, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Banner{}, false
	}
	return *p.current, true
}

func (p *Presenter) unmountLocked() error {
	if p.current == nil {
		return nil
	}
	id := p.current.ID
	p.current = nil
	if err := p.surface.Unmount(id); err != nil {
		return fmt.Errorf("unmount banner %s: %w", id, err)
	}
	return nil
}
