// Package monitor follows navigation and re-runs the assessment pipeline
// whenever the page URL changes.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/raysh454/ethicheck/internal/app"
	"github.com/raysh454/ethicheck/internal/banner"
	"github.com/raysh454/ethicheck/internal/logging"
)

// DefaultPollInterval is used when Config.PollInterval is not positive.
const DefaultPollInterval = time.Second

// LocationSource reports the URL currently shown.
type LocationSource interface {
	CurrentURL(ctx context.Context) (string, error)
}

// Pipeline is the part of app.Pipeline the monitor drives.
type Pipeline interface {
	IsCheckout(rawURL string) bool
	Assess(ctx context.Context, rawURL string) (*app.Outcome, error)
}

type Config struct {
	PollInterval time.Duration
}

// Monitor runs the pipeline on navigation and keeps the presenter in sync.
type Monitor struct {
	pipeline  Pipeline
	presenter *banner.Presenter
	session   *Session
	interval  time.Duration
	logger    logging.Logger

	// OnOutcome, when set, is called with every outcome that was presented.
	OnOutcome func(*app.Outcome)

	wg sync.WaitGroup
}

func New(p Pipeline, presenter *banner.Presenter, cfg Config, logger logging.Logger) *Monitor {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s := NewSession()
	return &Monitor{
		pipeline:  p,
		presenter: presenter,
		session:   s,
		interval:  interval,
		logger: logging.OrNop(logger).With(
			logging.Component("monitor"),
			logging.Field{Key: "session", Value: s.ID}),
	}
}

func (m *Monitor) Session() *Session { return m.session }

// Run polls src every interval until ctx is done, then waits for in-flight
// runs to finish.
func (m *Monitor) Run(ctx context.Context, src LocationSource) error {
	if src == nil {
		return errors.New("monitor: nil location source")
	}
	defer m.shutdown()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll(ctx, src)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.poll(ctx, src)
		}
	}
}

// Events consumes navigation events until ctx is done or urls is closed.
func (m *Monitor) Events(ctx context.Context, urls <-chan string) error {
	defer m.shutdown()
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-urls:
			if !ok {
				return nil
			}
			m.Navigate(ctx, u)
		}
	}
}

func (m *Monitor) poll(ctx context.Context, src LocationSource) {
	u, err := src.CurrentURL(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Debug("location unavailable", logging.Err(err))
		}
		return
	}
	m.Navigate(ctx, u)
}

// Navigate handles one observed URL. It reports whether the URL was new.
// Checkout pages are assessed in the background; anything else clears the
// banner immediately.
func (m *Monitor) Navigate(ctx context.Context, rawURL string) bool {
	runCtx, gen, changed := m.session.begin(ctx, rawURL)
	if !changed {
		return false
	}
	m.logger.Debug("navigation", logging.Field{Key: "url", Value: rawURL}, logging.Field{Key: "generation", Value: gen})

	if !m.pipeline.IsCheckout(rawURL) {
		m.session.ifCurrent(gen, func() {
			if err := m.presenter.Clear(); err != nil {
				m.logger.Warn("clear banner failed", logging.Err(err))
			}
		})
		return true
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(runCtx, gen, rawURL)
	}()
	return true
}

func (m *Monitor) run(ctx context.Context, gen uint64, rawURL string) {
	out, err := m.pipeline.Assess(ctx, rawURL)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Warn("assessment failed", logging.Field{Key: "url", Value: rawURL}, logging.Err(err))
		}
		return
	}

	presented := m.session.ifCurrent(gen, func() {
		if out.Banner == nil {
			if err := m.presenter.Clear(); err != nil {
				m.logger.Warn("clear banner failed", logging.Err(err))
			}
			return
		}
		if err := m.presenter.Present(*out.Banner); err != nil {
			m.logger.Warn("show banner failed", logging.Err(err))
			return
		}
		if m.OnOutcome != nil {
			m.OnOutcome(out)
		}
	})
	if !presented {
		m.logger.Debug("dropping stale assessment",
			logging.Field{Key: "url", Value: rawURL},
			logging.Field{Key: "generation", Value: gen})
	}
}

// Wait blocks until every started run has finished.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func (m *Monitor) shutdown() {
	m.session.stop()
	m.wg.Wait()
}
