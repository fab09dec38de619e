// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/banner"
	"github.com/raysh454/ethicheck/internal/extractor"
	"github.com/raysh454/ethicheck/internal/logging"
	"github.com/raysh454/ethicheck/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns how many warnings were logged.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyPage is a canned response served by DummyWebClient.
type DummyPage struct {
	Status int
	Body   string
}

// DummyWebClient implements webclient.WebClient.
// Pages[url] is served when present; otherwise the body is "ok:<url>" with
// status 200. Set FailURLs[url] = true to force an error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Pages         map[string]DummyPage
	FailURLs      map[string]bool
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if req == nil {
		return nil, webclient.ErrNilRequest
	}
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, errors.New("dummy fetch fail for " + req.URL)
	}

	status, body := 200, "ok:"+req.URL
	if p, ok := d.Pages[req.URL]; ok {
		status, body = p.Status, p.Body
		if status == 0 {
			status = 200
		}
	}
	return &webclient.Response{
		Request:    req,
		Body:       []byte(body),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests were served.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── Remote assessor ───────────────────────────────────────────────────

// DummyRemote implements assessor.Remote with a preconfigured verdict.
// Verdicts[brand] overrides Result for that brand. Delay blocks each call
// until it elapses or ctx is done.
type DummyRemote struct {
	Result   *assessor.RiskAssessment
	Verdicts map[string]*assessor.RiskAssessment
	Err      error
	Delay    time.Duration

	mu    sync.Mutex
	Calls []extractor.PageSignal
}

func (d *DummyRemote) Assess(ctx context.Context, sig *extractor.PageSignal) (*assessor.RiskAssessment, error) {
	d.mu.Lock()
	d.Calls = append(d.Calls, *sig)
	d.mu.Unlock()

	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.Err != nil {
		return nil, d.Err
	}
	if v, ok := d.Verdicts[sig.Brand]; ok {
		return v, nil
	}
	if d.Result != nil {
		return d.Result, nil
	}
	return nil, assessor.ErrUnavailable
}

// CallCount returns how many times Assess was called.
func (d *DummyRemote) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}

// ─── Location source ───────────────────────────────────────────────────

// DummyLocationSource reports whatever URL was last Set.
type DummyLocationSource struct {
	mu  sync.Mutex
	url string
	Err error
}

// NewDummyLocationSource starts at url.
func NewDummyLocationSource(url string) *DummyLocationSource {
	return &DummyLocationSource{url: url}
}

func (d *DummyLocationSource) Set(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

func (d *DummyLocationSource) CurrentURL(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}
	return d.url, nil
}

// ─── Surface ───────────────────────────────────────────────────────────

// DummySurface implements banner.Surface and records every call.
type DummySurface struct {
	mu        sync.Mutex
	Mounted   []banner.Banner
	Unmounted []string
	visible   map[string]banner.Banner
	MountErr  error
}

func (s *DummySurface) Mount(b banner.Banner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MountErr != nil {
		return s.MountErr
	}
	if s.visible == nil {
		s.visible = make(map[string]banner.Banner)
	}
	s.Mounted = append(s.Mounted, b)
	s.visible[b.ID] = b
	return nil
}

func (s *DummySurface) Unmount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unmounted = append(s.Unmounted, id)
	delete(s.visible, id)
	return nil
}

// Visible returns the banners currently mounted.
func (s *DummySurface) Visible() []banner.Banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]banner.Banner, 0, len(s.visible))
	for _, b := range s.visible {
		out = append(out, b)
	}
	return out
}

// MountCount returns how many banners were mounted in total.
func (s *DummySurface) MountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Mounted)
}
