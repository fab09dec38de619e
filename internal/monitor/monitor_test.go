package monitor_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/raysh454/ethicheck/internal/app"
	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/banner"
	"github.com/raysh454/ethicheck/internal/monitor"
	"github.com/raysh454/ethicheck/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubPipeline treats "/checkout" and "/cart" URLs as checkout pages and
// answers with an assessment whose Brand is the URL.
type stubPipeline struct {
	mu        sync.Mutex
	delays    map[string]time.Duration
	ignoreCtx bool
	calls     []string
}

func (s *stubPipeline) IsCheckout(rawURL string) bool {
	return strings.Contains(rawURL, "/checkout") || strings.Contains(rawURL, "/cart")
}

func (s *stubPipeline) Assess(ctx context.Context, rawURL string) (*app.Outcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, rawURL)
	delay := s.delays[rawURL]
	s.mu.Unlock()

	if delay > 0 {
		if s.ignoreCtx {
			time.Sleep(delay)
		} else {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	a := assessor.RiskAssessment{Source: assessor.SourceKeyword, RiskLevel: assessor.RiskLow, Brand: rawURL}
	b := banner.Build(a)
	return &app.Outcome{URL: rawURL, Checkout: true, Assessment: &a, Banner: &b}, nil
}

func (s *stubPipeline) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func visibleBrand(t *testing.T, surface *testutil.DummySurface) string {
	t.Helper()
	v := surface.Visible()
	switch len(v) {
	case 0:
		return ""
	case 1:
		return v[0].Brand
	default:
		t.Fatalf("%d banners visible, want at most 1", len(v))
		return ""
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestMonitor_DropsStaleResult(t *testing.T) {
	t.Parallel()

	for _, ignoreCtx := range []bool{false, true} {
		p := &stubPipeline{
			delays:    map[string]time.Duration{"https://a.example/checkout": 150 * time.Millisecond},
			ignoreCtx: ignoreCtx,
		}
		surface := &testutil.DummySurface{}
		m := monitor.New(p, banner.NewPresenter(surface, nil), monitor.Config{}, nil)

		ctx := context.Background()
		m.Navigate(ctx, "https://a.example/checkout")
		m.Navigate(ctx, "https://b.example/checkout")
		m.Wait()

		if got := visibleBrand(t, surface); got != "https://b.example/checkout" {
			t.Errorf("ignoreCtx=%v: visible brand = %q, want the latest navigation", ignoreCtx, got)
		}
		if surface.MountCount() != 1 {
			t.Errorf("ignoreCtx=%v: MountCount = %d, want 1", ignoreCtx, surface.MountCount())
		}
	}
}

func TestMonitor_NonCheckoutClears(t *testing.T) {
	t.Parallel()

	p := &stubPipeline{}
	surface := &testutil.DummySurface{}
	m := monitor.New(p, banner.NewPresenter(surface, nil), monitor.Config{}, nil)

	ctx := context.Background()
	m.Navigate(ctx, "https://shop.example/checkout")
	m.Wait()
	if visibleBrand(t, surface) == "" {
		t.Fatal("no banner after checkout navigation")
	}

	m.Navigate(ctx, "https://shop.example/blog")
	m.Wait()
	if got := visibleBrand(t, surface); got != "" {
		t.Errorf("banner %q still visible after leaving checkout", got)
	}
	if p.callCount() != 1 {
		t.Errorf("pipeline called %d times, want 1", p.callCount())
	}
}

func TestMonitor_NonCheckoutCancelsInFlight(t *testing.T) {
	t.Parallel()

	p := &stubPipeline{delays: map[string]time.Duration{"https://shop.example/checkout": 100 * time.Millisecond}}
	surface := &testutil.DummySurface{}
	m := monitor.New(p, banner.NewPresenter(surface, nil), monitor.Config{}, nil)

	ctx := context.Background()
	m.Navigate(ctx, "https://shop.example/checkout")
	m.Navigate(ctx, "https://shop.example/")
	m.Wait()

	if surface.MountCount() != 0 {
		t.Errorf("MountCount = %d, want 0", surface.MountCount())
	}
}

func TestMonitor_SameURLIsNotRerun(t *testing.T) {
	t.Parallel()

	p := &stubPipeline{}
	m := monitor.New(p, banner.NewPresenter(&testutil.DummySurface{}, nil), monitor.Config{}, nil)

	ctx := context.Background()
	if !m.Navigate(ctx, "https://Shop.example:443/checkout") {
		t.Fatal("first navigation reported unchanged")
	}
	if m.Navigate(ctx, "https://shop.example/checkout#payment") {
		t.Error("equivalent URL reported as a change")
	}
	m.Wait()

	if p.callCount() != 1 {
		t.Errorf("pipeline called %d times, want 1", p.callCount())
	}
	if m.Session().Generation() != 1 {
		t.Errorf("Generation = %d, want 1", m.Session().Generation())
	}
}

func TestMonitor_RunFollowsLocation(t *testing.T) {
	t.Parallel()

	p := &stubPipeline{}
	surface := &testutil.DummySurface{}
	m := monitor.New(p, banner.NewPresenter(surface, nil), monitor.Config{PollInterval: 5 * time.Millisecond}, nil)
	src := testutil.NewDummyLocationSource("https://one.example/checkout")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, src) }()

	waitFor(t, func() bool { return visibleBrand(t, surface) == "https://one.example/checkout" })

	src.Set("https://two.example/cart")
	waitFor(t, func() bool { return visibleBrand(t, surface) == "https://two.example/cart" })

	src.Set("https://two.example/")
	waitFor(t, func() bool { return visibleBrand(t, surface) == "" })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
	if m.Session().LastURL() != "https://two.example/" {
		t.Errorf("LastURL = %q", m.Session().LastURL())
	}
}

func TestMonitor_EventsStopsOnClose(t *testing.T) {
	t.Parallel()

	p := &stubPipeline{}
	surface := &testutil.DummySurface{}
	m := monitor.New(p, banner.NewPresenter(surface, nil), monitor.Config{}, nil)

	urls := make(chan string, 2)
	urls <- "https://a.example/checkout"
	urls <- "https://a.example/checkout/shipping"
	close(urls)

	if err := m.Events(context.Background(), urls); err != nil {
		t.Fatalf("Events: %v", err)
	}
	if got := visibleBrand(t, surface); got != "https://a.example/checkout/shipping" {
		t.Errorf("visible brand = %q", got)
	}
}

func TestMonitor_RunRejectsNilSource(t *testing.T) {
	t.Parallel()

	m := monitor.New(&stubPipeline{}, banner.NewPresenter(&testutil.DummySurface{}, nil), monitor.Config{}, nil)
	if err := m.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}
