package fetcher_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/raysh454/ethicheck/internal/app"
	"github.com/raysh454/ethicheck/internal/fetcher"
	"github.com/raysh454/ethicheck/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingPipeline records peak concurrency.
type countingPipeline struct {
	delay    time.Duration
	fail     map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	seen     []string
}

func (p *countingPipeline) Assess(ctx context.Context, rawURL string) (*app.Outcome, error) {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}

	p.mu.Lock()
	p.seen = append(p.seen, rawURL)
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.delay):
	}
	if p.fail[rawURL] {
		return nil, errors.New("boom")
	}
	return &app.Outcome{URL: rawURL, Checkout: true}, nil
}

func urls(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "https://shop.example/checkout/" + string(rune('a'+i))
	}
	return out
}

func TestFetch_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	t.Parallel()
	p := &countingPipeline{delay: 10 * time.Millisecond}
	f, err := fetcher.New(fetcher.Config{MaxConcurrency: 3}, p, &testutil.DummyLogger{})
	if err != nil {
		t.Fatal(err)
	}

	in := urls(10)
	got := f.Fetch(context.Background(), in)

	if len(got) != len(in) {
		t.Fatalf("got %d results, want %d", len(got), len(in))
	}
	for i, r := range got {
		if r.URL != in[i] || r.Index != i || r.Err != nil || r.Outcome == nil {
			t.Errorf("result %d = %+v", i, r)
		}
	}
	if peak := p.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency %d exceeds limit 3", peak)
	}
}

func TestFetch_ErrorsStayPerURL(t *testing.T) {
	t.Parallel()
	in := urls(3)
	p := &countingPipeline{fail: map[string]bool{in[1]: true}}
	logger := &testutil.DummyLogger{}
	f, _ := fetcher.New(fetcher.Config{}, p, logger)

	got := f.Fetch(context.Background(), in)
	if got[0].Err != nil || got[2].Err != nil {
		t.Errorf("unexpected errors: %v, %v", got[0].Err, got[2].Err)
	}
	if got[1].Err == nil {
		t.Error("expected error for failing URL")
	}
	if logger.WarnCount() != 1 {
		t.Errorf("WarnCount = %d, want 1", logger.WarnCount())
	}
}

func TestFetch_CanceledContextSkipsRemaining(t *testing.T) {
	t.Parallel()
	p := &countingPipeline{delay: time.Second}
	f, _ := fetcher.New(fetcher.Config{MaxConcurrency: 1}, p, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got := f.Fetch(ctx, urls(5))
	for i, r := range got {
		if r.Err == nil {
			t.Errorf("result %d has no error after cancellation", i)
		}
	}
	p.mu.Lock()
	started := len(p.seen)
	p.mu.Unlock()
	if started != 1 {
		t.Errorf("%d assessments started, want 1", started)
	}
}

func TestStream_CallsBackOncePerURL(t *testing.T) {
	t.Parallel()
	f, _ := fetcher.New(fetcher.Config{MaxConcurrency: 2}, &countingPipeline{}, nil)

	seen := map[int]int{}
	f.Stream(context.Background(), urls(6), func(r fetcher.Result) { seen[r.Index]++ })
	for i := 0; i < 6; i++ {
		if seen[i] != 1 {
			t.Errorf("index %d seen %d times", i, seen[i])
		}
	}
}

func TestNew_RejectsNilPipeline(t *testing.T) {
	t.Parallel()
	if _, err := fetcher.New(fetcher.Config{}, nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
