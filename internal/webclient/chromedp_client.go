package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/ethicheck/internal/logging"
)

// ChromeDPClient renders pages in a headless (or visible) Chrome. It keeps one
// long-lived tab that `watch` follows, and opens a fresh tab per Do call.
type ChromeDPClient struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	idleAfter time.Duration
	timeout   time.Duration
	logger    logging.Logger

	closeOnce sync.Once
}

// NewChromedpClient starts the browser. It fails when no Chrome binary can be
// launched.
func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromeDPClient, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !cfg.ShowBrowser),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Running with no actions launches the browser and the first tab.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	l := logging.OrNop(logger).With(logging.Field{Key: "backend", Value: "chromedp"})
	c := &ChromeDPClient{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		idleAfter:     cfg.idleAfterOr(2 * time.Second),
		timeout:       cfg.timeoutOr(45 * time.Second),
		logger:        l,
	}
	l.Debug("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: c.idleAfter.String()},
		logging.Field{Key: "show_browser", Value: cfg.ShowBrowser})
	return c, nil
}

// pageLoad tracks in-flight requests on a tab and the main document status.
type pageLoad struct {
	active    int32
	status    int64
	idle      chan struct{}
	once      sync.Once
	timerMu   sync.Mutex
	timer     *time.Timer
	idleAfter time.Duration
}

func (p *pageLoad) armTimer() {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.idleAfter, func() {
		if atomic.LoadInt32(&p.active) <= 0 {
			p.once.Do(func() { close(p.idle) })
		}
	})
}

func (p *pageLoad) stop() {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
}

func watchPageLoad(ctx context.Context, idleAfter time.Duration) *pageLoad {
	p := &pageLoad{idle: make(chan struct{}), idleAfter: idleAfter}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&p.active, 1)
		case *network.EventResponseReceived:
			if e.Type == network.ResourceTypeDocument && e.Response != nil {
				atomic.CompareAndSwapInt64(&p.status, 0, e.Response.Status)
			}
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&p.active, -1) <= 0 {
				p.armTimer()
			}
		}
	})

	return p
}

// Do renders req.URL in a new tab and returns the serialized DOM.
// Only GET is supported.
func (c *ChromeDPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	method := strings.ToUpper(req.Method)
	if method != "" && method != http.MethodGet {
		return nil, fmt.Errorf("chromedp: method %s not supported", method)
	}

	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	load := watchPageLoad(tabCtx, c.idleAfter)
	defer load.stop()

	c.logger.Debug("rendering page", logging.Field{Key: "url", Value: req.URL})

	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		return nil, fmt.Errorf("chromedp navigate: %w", err)
	}
	load.armTimer()

	select {
	case <-load.idle:
	case <-time.After(c.timeout):
		c.logger.Debug("network never went idle, snapshotting anyway",
			logging.Field{Key: "url", Value: req.URL})
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("chromedp outer html: %w", err)
	}

	status := int(atomic.LoadInt64(&load.status))
	if status == 0 {
		status = http.StatusOK
	}

	return &Response{
		Request:    req,
		Body:       []byte(html),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests
func (c *ChromeDPClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

// Open navigates the long-lived tab, typically to the start page of `watch`.
func (c *ChromeDPClient) Open(ctx context.Context, url string) error {
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("chromedp open %s: %w", url, err)
	}
	return nil
}

// CurrentURL reports where the long-lived tab is now. It satisfies the
// navigation monitor's location source.
func (c *ChromeDPClient) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := c.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("chromedp location: %w", err)
	}
	return loc, nil
}

// run executes actions on the long-lived tab, giving up early if ctx ends.
func (c *ChromeDPClient) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(c.browserCtx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ChromeDPClient) Close() error {
	c.closeOnce.Do(func() {
		c.logger.Debug("closing chromedp webclient")
		c.browserCancel()
		c.allocCancel()
	})
	return nil
}
