package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// Config holds the settings backends read at construction time.
// It lives here rather than in app so app can import webclient.
type Config struct {
	Client Client `yaml:"backend"`

	// Timeout bounds a single request (nethttp) or page render (chromedp).
	Timeout time.Duration `yaml:"timeout"`

	// IdleAfter is how long the network must stay quiet before chromedp
	// considers a page loaded.
	IdleAfter time.Duration `yaml:"idle_after"`

	// ShowBrowser runs chromedp with a visible window. Needed by `watch`,
	// where a person browses and the monitor follows the tab.
	ShowBrowser bool `yaml:"show_browser"`

	// MaxBodyBytes caps how much of a response body nethttp keeps.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

func (c Config) timeoutOr(d time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return d
}

func (c Config) maxBodyOr(n int64) int64 {
	if c.MaxBodyBytes > 0 {
		return c.MaxBodyBytes
	}
	return n
}

func (c Config) idleAfterOr(d time.Duration) time.Duration {
	if c.IdleAfter > 0 {
		return c.IdleAfter
	}
	return d
}
