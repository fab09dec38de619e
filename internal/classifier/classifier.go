// Package classifier decides whether a URL belongs to a checkout flow.
package classifier

import (
	"net/url"
	"strings"

	"github.com/raysh454/ethicheck/internal/utils"
)

// DefaultHints is the generic checkout vocabulary matched as substrings of
// the normalized URL.
var DefaultHints = []string{
	"checkout", "cart", "basket", "bag", "payment", "pay", "order", "place-order", "confirm",
}

// Classification explains a verdict.
type Classification struct {
	Checkout bool   `json:"checkout"`
	Reason   string `json:"reason"`
	// Rule names the domain rule that decided, empty for the generic path.
	Rule string `json:"rule,omitempty"`
}

// DomainRule overrides the generic hint match for particular sites.
type DomainRule interface {
	Name() string
	Matches(host string) bool
	// Classify sees the parsed URL with a lowercased path.
	Classify(u *url.URL) Classification
}

// Classifier holds the hint vocabulary and per-domain overrides.
type Classifier struct {
	hints []string
	rules []DomainRule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRule appends a domain rule. Rules are consulted in registration order.
func WithRule(r DomainRule) Option {
	return func(c *Classifier) { c.rules = append(c.rules, r) }
}

// WithHints replaces the generic hint vocabulary.
func WithHints(hints ...string) Option {
	return func(c *Classifier) { c.hints = append([]string(nil), hints...) }
}

// New returns a classifier with the default hints and the Amazon rule,
// followed by any extra options.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		hints: append([]string(nil), DefaultHints...),
		rules: []DomainRule{AmazonRule{}},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// IsCheckout reports whether rawURL looks like part of a purchase journey.
func (c *Classifier) IsCheckout(rawURL string) bool {
	return c.Classify(rawURL).Checkout
}

// Classify runs the first matching domain rule, else the generic hint match.
func (c *Classifier) Classify(rawURL string) Classification {
	normalized := utils.NormalizeText(rawURL)
	if normalized == "" {
		return Classification{Reason: "empty url"}
	}

	if u, err := url.Parse(normalized); err == nil && u.Host != "" {
		host := utils.ASCIIHost(u.Hostname())
		for _, r := range c.rules {
			if r.Matches(host) {
				cl := r.Classify(u)
				cl.Rule = r.Name()
				return cl
			}
		}
	}

	for _, h := range c.hints {
		if strings.Contains(normalized, h) {
			return Classification{Checkout: true, Reason: "url contains " + h}
		}
	}
	return Classification{Reason: "no checkout hint in url"}
}
