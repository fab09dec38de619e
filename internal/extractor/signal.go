// Package extractor resolves a best-guess brand/product/country for a page
// from an ordered list of extraction strategies.
package extractor

import (
	"github.com/raysh454/ethicheck/internal/page"
	"github.com/raysh454/ethicheck/internal/utils"
)

// PageSignal is one candidate identity. Empty strings stand for "unknown".
type PageSignal struct {
	Brand   string `json:"brand,omitempty"`
	Product string `json:"product,omitempty"`
	Country string `json:"country,omitempty"`

	// Strategy names the strategy that produced the signal.
	Strategy string `json:"strategy,omitempty"`
}

// HasBrand reports whether the signal names a brand.
func (s *PageSignal) HasBrand() bool {
	return s != nil && s.Brand != ""
}

func (s *PageSignal) clean() {
	s.Brand = utils.CollapseSpace(s.Brand)
	s.Product = utils.CollapseSpace(s.Product)
	s.Country = utils.CollapseSpace(s.Country)
}

// Strategy extracts a signal from a page. Returning (nil, nil) means the
// strategy has nothing to say about this page.
type Strategy interface {
	Name() string
	TryExtract(pc *page.Context) (*PageSignal, error)
}
