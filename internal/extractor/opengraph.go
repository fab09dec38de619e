package extractor

import (
	"github.com/raysh454/ethicheck/internal/page"
	"github.com/raysh454/ethicheck/internal/utils"
)

// OpenGraph reads og:/product: meta tags. On marketplace hosts og:site_name
// names the marketplace, so the strategy stays silent there.
type OpenGraph struct{}

func (OpenGraph) Name() string { return "open-graph" }

func (OpenGraph) TryExtract(pc *page.Context) (*PageSignal, error) {
	if !pc.HasDOM() || IsMarketplace(pc.Host) {
		return nil, nil
	}
	sig := &PageSignal{
		Brand:   utils.FirstNonEmpty(pc.Meta("og:brand"), pc.Meta("product:brand"), pc.Meta("og:site_name")),
		Product: pc.Meta("og:title"),
	}
	if sig.Brand == "" && sig.Product == "" {
		return nil, nil
	}
	return sig, nil
}
