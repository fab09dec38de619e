package extractor

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/ethicheck/internal/page"
	"github.com/raysh454/ethicheck/internal/utils"
)

// Microdata reads schema.org itemprop attributes, scoped to the first
// Product itemscope when there is one.
type Microdata struct{}

func (Microdata) Name() string { return "microdata" }

func (Microdata) TryExtract(pc *page.Context) (*PageSignal, error) {
	if !pc.HasDOM() {
		return nil, nil
	}
	scope := pc.Doc.Find(`[itemtype*="schema.org/Product"]`).First()
	if scope.Length() == 0 {
		scope = pc.Doc.Selection
	}

	sig := &PageSignal{
		Brand:   itemBrand(scope),
		Product: itemName(scope),
		Country: itemValue(scope.Find(`[itemprop="countryOfOrigin"]`).First()),
	}
	if sig.Brand == "" && sig.Product == "" {
		return nil, nil
	}
	return sig, nil
}

func itemValue(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return utils.CollapseSpace(utils.FirstNonEmpty(s.AttrOr("content", ""), s.Text()))
}

func itemBrand(scope *goquery.Selection) string {
	b := scope.Find(`[itemprop="brand"]`).First()
	if b.Length() == 0 {
		return ""
	}
	if v, ok := b.Attr("content"); ok && v != "" {
		return v
	}
	if name := b.Find(`[itemprop="name"]`).First(); name.Length() > 0 {
		return itemValue(name)
	}
	return itemValue(b)
}

// itemName skips name properties nested inside brand or offers.
func itemName(scope *goquery.Selection) string {
	var out string
	scope.Find(`[itemprop="name"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.ParentsFiltered(`[itemprop="brand"], [itemprop="offers"], [itemprop="manufacturer"]`).Length() > 0 {
			return true
		}
		out = itemValue(s)
		return out == ""
	})
	return out
}
