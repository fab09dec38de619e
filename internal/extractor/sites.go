package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/ethicheck/internal/page"
	"github.com/raysh454/ethicheck/internal/utils"
)

// hostHasLabel reports whether any dot-separated label of host equals label.
func hostHasLabel(host, label string) bool {
	for _, l := range strings.Split(host, ".") {
		if l == label {
			return true
		}
	}
	return false
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		if v := utils.FirstNonEmpty(s.AttrOr("content", ""), s.Text()); v != "" {
			return utils.CollapseSpace(v)
		}
	}
	return ""
}

// AmazonExtractor reads the byline, title and product detail rows of Amazon
// product pages.
type AmazonExtractor struct{}

var (
	amazonVisitStore = regexp.MustCompile(`(?i)visit the (.+?) store`)
	amazonBrandLabel = regexp.MustCompile(`(?i)^brand:\s*(.+)$`)
	bidiMarks        = strings.NewReplacer("\u200e", "", "\u200f", "", "\u00a0", " ")
)

func (AmazonExtractor) Name() string { return "amazon" }

func (AmazonExtractor) TryExtract(pc *page.Context) (*PageSignal, error) {
	if !pc.HasDOM() || !hostHasLabel(pc.Host, "amazon") {
		return nil, nil
	}
	doc := pc.Doc

	byline := firstText(doc, "#bylineInfo", "#brand")
	brand := ""
	if m := amazonVisitStore.FindStringSubmatch(byline); m != nil {
		brand = m[1]
	} else if m := amazonBrandLabel.FindStringSubmatch(byline); m != nil {
		brand = m[1]
	} else if byline != "" && !strings.Contains(strings.ToLower(byline), "amazon") {
		brand = byline
	}
	if brand == "" {
		brand = detailValue(doc, "brand")
	}

	return &PageSignal{
		Brand:   brand,
		Product: firstText(doc, "#productTitle", "#title"),
		Country: detailValue(doc, "country of origin"),
	}, nil
}

// detailValue finds a "Label: value" pair in Amazon's detail tables or
// bullet lists.
func detailValue(doc *goquery.Document, label string) string {
	var out string
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		th := strings.ToLower(utils.CollapseSpace(bidiMarks.Replace(row.Find("th").First().Text())))
		if th == label {
			out = utils.CollapseSpace(bidiMarks.Replace(row.Find("td").First().Text()))
			return false
		}
		return true
	})
	if out != "" {
		return out
	}
	doc.Find("#detailBullets_feature_div li, #detailBulletsWrapper_feature_div li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		txt := utils.CollapseSpace(bidiMarks.Replace(li.Text()))
		key, val, ok := strings.Cut(txt, ":")
		if ok && strings.ToLower(strings.TrimSpace(key)) == label {
			out = strings.TrimSpace(val)
			return false
		}
		return true
	})
	return out
}

// WalmartExtractor reads Walmart's brand link and product heading.
type WalmartExtractor struct{}

func (WalmartExtractor) Name() string { return "walmart" }

func (WalmartExtractor) TryExtract(pc *page.Context) (*PageSignal, error) {
	if !pc.HasDOM() || !hostHasLabel(pc.Host, "walmart") {
		return nil, nil
	}
	doc := pc.Doc
	return &PageSignal{
		Brand:   firstText(doc, `[data-testid="product-brand"]`, `a[link-identifier="brandName"]`, `[itemprop="brand"]`),
		Product: firstText(doc, "h1#main-title", `h1[itemprop="name"]`, "h1"),
	}, nil
}
