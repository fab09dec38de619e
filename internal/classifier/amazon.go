package classifier

import (
	"net/url"
	"strings"
)

// AmazonRule replaces the generic match on Amazon storefronts, where "cart"
// paths aggregate many brands and product pages carry no hint at all.
type AmazonRule struct{}

var (
	amazonCartPaths     = []string{"/gp/cart", "/gp/aws/cart", "/cart"}
	amazonPurchasePaths = []string{"/dp/", "/gp/product/", "/checkout", "/gp/buy/", "/buy/", "/spc/"}
)

func (AmazonRule) Name() string { return "amazon" }

// Matches covers amazon.<tld> and its subdomains, including two-part
// suffixes like amazon.co.uk.
func (AmazonRule) Matches(host string) bool {
	host = strings.TrimPrefix(host, "www.")
	for _, label := range strings.Split(host, ".") {
		if label == "amazon" {
			return true
		}
	}
	return false
}

func (AmazonRule) Classify(u *url.URL) Classification {
	p := u.Path
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	for _, cart := range amazonCartPaths {
		if strings.HasPrefix(p, cart+"/") {
			return Classification{Reason: "amazon cart aggregation page"}
		}
	}
	for _, buy := range amazonPurchasePaths {
		if strings.Contains(p, buy) {
			return Classification{Checkout: true, Reason: "amazon product or purchase page"}
		}
	}
	return Classification{Reason: "amazon page outside product and purchase paths"}
}
