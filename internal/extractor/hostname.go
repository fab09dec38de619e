package extractor

import (
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/raysh454/ethicheck/internal/page"
	"github.com/raysh454/ethicheck/internal/utils"
)

// marketplaces are retailers whose own name would be mistaken for the
// product's brand.
var marketplaces = map[string]bool{
	"amazon": true, "ebay": true, "walmart": true, "target": true, "etsy": true,
	"aliexpress": true, "alibaba": true, "temu": true, "shein": true, "wish": true,
	"bestbuy": true, "costco": true, "wayfair": true, "zalando": true, "asos": true,
	"rakuten": true, "flipkart": true, "mercadolibre": true, "jd": true, "taobao": true,
	"tmall": true, "otto": true, "bol": true, "allegro": true, "kohls": true,
	"macys": true, "nordstrom": true, "homedepot": true, "lowes": true, "newegg": true,
}

// countryLabels are locale subdomains such as ca.<brand>.com.
var countryLabels = map[string]bool{
	"us": true, "uk": true, "gb": true, "ca": true, "au": true, "nz": true, "ie": true,
	"de": true, "at": true, "ch": true, "fr": true, "be": true, "nl": true, "lu": true,
	"es": true, "pt": true, "it": true, "se": true, "no": true, "dk": true, "fi": true,
	"pl": true, "cz": true, "jp": true, "kr": true, "cn": true, "hk": true, "tw": true,
	"sg": true, "my": true, "in": true, "mx": true, "br": true, "ar": true, "cl": true,
	"za": true, "ae": true, "sa": true, "eu": true, "en": true, "fr-ca": true, "en-gb": true,
	"en-us": true, "intl": true, "global": true,
}

// genericPrefixes are subdomains that describe a function, not a brand.
var genericPrefixes = map[string]bool{
	"www": true, "www1": true, "www2": true, "m": true, "mobile": true, "shop": true,
	"store": true, "checkout": true, "secure": true, "pay": true, "payment": true,
	"buy": true, "order": true, "orders": true, "cart": true, "account": true,
	"app": true, "web": true, "online": true, "my": true, "smile": true,
}

// tldTokens backs up the public suffix list for hosts it does not cover.
var tldTokens = map[string]bool{
	"com": true, "net": true, "org": true, "co": true, "io": true, "shop": true,
	"store": true, "biz": true, "info": true, "ac": true, "gov": true, "edu": true,
}

// registrable splits host into labels and returns the index of the
// registrable label (the one just left of the public suffix).
func registrable(host string) ([]string, int) {
	host = utils.StripWWW(strings.TrimSuffix(host, "."))
	if host == "" || net.ParseIP(host) != nil {
		return nil, -1
	}
	labels := strings.Split(host, ".")

	n := len(labels)
	if suffix, _ := publicsuffix.PublicSuffix(host); suffix != "" && suffix != host {
		n = len(labels) - len(strings.Split(suffix, "."))
	}
	for n > 1 && tldTokens[labels[n-1]] {
		n--
	}
	if n < 1 {
		n = 1
	}
	return labels, n - 1
}

// RegistrableLabel returns the brand-bearing label of host ("amazon" for
// www.amazon.co.uk), or "" for IPs and empty hosts.
func RegistrableLabel(host string) string {
	labels, idx := registrable(host)
	if idx < 0 {
		return ""
	}
	return labels[idx]
}

// IsMarketplace reports whether host belongs to a known marketplace or
// retailer.
func IsMarketplace(host string) bool {
	return marketplaces[RegistrableLabel(host)]
}

// BrandFromHost guesses a brand from a hostname: drop www., the public
// suffix, locale and generic subdomains, and take the first label left. The
// registrable label itself is never dropped, so a two-letter brand domain
// such as hm.com is kept.
func BrandFromHost(host string) string {
	labels, idx := registrable(host)
	if idx < 0 {
		return ""
	}
	for _, l := range labels[:idx] {
		if countryLabels[l] || genericPrefixes[l] || tldTokens[l] {
			continue
		}
		return l
	}
	return labels[idx]
}

// HostnameHeuristic is the last-resort strategy.
type HostnameHeuristic struct{}

var titleSeparator = regexp.MustCompile(`\s+[-–—]\s+`)

func (HostnameHeuristic) Name() string { return "hostname" }

func (HostnameHeuristic) TryExtract(pc *page.Context) (*PageSignal, error) {
	sig := &PageSignal{Product: productFromPage(pc)}
	if !IsMarketplace(pc.Host) {
		sig.Brand = BrandFromHost(pc.Host)
	}
	if sig.Brand == "" && sig.Product == "" {
		return nil, nil
	}
	return sig, nil
}

// productFromPage prefers the first heading, else the first segment of the
// title.
func productFromPage(pc *page.Context) string {
	if h := pc.FirstHeading(); h != "" {
		return h
	}
	title := pc.Title()
	if title == "" {
		return ""
	}
	return strings.TrimSpace(titleSeparator.Split(title, 2)[0])
}
