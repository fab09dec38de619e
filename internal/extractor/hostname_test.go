package extractor_test

import (
	"testing"

	"github.com/raysh454/ethicheck/internal/extractor"
	"github.com/raysh454/ethicheck/internal/page"
)

func TestBrandFromHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{"ca.gymshark.com", "gymshark"},
		{"uk.gymshark.com", "gymshark"},
		{"de.gymshark.de", "gymshark"},
		{"en-gb.allbirds.com", "allbirds"},
		{"www.patagonia.com", "patagonia"},
		{"shop.allbirds.com", "allbirds"},
		{"checkout.brand.io", "brand"},
		{"my.brand.shop", "brand"},
		{"hm.com", "hm"},
		{"www.hm.com", "hm"},
		{"us.hm.com", "hm"},
		{"www.example.co.uk", "example"},
		{"uk.example.co.uk", "example"},
		{"localhost", "localhost"},
		{"127.0.0.1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractor.BrandFromHost(tt.host); got != tt.want {
			t.Errorf("BrandFromHost(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestIsMarketplace(t *testing.T) {
	t.Parallel()

	for _, host := range []string{"www.amazon.com", "amazon.co.uk", "smile.amazon.com", "www.ebay.de", "www.walmart.com", "www.etsy.com", "de.zalando.de"} {
		if !extractor.IsMarketplace(host) {
			t.Errorf("IsMarketplace(%q) = false, want true", host)
		}
	}
	for _, host := range []string{"www.patagonia.com", "ca.gymshark.com", "amazonbasics-fan.example.com", ""} {
		if extractor.IsMarketplace(host) {
			t.Errorf("IsMarketplace(%q) = true, want false", host)
		}
	}
}

func TestMarketplaceNeverYieldsItsOwnName(t *testing.T) {
	t.Parallel()

	const body = `<html><head>
		<title>Acme Kettle - Kitchen</title>
		<meta property="og:site_name" content="MARKETPLACE">
		<meta property="og:title" content="Acme Kettle">
	</head><body><p>no heading</p></body></html>`

	hosts := []string{"www.amazon.com", "www.ebay.com", "www.walmart.com", "www.etsy.com", "www.target.com", "www.aliexpress.com"}
	for _, host := range hosts {
		pc, err := page.Parse("https://"+host+"/item/1", []byte(body))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		label := extractor.RegistrableLabel(host)

		for _, s := range []extractor.Strategy{extractor.OpenGraph{}, extractor.HostnameHeuristic{}} {
			sig, err := s.TryExtract(pc)
			if err != nil {
				t.Fatalf("%s on %s: %v", s.Name(), host, err)
			}
			if sig == nil {
				continue
			}
			if sig.Brand != "" {
				t.Errorf("%s on %s returned brand %q (marketplace %q)", s.Name(), host, sig.Brand, label)
			}
		}
	}
}

func TestHostnameHeuristic_ProductFromPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		body    string
		brand   string
		product string
	}{
		{
			name:    "heading wins",
			url:     "https://ca.gymshark.com/products/vital-seamless",
			body:    `<html><head><title>Ignored - Gymshark</title></head><body><h1> Vital Seamless  Leggings </h1></body></html>`,
			brand:   "gymshark",
			product: "Vital Seamless Leggings",
		},
		{
			name:    "title first segment on hyphen",
			url:     "https://www.patagonia.com/product/1",
			body:    `<html><head><title>Better Sweater Jacket - Patagonia</title></head><body></body></html>`,
			brand:   "patagonia",
			product: "Better Sweater Jacket",
		},
		{
			name:    "title first segment on em dash",
			url:     "https://www.amazon.com/gp/buy/spc",
			body:    `<html><head><title>Checkout — Amazon.com</title></head><body></body></html>`,
			brand:   "",
			product: "Checkout",
		},
		{
			name:    "hyphenated words are not split",
			url:     "https://shop.example.com/x",
			body:    `<html><head><title>T-Shirt</title></head></html>`,
			brand:   "example",
			product: "T-Shirt",
		},
	}
	for _, tt := range tests {
		pc, err := page.Parse(tt.url, []byte(tt.body))
		if err != nil {
			t.Fatalf("%s: parse: %v", tt.name, err)
		}
		sig, err := extractor.HostnameHeuristic{}.TryExtract(pc)
		if err != nil || sig == nil {
			t.Fatalf("%s: got (%v, %v)", tt.name, sig, err)
		}
		if sig.Brand != tt.brand || sig.Product != tt.product {
			t.Errorf("%s: got brand=%q product=%q, want brand=%q product=%q", tt.name, sig.Brand, sig.Product, tt.brand, tt.product)
		}
	}
}
