package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/raysh454/ethicheck/internal/page"
)

// StructuredData reads schema.org Product nodes from JSON-LD blocks.
type StructuredData struct{}

func (StructuredData) Name() string { return "structured-data" }

// TryExtract returns the first Product node with a name or brand. Blocks that
// fail to parse are skipped; their error is reported only when no block
// yields a product.
func (StructuredData) TryExtract(pc *page.Context) (*PageSignal, error) {
	var errs []error
	for i, block := range pc.StructuredData() {
		var doc any
		if err := json.Unmarshal([]byte(block), &doc); err != nil {
			errs = append(errs, fmt.Errorf("json-ld block %d: %w", i, err))
			continue
		}
		if node := findProduct(doc, 0); node != nil {
			sig := &PageSignal{
				Brand:   nameOf(node["brand"]),
				Product: nameOf(node["name"]),
				Country: countryOf(node),
			}
			if sig.Brand != "" || sig.Product != "" {
				return sig, nil
			}
		}
	}
	return nil, errors.Join(errs...)
}

const maxJSONDepth = 12

// findProduct walks objects, arrays and @graph looking for @type Product.
func findProduct(v any, depth int) map[string]any {
	if depth > maxJSONDepth {
		return nil
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if p := findProduct(item, depth+1); p != nil {
				return p
			}
		}
	case map[string]any:
		if isProductType(t["@type"]) {
			return t
		}
		for _, k := range productSearchOrder(t) {
			if p := findProduct(t[k], depth+1); p != nil {
				return p
			}
		}
	}
	return nil
}

// productSearchOrder lists the keys of node to descend into: @graph, then
// mainEntity, then the rest sorted so the first match is stable.
func productSearchOrder(node map[string]any) []string {
	keys := make([]string, 0, len(node))
	var lead []string
	for k := range node {
		switch k {
		case "@context":
		case "@graph", "mainEntity":
			lead = append(lead, k)
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(lead)
	sort.Strings(keys)
	return append(lead, keys...)
}

func isProductType(v any) bool {
	switch t := v.(type) {
	case string:
		return isProductTypeName(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && isProductTypeName(s) {
				return true
			}
		}
	}
	return false
}

func isProductTypeName(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "http://schema.org/"), "https://schema.org/")
	return s == "Product" || s == "ProductGroup"
}

// nameOf reads a string, an object's "name", or the first usable array item.
func nameOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return nameOf(t["name"])
	case []any:
		for _, item := range t {
			if s := nameOf(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func countryOf(node map[string]any) string {
	if c := nameOf(node["countryOfOrigin"]); c != "" {
		return c
	}
	if m, ok := node["manufacturer"].(map[string]any); ok {
		if addr, ok := m["address"].(map[string]any); ok {
			return nameOf(addr["addressCountry"])
		}
	}
	return ""
}
