// Package page is a read-only view of a fetched page: its URL, host, head
// metadata, structured-data blocks and visible text.
package page

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/raysh454/ethicheck/internal/utils"
)

// MaxBodyText is how many characters of visible body text are kept before
// normalization.
const MaxBodyText = 20000

// Context is built once per assessment and shared by every extraction
// strategy and the keyword scanner.
type Context struct {
	URL  *url.URL
	Host string

	// Doc is nil for pages that could not be fetched or parsed.
	Doc *goquery.Document

	root        *html.Node
	visibleText *string
}

// Parse builds a Context from raw HTML. Parsing never fails hard: malformed
// markup yields whatever the HTML5 parser recovers.
func Parse(rawURL string, body []byte) (*Context, error) {
	c := Empty(rawURL)

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return c, err
	}
	c.root = root
	c.Doc = goquery.NewDocumentFromNode(root)
	c.Doc.Url = c.URL
	return c, nil
}

// Empty is a Context with only a URL.
func Empty(rawURL string) *Context {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u == nil {
		u = &url.URL{}
	}
	return &Context{
		URL:  u,
		Host: utils.ASCIIHost(u.Hostname()),
	}
}

// HasDOM reports whether a document was parsed.
func (c *Context) HasDOM() bool {
	return c != nil && c.Doc != nil
}

// Title returns the trimmed <title> text.
func (c *Context) Title() string {
	if !c.HasDOM() {
		return ""
	}
	return utils.CollapseSpace(c.Doc.Find("title").First().Text())
}

// Meta returns the content of the first <meta> whose name or property equals
// key (case-insensitive).
func (c *Context) Meta(key string) string {
	if !c.HasDOM() {
		return ""
	}
	key = strings.ToLower(key)
	var out string
	c.Doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := strings.ToLower(s.AttrOr("name", ""))
		prop := strings.ToLower(s.AttrOr("property", ""))
		if name != key && prop != key {
			return true
		}
		if v := strings.TrimSpace(s.AttrOr("content", "")); v != "" {
			out = v
			return false
		}
		return true
	})
	return out
}

// FirstHeading returns the text of the first <h1>.
func (c *Context) FirstHeading() string {
	if !c.HasDOM() {
		return ""
	}
	return utils.CollapseSpace(c.Doc.Find("h1").First().Text())
}

// StructuredData returns the raw bodies of every JSON-LD script block.
func (c *Context) StructuredData() []string {
	if !c.HasDOM() {
		return nil
	}
	var blocks []string
	c.Doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if txt := strings.TrimSpace(s.Text()); txt != "" {
			blocks = append(blocks, txt)
		}
	})
	return blocks
}

// VisibleText returns body text outside script, style, noscript and template
// elements, capped at MaxBodyText characters. It is computed once.
func (c *Context) VisibleText() string {
	if c == nil || c.root == nil {
		return ""
	}
	if c.visibleText != nil {
		return *c.visibleText
	}

	var sb strings.Builder
	body := findElement(c.root, "body")
	if body == nil {
		body = c.root
	}
	collectText(body, &sb, MaxBodyText)

	txt := utils.TruncateRunes(sb.String(), MaxBodyText)
	c.visibleText = &txt
	return txt
}

var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

func collectText(n *html.Node, sb *strings.Builder, limit int) {
	if sb.Len() >= limit*4 {
		// limit counts characters; bytes is a cheap upper bound to stop early
		return
	}
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(t)
		}
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb, limit)
	}
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}
