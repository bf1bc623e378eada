package text

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// collect returns the document's text nodes in document order, skipping
// elements whose content is never rendered as text.
func (c *Cleaner) collect(doc *goquery.Document) []string {
	var parts []string
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		switch n.Type {
		case nethtml.TextNode:
			parts = append(parts, n.Data)
			return
		case nethtml.ElementNode:
			if c.skipElement(n) {
				return
			}
		case nethtml.CommentNode, nethtml.DoctypeNode:
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return parts
}

func (c *Cleaner) skipElement(n *nethtml.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Template:
		return c.config.StripScripts
	case atom.Style:
		return c.config.StripStyles
	case atom.Noscript:
		return c.config.StripNoscript
	}
	return false
}

// stripTags is the fallback when the parser rejects the input.
func stripTags(s string) string {
	return html.UnescapeString(tagRegex.ReplaceAllString(s, " "))
}

// collapseWhitespace trims s and replaces every run of Unicode whitespace,
// including non-breaking spaces, with a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
