package scrape

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// collapseWhitespace replaces multiple whitespace with single space.
var whitespaceRegex = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// hasClass reports whether n carries every one of classes.
func hasClass(n *html.Node, classes ...string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	have := map[string]bool{}
	for _, c := range strings.Fields(v) {
		have[c] = true
	}
	for _, want := range classes {
		if !have[want] {
			return false
		}
	}
	return true
}

func isElement(n *html.Node, names ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, name := range names {
		if n.Data == name {
			return true
		}
	}
	return false
}

// find returns the first node under root, in document order, matching fn.
func find(root *html.Node, fn func(*html.Node) bool) *html.Node {
	if fn(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := find(c, fn); n != nil {
			return n
		}
	}
	return nil
}

// findAll returns every node under root matching fn, without descending
// into matches.
func findAll(root *html.Node, fn func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if fn(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// textNodes lists the text nodes under n in document order.
func textNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isElement(n, "script", "style") {
			return
		}
		if n.Type == html.TextNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// strippedStrings returns the trimmed, non-empty text pieces under n.
func strippedStrings(n *html.Node) []string {
	var out []string
	for _, t := range textNodes(n) {
		if s := strings.TrimSpace(t.Data); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rawText concatenates the text under n as is.
func rawText(n *html.Node) string {
	var sb strings.Builder
	for _, t := range textNodes(n) {
		sb.WriteString(t.Data)
	}
	return sb.String()
}

// replaceWithText swaps n for a single text node.
func replaceWithText(n *html.Node, text string) {
	if n.Parent == nil {
		return
	}
	n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
	n.Parent.RemoveChild(n)
}
