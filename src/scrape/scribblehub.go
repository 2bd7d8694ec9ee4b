package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

type scribbleHub struct{}

func (scribbleHub) title(doc *html.Node, _ string) string {
	n := find(doc, func(n *html.Node) bool {
		return isElement(n, "h1") && hasClass(n, "chapter-title")
	})
	if n == nil {
		n = find(doc, func(n *html.Node) bool { return isElement(n, "title") })
	}
	if n == nil {
		return ""
	}
	return strings.TrimSpace(rawText(n))
}

func (scribbleHub) content(doc *html.Node) *html.Node {
	return find(doc, func(n *html.Node) bool {
		id, _ := attr(n, "id")
		return isElement(n, "div") && id == "chp_raw"
	})
}

func (scribbleHub) next(doc *html.Node) string {
	nav := find(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "prenext")
	})
	if nav == nil {
		return ""
	}
	a := find(nav, func(n *html.Node) bool {
		return isElement(n, "a") && hasClass(n, "btn-next")
	})
	if a == nil {
		return ""
	}
	href, _ := attr(a, "href")
	return href
}
