package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

type royalRoad struct{}

// title is the page title with the " - <series>" suffix cut off.
func (royalRoad) title(doc *html.Node, series string) string {
	n := find(doc, func(n *html.Node) bool { return isElement(n, "title") })
	if n == nil {
		return ""
	}
	title := strings.TrimSpace(rawText(n))
	if series != "" {
		title = strings.SplitN(title, " - "+series, 2)[0]
	}
	return strings.TrimSpace(title)
}

func (royalRoad) content(doc *html.Node) *html.Node {
	return find(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "chapter-content")
	})
}

func (royalRoad) next(doc *html.Node) string {
	nav := find(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "row", "nav-buttons")
	})
	if nav == nil {
		return ""
	}
	for _, a := range findAll(nav, func(n *html.Node) bool {
		return isElement(n, "a") && hasClass(n, "btn", "btn-primary")
	}) {
		href, ok := attr(a, "href")
		if ok && strings.Contains(rawText(a), "Next") {
			return href
		}
	}
	return ""
}
