package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	"golang.org/x/net/html"
)

const (
	unknownDate = "unknown_date"
	// lines longer than this are page furniture, not prose
	maxLineLen = 10000
)

var ErrUnsupportedSource = errors.New("unsupported source")

// Chapter is one scraped chapter page.
type Chapter struct {
	URL       string
	Title     string
	Content   string
	Published string
	Next      string
}

// ChapterSource turns a chapter URL into its text, metadata and the link to
// the chapter after it.
type ChapterSource interface {
	Fetch(ctx context.Context, pageURL string) (Chapter, error)
}

// layout knows where a site keeps each part of a chapter page.
type layout interface {
	title(doc *html.Node, series string) string
	content(doc *html.Node) *html.Node
	next(doc *html.Node) string
}

var layouts = map[string]layout{
	"royalroad.com":   royalRoad{},
	"scribblehub.com": scribbleHub{},
}

func layoutFor(pageURL string) (layout, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, pageURL)
	}
	host := strings.ToLower(u.Hostname())
	for domain, l := range layouts {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, host)
}

type source struct {
	series  string
	layout  layout
	fetcher Fetcher
	render  Renderer
	filter  *Filter
}

// SourceFor picks the chapter source for a series from the domain of its
// latest chapter, or of its series URL when no chapter is known yet.
func SourceFor(series *configure.SeriesConfig, fetcher Fetcher, filter *Filter) (ChapterSource, error) {
	ref := series.Latest
	if ref == "" {
		ref = series.URL
	}
	l, err := layoutFor(ref)
	if err != nil {
		return nil, err
	}
	render, ok := RendererFor(series.System.Type)
	if !ok {
		return nil, fmt.Errorf("unknown system type %q", series.System.Type)
	}
	if filter == nil {
		filter = DefaultFilter()
	}
	return &source{
		series:  series.Name,
		layout:  l,
		fetcher: fetcher,
		render:  render,
		filter:  filter,
	}, nil
}

func (s *source) Fetch(ctx context.Context, pageURL string) (Chapter, error) {
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return Chapter{}, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Chapter{}, errs.Wrap(errs.ErrDecode, "scrape", "parse "+pageURL, err)
	}

	ch := Chapter{
		URL:       pageURL,
		Title:     CleanTitle(s.layout.title(doc, s.series)),
		Published: publishedDate(doc),
	}
	if href := s.layout.next(doc); href != "" {
		ch.Next = resolve(pageURL, href)
	}

	root := s.layout.content(doc)
	if root == nil {
		return ch, errs.Wrap(errs.ErrDecode, "scrape", "no chapter content at "+pageURL, nil)
	}
	unwrapPlainWeight(root)
	s.render(root)
	ch.Content = s.lines(root)
	return ch, nil
}

// lines flattens the content into one line per text run, dropping repeats
// and anti-piracy notices.
func (s *source) lines(root *html.Node) string {
	seen := map[string]struct{}{}
	lines := []string{}
	for _, text := range strippedStrings(root) {
		line := collapseWhitespace(text)
		if line == "" || len(line) > maxLineLen {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		if s.filter.Blocked(line) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// publishedDate reads the first <time datetime> on the page as YYYY-MM-DD.
func publishedDate(doc *html.Node) string {
	n := find(doc, func(n *html.Node) bool {
		_, ok := attr(n, "datetime")
		return isElement(n, "time") && ok
	})
	if n == nil {
		return unknownDate
	}
	value, _ := attr(n, "datetime")
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return unknownDate
}

func resolve(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
