package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/robert-clayton/audiobook/src/errs"
)

const rrBase = "https://www.royalroad.com/fiction/1/world-keeper/chapter/"

// pages serves canned bodies by URL. A body of "429" answers rate limited.
type pages map[string]string

func (p pages) Fetch(_ context.Context, pageURL string) ([]byte, error) {
	body, ok := p[pageURL]
	switch {
	case !ok:
		return nil, errs.Wrap(errs.ErrNetwork, "test", "GET "+pageURL, fmt.Errorf("not found"))
	case body == "429":
		return nil, errs.Wrap(errs.ErrRateLimited, "test", "GET "+pageURL, nil)
	}
	return []byte(body), nil
}

func rrPage(title, date, next string, lines ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><head>")
	if title != "" {
		fmt.Fprintf(&sb, "<title>%s - World Keeper | Royal Road</title>", title)
	}
	sb.WriteString("</head><body>")
	if date != "" {
		fmt.Fprintf(&sb, `<time datetime="%s">some days ago</time>`, date)
	}
	sb.WriteString(`<div class="chapter-content">`)
	for _, l := range lines {
		fmt.Fprintf(&sb, "<p>%s</p>", l)
	}
	sb.WriteString(`</div><div class="row nav-buttons">`)
	sb.WriteString(`<div class="col-xs-6"><a class="btn btn-primary col-xs-12" href="/fiction/1/world-keeper/chapter/1">Previous <br>Chapter</a></div>`)
	if next != "" {
		fmt.Fprintf(&sb, `<div class="col-xs-6"><a class="btn btn-primary col-xs-12" href="%s">Next <br>Chapter</a></div>`, next)
	}
	sb.WriteString("</div></body></html>")
	return sb.String()
}
