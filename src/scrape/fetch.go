package scrape

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const maxRedirects = 5

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// HTTPFetcher fetches pages over fasthttp, pacing requests to each host so a
// long walk through a series does not hammer the site.
type HTTPFetcher struct {
	client    *fasthttp.Client
	userAgent string
	delay     time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewHTTPFetcher(cfg configure.ScrapeCfg) *HTTPFetcher {
	return &HTTPFetcher{
		client: &fasthttp.Client{
			Name:                "audiobook",
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxResponseBodySize: 32 << 20,
		},
		userAgent: cfg.UserAgent,
		delay:     cfg.PoliteDelay,
		limiters:  map[string]*rate.Limiter{},
	}
}

// WithClient swaps the underlying fasthttp client.
func (f *HTTPFetcher) WithClient(client *fasthttp.Client) *HTTPFetcher {
	f.client = client
	return f
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		limit := rate.Inf
		if f.delay > 0 {
			limit = rate.Every(f.delay)
		}
		l = rate.NewLimiter(limit, 1)
		f.limiters[host] = l
	}
	return l
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrNetwork, "scrape", "parse url", err)
	}
	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return nil, errs.Wrap(errs.ErrInterrupted, "scrape", "wait", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(pageURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	if f.userAgent != "" {
		req.Header.SetUserAgent(f.userAgent)
	}
	req.Header.Set(fasthttp.HeaderAccept, "text/html,application/xhtml+xml")

	log.WithField("url", pageURL).Debug("fetching")
	if err := f.client.DoRedirects(req, resp, maxRedirects); err != nil {
		return nil, errs.Wrap(errs.ErrNetwork, "scrape", "GET "+pageURL, err)
	}

	switch code := resp.StatusCode(); {
	case code == fasthttp.StatusTooManyRequests:
		return nil, errs.Wrap(errs.ErrRateLimited, "scrape", "GET "+pageURL, nil)
	case code != fasthttp.StatusOK:
		return nil, errs.Wrap(errs.ErrNetwork, "scrape", fmt.Sprintf("GET %s returned status %d", pageURL, code), nil)
	}

	return append([]byte(nil), resp.Body()...), nil
}
