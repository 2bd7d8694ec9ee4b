package scrape

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func fetcher(t *testing.T, delay time.Duration, handler fasthttp.RequestHandler) *HTTPFetcher {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = fasthttp.Serve(ln, handler)
	}()
	t.Cleanup(func() { _ = ln.Close() })

	return NewHTTPFetcher(configure.ScrapeCfg{
		PoliteDelay: delay,
		UserAgent:   "test-agent",
		Timeout:     time.Second,
	}).WithClient(&fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	})
}

func TestFetch(t *testing.T) {
	var agent string
	f := fetcher(t, 0, func(ctx *fasthttp.RequestCtx) {
		agent = string(ctx.UserAgent())
		switch string(ctx.Path()) {
		case "/ok":
			ctx.SetBodyString("<html>ok</html>")
		case "/moved":
			ctx.Redirect("/ok", fasthttp.StatusFound)
		case "/busy":
			ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
		default:
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		}
	})

	body, err := f.Fetch(context.Background(), "http://fiction.test/ok")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
	assert.Equal(t, "test-agent", agent)

	body, err = f.Fetch(context.Background(), "http://fiction.test/moved")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))

	_, err = f.Fetch(context.Background(), "http://fiction.test/busy")
	assert.True(t, errs.Is(err, errs.ErrRateLimited))

	_, err = f.Fetch(context.Background(), "http://fiction.test/broken")
	assert.True(t, errs.Is(err, errs.ErrNetwork))
	assert.False(t, errs.Is(err, errs.ErrRateLimited))
}

func TestFetchPacesRequests(t *testing.T) {
	f := fetcher(t, 100*time.Millisecond, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString("ok")
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), "http://fiction.test/ok")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestFetchCanceled(t *testing.T) {
	f := fetcher(t, time.Hour, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString("ok")
	})
	_, err := f.Fetch(context.Background(), "http://fiction.test/ok")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, "http://fiction.test/ok")
	assert.True(t, errs.Is(err, errs.ErrInterrupted))
}
