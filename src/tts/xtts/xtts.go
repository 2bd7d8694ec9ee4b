package xtts

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const endpoint = "/tts_to_audio/"

type Request struct {
	Text       string `json:"text"`
	SpeakerWav string `json:"speaker_wav"`
	Language   string `json:"language"`
}

// Client talks to an XTTS v2 API server that clones voices from reference
// samples on its own disk.
type Client struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:     strings.TrimSuffix(url, "/"),
		timeout: timeout,
		client: &fasthttp.Client{
			Name:                "audiobook",
			MaxResponseBodySize: 256 << 20,
		},
	}
}

// WithClient swaps the underlying fasthttp client.
func (c *Client) WithClient(client *fasthttp.Client) *Client {
	c.client = client
	return c
}

func (c *Client) Synthesize(ctx context.Context, text, voiceRef, language string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref, err := filepath.Abs(voiceRef)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(Request{
		Text:       text,
		SpeakerWav: ref,
		Language:   language,
	})
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url + endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(fasthttp.HeaderAccept, "audio/wav")
	req.SetBody(body)

	if err := c.client.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return nil, errs.Wrap(errs.ErrNetwork, "xtts", "request", err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("xtts: POST %s returned status %d: %s", endpoint, code, truncate(resp.Body(), 200))
	}

	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return strings.TrimSpace(string(b))
}
