package redisworker

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers every queued job on the subscribed channel.
type fakeRedis struct {
	mtx    sync.Mutex
	subs   map[string][]chan string
	jobs   []Request
	answer func(Request) Response
}

func newFakeRedis(answer func(Request) Response) *fakeRedis {
	return &fakeRedis{subs: map[string][]chan string{}, answer: answer}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }

func (f *fakeRedis) Close() error { return nil }

func (f *fakeRedis) Subscribe(ctx context.Context, ch chan string, subscribeTo ...string) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	for _, s := range subscribeTo {
		f.subs[s] = append(f.subs[s], ch)
	}
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, data string) error {
	f.mtx.Lock()
	subs := append([]chan string(nil), f.subs[channel]...)
	f.mtx.Unlock()
	for _, ch := range subs {
		go func(ch chan string) { ch <- data }(ch)
	}
	return nil
}

func (f *fakeRedis) SAdd(ctx context.Context, set string, values ...interface{}) error {
	for _, v := range values {
		req := Request{}
		if err := json.UnmarshalFromString(v.(string), &req); err != nil {
			return err
		}
		f.mtx.Lock()
		f.jobs = append(f.jobs, req)
		f.mtx.Unlock()
		if f.answer == nil {
			continue
		}
		out, err := json.MarshalToString(f.answer(req))
		if err != nil {
			return err
		}
		if err := f.Publish(ctx, req.ResponseEvent, out); err != nil {
			return err
		}
	}
	return nil
}

func TestSynthesize(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newFakeRedis(func(req Request) Response {
		return Response{
			Jid:     req.Jid,
			Wid:     "gpu-0",
			Payload: ResponsePayload{Data: base64.StdEncoding.EncodeToString([]byte("RIFF-audio"))},
		}
	})
	w := New(ctx, r, "tasks", "results", time.Minute)

	data, err := w.Synthesize(ctx, "Hello.", "speakers/onyx.wav", "en")
	require.NoError(t, err)
	assert.Equal(t, "RIFF-audio", string(data))

	require.Len(t, r.jobs, 1)
	job := r.jobs[0]
	assert.Equal(t, EventSynthesize, job.Event)
	assert.Equal(t, "results", job.ResponseEvent)
	payload := job.Payload.(map[string]interface{})
	assert.Equal(t, "Hello.", payload["text"])
	assert.Equal(t, "speakers/onyx.wav", payload["speaker_wav"])
}

func TestSynthesizeWorkerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newFakeRedis(func(req Request) Response {
		return Response{Jid: req.Jid, Wid: "gpu-1", Error: "out of memory"}
	})
	w := New(ctx, r, "tasks", "results", time.Minute)

	_, err := w.Synthesize(ctx, "Hello.", "onyx.wav", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestSynthesizeTimesOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, newFakeRedis(nil), "tasks", "results", time.Minute)

	tctx, tcancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer tcancel()
	_, err := w.Synthesize(tctx, "Hello.", "onyx.wav", "en")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	w.mtx.Lock()
	assert.Empty(t, w.cb)
	w.mtx.Unlock()
}

func TestSynthesizeAppliesTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, newFakeRedis(nil), "tasks", "results", 50*time.Millisecond)

	_, err := w.Synthesize(context.Background(), "Hello.", "onyx.wav", "en")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSynthesizeFailsWhenListenerStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := newFakeRedis(nil)
	w := New(ctx, r, "tasks", "results", time.Minute)

	errc := make(chan error, 1)
	go func() {
		_, err := w.Synthesize(context.Background(), "Hello.", "onyx.wav", "en")
		errc <- err
	}()

	require.Eventually(t, func() bool {
		r.mtx.Lock()
		defer r.mtx.Unlock()
		return len(r.jobs) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(2 * time.Second):
		t.Fatal("pending job still waiting after the listener stopped")
	}

	_, err := w.Synthesize(context.Background(), "Again.", "onyx.wav", "en")
	assert.ErrorIs(t, err, ErrStopped)
}
