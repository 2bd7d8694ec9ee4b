package redisworker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/instances"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const EventSynthesize = 4

// ErrStopped is returned for jobs still waiting when the result listener
// stops.
var ErrStopped = errors.New("synthesis worker listener stopped")

type Request struct {
	Jid           string      `json:"jid"`
	Event         int         `json:"event"`
	ResponseEvent string      `json:"response_event"`
	Payload       interface{} `json:"payload"`
}

type SynthesizePayload struct {
	Text       string `json:"text"`
	SpeakerWav string `json:"speaker_wav"`
	Language   string `json:"language"`
}

type Response struct {
	Event   int             `json:"event"`
	Jid     string          `json:"jid"`
	Wid     string          `json:"wid"`
	Payload ResponsePayload `json:"payload"`
	Error   string          `json:"error,omitempty"`
}

type ResponsePayload struct {
	Data    string  `json:"data"`
	Length  float64 `json:"length"`
	Speaker string  `json:"speaker"`
}

// Worker queues synthesis jobs for remote GPU workers. Jobs go into a redis
// set; results come back base64 encoded on a pub/sub channel, keyed by job id.
// A job waits at most timeout for its result.
type Worker struct {
	redis       instances.Redis
	setKey      string
	outputEvent string
	timeout     time.Duration

	mtx  sync.Mutex
	cb   map[string]chan Response
	done chan struct{}
}

// New subscribes to the result channel for as long as ctx lives.
func New(ctx context.Context, redis instances.Redis, setKey, outputEvent string, timeout time.Duration) *Worker {
	inst := &Worker{
		redis:       redis,
		setKey:      setKey,
		outputEvent: outputEvent,
		timeout:     timeout,
		cb:          make(map[string]chan Response),
		done:        make(chan struct{}),
	}

	ch := make(chan string)
	redis.Subscribe(ctx, ch, outputEvent)
	go inst.process(ctx, ch)

	return inst
}

func (inst *Worker) process(ctx context.Context, ch chan string) {
	defer close(inst.done)
	for {
		var msg string
		select {
		case <-ctx.Done():
			return
		case msg = <-ch:
		}

		resp := Response{}
		if err := json.UnmarshalFromString(msg, &resp); err != nil {
			logrus.WithError(err).Error("bad synthesis response")
			continue
		}
		inst.mtx.Lock()
		if v, ok := inst.cb[resp.Jid]; ok {
			v <- resp
			delete(inst.cb, resp.Jid)
		}
		inst.mtx.Unlock()
	}
}

func (inst *Worker) Synthesize(ctx context.Context, text, voiceRef, language string) ([]byte, error) {
	select {
	case <-inst.done:
		return nil, ErrStopped
	default:
	}

	if inst.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inst.timeout)
		defer cancel()
	}

	jid := uuid.NewString()
	req, err := json.MarshalToString(Request{
		Jid:           jid,
		Event:         EventSynthesize,
		ResponseEvent: inst.outputEvent,
		Payload: SynthesizePayload{
			Text:       text,
			SpeakerWav: voiceRef,
			Language:   language,
		},
	})
	if err != nil {
		return nil, err
	}

	cb := make(chan Response, 1)
	inst.mtx.Lock()
	inst.cb[jid] = cb
	inst.mtx.Unlock()

	defer func() {
		inst.mtx.Lock()
		delete(inst.cb, jid)
		inst.mtx.Unlock()
	}()

	if err := inst.redis.SAdd(ctx, inst.setKey, req); err != nil {
		return nil, errs.Wrap(errs.ErrNetwork, "redis", "queue job", err)
	}

	var resp Response
	select {
	case resp = <-cb:
	case <-inst.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("worker %s: %s", resp.Wid, resp.Error)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Payload.Data)
	if err != nil {
		return nil, err
	}
	return data, nil
}
