package redis

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/instances"
	"github.com/sirupsen/logrus"
)

type redisInstance struct {
	c       *redis.Client
	p       *redis.PubSub
	subs    map[string][]*redisSub
	subsMtx sync.Mutex
}

// NewInstance connects to the job queue used by the redis synthesis backend.
func NewInstance(ctx context.Context, uri string) (instances.Redis, error) {
	options, err := redis.ParseURL(uri)
	if err != nil {
		return nil, errs.Wrap(errs.ErrResourceInit, "redis", "parse uri", err)
	}

	rc := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	i := &redisInstance{
		c:    rc,
		p:    rc.Subscribe(ctx),
		subs: make(map[string][]*redisSub),
	}

	if err := i.Ping(ctx); err != nil {
		_ = i.c.Close()
		return nil, errs.Wrap(errs.ErrResourceInit, "redis", "ping", err)
	}

	go func() {
		defer func() {
			if err := recover(); err != nil {
				logrus.WithField("err", err).Error("panic in subs")
			}
		}()
		ch := i.p.Channel()
		var msg *redis.Message
		for msg = range ch {
			payload := msg.Payload
			i.subsMtx.Lock()
			for _, s := range i.subs[msg.Channel] {
				go func(s *redisSub) {
					defer func() {
						if err := recover(); err != nil {
							logrus.WithField("err", err).Error("panic in subs")
						}
					}()
					s.ch <- payload
				}(s)
			}
			i.subsMtx.Unlock()
		}
	}()

	return i, nil
}

func (i *redisInstance) Ping(ctx context.Context) error {
	return i.c.Ping(ctx).Err()
}

func (i *redisInstance) SAdd(ctx context.Context, key string, values ...interface{}) error {
	return i.c.SAdd(ctx, key, values...).Err()
}

func (i *redisInstance) Close() error {
	_ = i.p.Close()
	return i.c.Close()
}
