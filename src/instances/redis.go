package instances

import (
	"context"
)

type Redis interface {
	Ping(ctx context.Context) error
	Subscribe(ctx context.Context, ch chan string, subscribeTo ...string)
	Publish(ctx context.Context, channel string, data string) error
	SAdd(ctx context.Context, set string, values ...interface{}) error
	Close() error
}
