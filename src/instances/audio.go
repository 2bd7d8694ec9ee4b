package instances

import (
	"context"
)

// AudioTool is the external audio processor. Operations on a single path
// rewrite that file in place.
type AudioTool interface {
	Concat(ctx context.Context, inputs []string, out string) error
	ChangeTempo(ctx context.Context, path string, factor float64) error
	ApplyEffect(ctx context.Context, path string, filter string) error
	Transcode(ctx context.Context, path string, codec string) (string, error)
}
