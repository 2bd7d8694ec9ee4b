package instances

import (
	"context"
)

// Synthesizer turns one chunk of text into WAV bytes spoken with the voice
// whose reference sample lives at voiceRef.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceRef, language string) ([]byte, error)
}
