// Package wavtest builds small WAV fixtures for tests.
package wavtest

import (
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/robert-clayton/audiobook/src/wavutil"
	"github.com/stretchr/testify/require"
)

// Format is 8kHz mono 16 bit PCM.
var Format = wavutil.Format{SampleRate: 8000, BitDepth: 16, NumChannels: 1, AudioFormat: 1}

// Tone returns a WAV of n samples all set to value.
func Tone(t testing.TB, n, value int) []byte {
	t.Helper()
	data := make([]int, n)
	for i := range data {
		data[i] = value
	}
	b, err := wavutil.Encode(Format, &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Format.NumChannels, SampleRate: Format.SampleRate},
		Data:           data,
		SourceBitDepth: Format.BitDepth,
	})
	require.NoError(t, err)
	return b
}

// Write stores a tone at path.
func Write(t testing.TB, path string, n, value int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, Tone(t, n, value), 0o644))
}
