package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	lists []string
	fail  error
	out   string
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, call{name: name, args: args})
	for i, a := range args {
		if a == "-f" && i+5 < len(args) && args[i+1] == "concat" {
			b, err := os.ReadFile(args[i+5])
			if err != nil {
				return err
			}
			f.lists = append(f.lists, string(b))
		}
	}
	if f.fail != nil {
		return f.fail
	}
	body := f.out
	if body == "" {
		body = "processed"
	}
	return os.WriteFile(args[len(args)-1], []byte(body), 0o644)
}

func newTool(t *testing.T) (*Tool, *fakeRunner, string) {
	t.Helper()
	dir := t.TempDir()
	r := &fakeRunner{}
	tool := New("ffmpeg", filepath.Join(dir, "tmp"))
	tool.WithCommandRunner(r.run)
	return tool, r, dir
}

func TestAtempoChain(t *testing.T) {
	cases := []struct {
		factor float64
		want   string
	}{
		{1.0, "atempo=1"},
		{1.25, "atempo=1.25"},
		{0.5, "atempo=0.5"},
		{2.0, "atempo=2"},
		{3.0, "atempo=2,atempo=1.5"},
		{0.25, "atempo=0.5,atempo=0.5"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AtempoChain(c.factor), "factor %v", c.factor)
	}
}

func TestChangeTempoInPlace(t *testing.T) {
	tool, r, dir := newTool(t)
	path := filepath.Join(dir, "ch.wav")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	require.NoError(t, tool.ChangeTempo(context.Background(), path, 1.5))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "processed", string(got))

	require.Len(t, r.calls, 1)
	assert.Equal(t, "ffmpeg", r.calls[0].name)
	assert.Contains(t, strings.Join(r.calls[0].args, " "), "-filter:a atempo=1.5")
	assert.NotEqual(t, path, r.calls[0].args[len(r.calls[0].args)-1])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestApplyEffectFailureKeepsOriginal(t *testing.T) {
	tool, r, dir := newTool(t)
	r.fail = errors.New("exit status 1")
	path := filepath.Join(dir, "ch.wav")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	err := tool.ApplyEffect(context.Background(), path, SystemFilter)
	assert.True(t, errs.Is(err, errs.ErrExternalTool))

	got, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, "original", string(got))
	assert.Contains(t, r.calls[0].args, SystemFilter)
}

func TestConcatWritesList(t *testing.T) {
	tool, r, dir := newTool(t)
	inputs := []string{filepath.Join(dir, "a.wav"), filepath.Join(dir, "it's.wav")}
	out := filepath.Join(dir, "out.wav")

	require.NoError(t, tool.Concat(context.Background(), inputs, out))
	assert.FileExists(t, out)

	require.Len(t, r.lists, 1)
	lines := strings.Split(strings.TrimSpace(r.lists[0]), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "file '"+inputs[0]+"'", lines[0])
	assert.Equal(t, "file '"+filepath.Join(dir, `it'\''s.wav`)+"'", lines[1])
	assert.Contains(t, strings.Join(r.calls[0].args, " "), "-safe 0")
	assert.Contains(t, strings.Join(r.calls[0].args, " "), "-c copy")

	entries, err := os.ReadDir(filepath.Join(dir, "tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries, "concat list must be removed")
}

func TestConcatNoInputs(t *testing.T) {
	tool, r, dir := newTool(t)
	err := tool.Concat(context.Background(), nil, filepath.Join(dir, "out.wav"))
	assert.True(t, errs.Is(err, errs.ErrExternalTool))
	assert.Empty(t, r.calls)
}

func TestTranscode(t *testing.T) {
	tool, r, dir := newTool(t)
	path := filepath.Join(dir, "ch.wav")
	require.NoError(t, os.WriteFile(path, []byte("wav"), 0o644))

	out, err := tool.Transcode(context.Background(), path, "mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ch.mp3"), out)
	assert.FileExists(t, out)
	assert.FileExists(t, path)

	args := strings.Join(r.calls[0].args, " ")
	assert.Contains(t, args, "-codec:a libmp3lame -qscale:a 2")
}

func TestTranscodeUnknownCodec(t *testing.T) {
	tool, r, dir := newTool(t)
	_, err := tool.Transcode(context.Background(), filepath.Join(dir, "ch.wav"), "flac")
	assert.True(t, errs.Is(err, errs.ErrExternalTool))
	assert.Empty(t, r.calls)
}

func TestCheckMissingBinary(t *testing.T) {
	tool := New("definitely-not-a-real-binary-name", "")
	err := tool.Check()
	assert.True(t, errs.Is(err, errs.ErrResourceInit))
}
