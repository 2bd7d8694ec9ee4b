package voices

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog(t *testing.T, ids ...string) *Catalog {
	t.Helper()
	dir := t.TempDir()
	for _, id := range ids {
		require.NoError(t, os.WriteFile(filepath.Join(dir, id+".wav"), []byte("RIFF"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	c, err := Load(dir)
	require.NoError(t, err)
	return c
}

type countingPrompter struct {
	answer string
	calls  int
}

func (p *countingPrompter) Prompt(context.Context, *configure.SeriesConfig, string, *Catalog) (string, error) {
	p.calls++
	return p.answer, nil
}

func TestLoad(t *testing.T) {
	c := catalog(t, "onyx", "fable", "nova")
	assert.Equal(t, []string{"fable", "nova", "onyx"}, c.IDs())
	v, ok := c.Get("onyx")
	require.True(t, ok)
	assert.Equal(t, "onyx.wav", filepath.Base(v.Path))
	assert.False(t, c.Has("notes"))
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "speakers"))
	assert.True(t, errs.Fatal(err))
}

func TestResolveDefaultIgnoresMappings(t *testing.T) {
	series := &configure.SeriesConfig{
		Name:     "s",
		Narrator: "nova",
		Mappings: map[string]string{"default": "fable"},
	}
	r := &Resolver{Catalog: catalog(t, "onyx", "fable", "nova"), Series: series}

	v, err := r.Resolve(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "nova", v.ID)
}

func TestResolve(t *testing.T) {
	series := &configure.SeriesConfig{
		Name:     "s",
		Mappings: map[string]string{"Bob": "fable", "onyx": "nova"},
		System:   configure.SystemConfig{Voice: "nova"},
	}
	r := &Resolver{Catalog: catalog(t, "onyx", "fable", "nova"), Series: series}

	cases := map[string]string{
		"default": "onyx",
		"system":  "nova",
		"onyx":    "onyx",
		"bob":     "fable",
	}
	for speaker, want := range cases {
		v, err := r.Resolve(context.Background(), speaker)
		require.NoError(t, err, speaker)
		assert.Equal(t, want, v.ID, speaker)
	}
}

func TestResolvePromptsOnceAndPersists(t *testing.T) {
	series := &configure.SeriesConfig{Name: "s"}
	p := &countingPrompter{answer: "fable"}
	r := &Resolver{Catalog: catalog(t, "onyx", "fable"), Series: series, Prompter: p}

	for i := 0; i < 3; i++ {
		v, err := r.Resolve(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "fable", v.ID)
	}
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "fable", series.Mappings["alice"])
}

func TestResolveNeverReturnsMissingVoice(t *testing.T) {
	series := &configure.SeriesConfig{
		Name:     "s",
		Mappings: map[string]string{"bob": "ghost"},
	}
	r := &Resolver{Catalog: catalog(t, "onyx"), Series: series, Prompter: &countingPrompter{answer: "ghost"}}

	_, err := r.Resolve(context.Background(), "bob")
	assert.True(t, errs.Is(err, errs.ErrUnmappedSpeaker))

	_, err = r.Resolve(context.Background(), "carol")
	assert.True(t, errs.Is(err, errs.ErrUnmappedSpeaker))
	assert.NotContains(t, series.Mappings, "carol")

	series.Narrator = "missing"
	_, err = r.Resolve(context.Background(), "default")
	assert.True(t, errs.Is(err, errs.ErrUnmappedSpeaker))
}

func TestPolicies(t *testing.T) {
	c := catalog(t, "onyx", "fable")
	series := &configure.SeriesConfig{Name: "s", Narrator: "fable"}

	p, err := NewPrompter(PolicyNarrator, nil, nil)
	require.NoError(t, err)
	id, err := p.Prompt(context.Background(), series, "x", c)
	require.NoError(t, err)
	assert.Equal(t, "fable", id)

	p, err = NewPrompter(PolicyFail, nil, nil)
	require.NoError(t, err)
	_, err = p.Prompt(context.Background(), series, "x", c)
	assert.True(t, errs.Is(err, errs.ErrUnmappedSpeaker))

	_, err = NewPrompter("guess", nil, nil)
	assert.Error(t, err)
}

func TestInteractivePrompter(t *testing.T) {
	c := catalog(t, "fable", "nova", "onyx")
	series := &configure.SeriesConfig{Name: "s"}

	cases := []struct {
		input string
		want  string
	}{
		{"nova\n", "nova"},
		{"2\n", "nova"},
		{"\n", "onyx"},
		{"nobody\n9\nfable\n", "fable"},
		{"onyx", "onyx"},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		p, err := NewPrompter(PolicyPrompt, strings.NewReader(tc.input), &out)
		require.NoError(t, err)
		id, err := p.Prompt(context.Background(), series, "alice", c)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, id, tc.input)
		assert.Contains(t, out.String(), "alice")
	}
}

func TestInteractivePrompterEOF(t *testing.T) {
	c := catalog(t, "onyx")
	p, err := NewPrompter(PolicyPrompt, strings.NewReader("bogus\n"), &bytes.Buffer{})
	require.NoError(t, err)
	_, err = p.Prompt(context.Background(), &configure.SeriesConfig{Name: "s"}, "alice", c)
	assert.True(t, errs.Is(err, errs.ErrUnmappedSpeaker))
}
