package voices

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/textparser/parts"
	"github.com/sirupsen/logrus"
)

// Voice is a reference sample the synthesizer clones.
type Voice struct {
	ID   string
	Path string
}

// Catalog is the set of voice samples found in the voices directory.
type Catalog struct {
	dir    string
	voices map[string]Voice
	ids    []string
}

// Load lists the *.wav samples in dir. A missing directory is fatal for the
// whole run since no chunk could be synthesized.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrResourceInit, "voices", "read voices dir", err)
	}

	c := &Catalog{dir: dir, voices: map[string]Voice{}}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		c.voices[id] = Voice{ID: id, Path: filepath.Join(dir, e.Name())}
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)

	logrus.WithField("dir", dir).Debugf("loaded %d voices", len(c.ids))
	return c, nil
}

func (c *Catalog) Get(id string) (Voice, bool) {
	v, ok := c.voices[id]
	return v, ok
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.voices[id]
	return ok
}

// IDs returns the voice ids in sorted order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Prompter settles a speaker that is neither a voice nor mapped.
type Prompter interface {
	Prompt(ctx context.Context, series *configure.SeriesConfig, speaker string, catalog *Catalog) (string, error)
}

// Resolver maps segment speakers of one series onto voice samples.
type Resolver struct {
	Catalog  *Catalog
	Series   *configure.SeriesConfig
	Prompter Prompter
}

// Resolve returns the voice for speaker. Newly settled speakers are recorded
// in the series mappings so later chapters and runs reuse the answer.
func (r *Resolver) Resolve(ctx context.Context, speaker string) (Voice, error) {
	id, err := r.resolveID(ctx, speaker)
	if err != nil {
		return Voice{}, err
	}
	v, ok := r.Catalog.Get(id)
	if !ok {
		return Voice{}, errs.Wrap(errs.ErrUnmappedSpeaker, "resolve", speaker, fmt.Errorf("voice %q not found in %s", id, r.Catalog.dir))
	}
	return v, nil
}

func (r *Resolver) resolveID(ctx context.Context, speaker string) (string, error) {
	switch speaker {
	case parts.SpeakerDefault, "":
		return r.Series.NarratorVoice(), nil
	case parts.SpeakerSystem:
		return r.Series.SystemVoice(), nil
	}

	if r.Catalog.Has(speaker) {
		return speaker, nil
	}
	if id, ok := r.mapping(speaker); ok {
		return id, nil
	}

	if r.Prompter == nil {
		return "", errs.Wrap(errs.ErrUnmappedSpeaker, "resolve", speaker, nil)
	}
	id, err := r.Prompter.Prompt(ctx, r.Series, speaker, r.Catalog)
	if err != nil {
		return "", err
	}
	if !r.Catalog.Has(id) {
		return "", errs.Wrap(errs.ErrUnmappedSpeaker, "resolve", speaker, fmt.Errorf("voice %q not found", id))
	}

	r.Series.SetMapping(speaker, id)
	logrus.WithFields(logrus.Fields{
		"series":  r.Series.Name,
		"speaker": speaker,
		"voice":   id,
	}).Info("mapped speaker")
	return id, nil
}

// mapping looks speaker up in the series mappings. Speakers arrive
// lowercased while hand-written mappings often are not.
func (r *Resolver) mapping(speaker string) (string, bool) {
	if id, ok := r.Series.Mappings[speaker]; ok {
		return id, true
	}
	keys := make([]string, 0, len(r.Series.Mappings))
	for k := range r.Series.Mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, speaker) {
			return r.Series.Mappings[k], true
		}
	}
	return "", false
}
