package tts

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/ffmpeg"
	"github.com/robert-clayton/audiobook/src/fileutil"
	"github.com/robert-clayton/audiobook/src/instances"
	"github.com/robert-clayton/audiobook/src/textparser/parts"
	"github.com/robert-clayton/audiobook/src/voices"
	"github.com/robert-clayton/audiobook/src/wavutil"
	"github.com/sirupsen/logrus"
)

// Job is one chunk of a chapter ready to be spoken.
type Job struct {
	Chapter string // chapter base name
	Chunk   parts.Chunk
	Voice   voices.Voice

	// system voice effects, only honoured for system chunks
	Modulate bool
	Speed    float64
}

// Driver synthesizes chunks into the scratch directory, at most once per
// chunk key. The synthesizer is a single exclusive resource so calls into it
// are serialized.
type Driver struct {
	synth    instances.Synthesizer
	audio    instances.AudioTool
	tmpDir   string
	language string

	mtx sync.Mutex
}

func NewDriver(synth instances.Synthesizer, audio instances.AudioTool, tmpDir, language string) *Driver {
	return &Driver{
		synth:    synth,
		audio:    audio,
		tmpDir:   tmpDir,
		language: language,
	}
}

// Path is where the artifact of job lives once synthesized.
func (d *Driver) Path(job Job) string {
	return filepath.Join(d.tmpDir, job.Chunk.Key(job.Chapter, job.Voice.ID)+".wav")
}

// Synthesize returns the chunk artifact for job, reusing a valid cached one.
// The artifact only appears at its final path once every effect has been
// applied, so an interrupted run never leaves a half processed chunk behind.
func (d *Driver) Synthesize(ctx context.Context, job Job) (string, bool, error) {
	path := d.Path(job)
	l := logrus.WithFields(logrus.Fields{
		"chapter": job.Chapter,
		"chunk":   filepath.Base(path),
		"stage":   "synthesize",
	})

	if fileutil.Exists(path) {
		err := wavutil.Validate(path)
		if err == nil {
			return path, true, nil
		}
		l.WithError(err).Warn("cached chunk is invalid, synthesizing again")
		_ = os.Remove(path)
	}

	if err := os.MkdirAll(d.tmpDir, 0o755); err != nil {
		return "", false, errs.Wrap(errs.ErrSynthesis, "synthesize", "create tmp dir", err)
	}

	d.mtx.Lock()
	data, err := d.synth.Synthesize(ctx, job.Chunk.Value, job.Voice.Path, d.language)
	d.mtx.Unlock()
	if err != nil {
		return "", false, errs.Wrap(errs.ErrSynthesis, "synthesize", job.Voice.ID, err)
	}
	if err := wavutil.ValidateBytes(data); err != nil {
		return "", false, errs.Wrap(errs.ErrSynthesis, "synthesize", "validate output", err)
	}

	staging := fileutil.TempPath(path)
	if err := os.WriteFile(staging, data, 0o644); err != nil {
		_ = os.Remove(staging)
		return "", false, errs.Wrap(errs.ErrSynthesis, "synthesize", "write chunk", err)
	}

	if job.Chunk.Speaker == parts.SpeakerSystem {
		d.systemEffects(ctx, l, staging, job)
	}

	if err := os.Rename(staging, path); err != nil {
		_ = os.Remove(staging)
		return "", false, errs.Wrap(errs.ErrSynthesis, "synthesize", "publish chunk", err)
	}

	l.Debug("synthesized chunk")
	return path, false, nil
}

// systemEffects modulates a system chunk. A failed effect leaves the chunk
// as it was, so the line is still spoken.
func (d *Driver) systemEffects(ctx context.Context, l *logrus.Entry, path string, job Job) {
	if job.Modulate {
		if err := d.audio.ApplyEffect(ctx, path, ffmpeg.SystemFilter); err != nil {
			l.WithError(err).Warn("system modulation failed, keeping plain chunk")
		}
	}
	if job.Speed > 0 && job.Speed != 1.0 {
		if err := d.audio.ChangeTempo(ctx, path, job.Speed); err != nil {
			l.WithError(err).Warn("system speed failed, keeping plain chunk")
		}
	}
}
