package postprocess

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/fileutil"
	"github.com/robert-clayton/audiobook/src/instances"
	"github.com/robert-clayton/audiobook/src/wavutil"
	"github.com/sirupsen/logrus"
)

type PostProcessor struct {
	audio instances.AudioTool
}

func New(audio instances.AudioTool) *PostProcessor {
	return &PostProcessor{audio: audio}
}

// TempoPath is where the chapter WAV lives once played back at speed.
func TempoPath(wavPath string, speed float64) string {
	return strings.TrimSuffix(wavPath, ".wav") + ".speed" + strconv.FormatFloat(speed, 'f', -1, 64) + ".wav"
}

// Ready reports whether wavPath, or its sped up copy, can be post-processed
// without assembling the chapter again.
func Ready(wavPath string, speed float64) bool {
	if needsTempo(speed) && wavutil.Validate(TempoPath(wavPath, speed)) == nil {
		return true
	}
	return wavutil.Validate(wavPath) == nil
}

// Process applies the playback speed to the chapter WAV, transcodes it and
// removes the WAV. It returns the encoded file, named after wavPath.
func (p *PostProcessor) Process(ctx context.Context, wavPath string, speed float64, codec string) (string, error) {
	src := wavPath
	if needsTempo(speed) {
		var err error
		if src, err = p.tempo(ctx, wavPath, speed); err != nil {
			return "", err
		}
	}

	out, err := p.audio.Transcode(ctx, src, codec)
	if err != nil {
		return "", errs.Wrap(errs.ErrExternalTool, "postprocess", "transcode", err)
	}

	want := strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + filepath.Ext(out)
	if out != want {
		if err := os.Rename(out, want); err != nil {
			return "", errs.Wrap(errs.ErrExternalTool, "postprocess", "rename encoded", err)
		}
		out = want
	}

	for _, wav := range []string{src, wavPath} {
		if wav == out {
			continue
		}
		if err := os.Remove(wav); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", wav).Warn("failed to remove intermediate wav")
		}
	}
	return out, nil
}

// tempo writes the sped up chapter next to wavPath. The assembled WAV is only
// removed once the sped up copy is in place, so the speed is applied once.
func (p *PostProcessor) tempo(ctx context.Context, wavPath string, speed float64) (string, error) {
	dst := TempoPath(wavPath, speed)
	if wavutil.Validate(dst) == nil {
		logrus.WithField("path", dst).Info("resuming from sped up chapter")
		return dst, nil
	}

	staging := fileutil.TempPath(dst)
	if err := fileutil.CopyFile(wavPath, staging); err != nil {
		return "", errs.Wrap(errs.ErrExternalTool, "postprocess", "tempo", err)
	}
	if err := p.audio.ChangeTempo(ctx, staging, speed); err != nil {
		_ = os.Remove(staging)
		return "", errs.Wrap(errs.ErrExternalTool, "postprocess", "tempo", err)
	}
	if err := os.Rename(staging, dst); err != nil {
		_ = os.Remove(staging)
		return "", errs.Wrap(errs.ErrExternalTool, "postprocess", "tempo", err)
	}

	if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", wavPath).Warn("failed to remove intermediate wav")
	}
	return dst, nil
}

func needsTempo(speed float64) bool {
	return speed > 0 && speed != 1.0
}
