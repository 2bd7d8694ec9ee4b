package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/fileutil"
	"github.com/sirupsen/logrus"
)

// SystemFilter is the modulation applied to system voice chunks.
const SystemFilter = "flanger=delay=20:depth=5,chorus=0.5:0.9:50:0.7:0.5:2"

// CommandRunner executes one external command. The last argument ffmpeg is
// given is always the file it must write.
type CommandRunner func(ctx context.Context, name string, args ...string) error

type codec struct {
	ext  string
	args []string
}

var codecs = map[string]codec{
	"mp3":  {ext: ".mp3", args: []string{"-codec:a", "libmp3lame", "-qscale:a", "2"}},
	"opus": {ext: ".opus", args: []string{"-codec:a", "libopus", "-b:a", "64k"}},
	"m4a":  {ext: ".m4a", args: []string{"-codec:a", "aac", "-b:a", "128k"}},
}

// Tool drives the ffmpeg binary. Every operation writes to a temp sibling of
// its output and renames it into place only once ffmpeg exits cleanly.
type Tool struct {
	bin    string
	tmpDir string
	run    CommandRunner
}

func New(bin, tmpDir string) *Tool {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Tool{
		bin:    bin,
		tmpDir: tmpDir,
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (t *Tool) WithCommandRunner(r CommandRunner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// Check resolves the binary on PATH.
func (t *Tool) Check() error {
	if _, err := exec.LookPath(t.bin); err != nil {
		return errs.Wrap(errs.ErrResourceInit, "ffmpeg", "lookup binary", err)
	}
	return nil
}

// Codecs lists the supported transcode targets.
func Codecs() []string {
	return []string{"mp3", "opus", "m4a"}
}

// Concat joins inputs in order with the concat demuxer, copying streams.
func (t *Tool) Concat(ctx context.Context, inputs []string, out string) error {
	if len(inputs) == 0 {
		return errs.Wrap(errs.ErrExternalTool, "ffmpeg", "concat", fmt.Errorf("no inputs"))
	}

	dir := t.tmpDir
	if dir == "" {
		dir = filepath.Dir(out)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrExternalTool, "ffmpeg", "concat", err)
	}

	list, err := writeConcatList(dir, inputs)
	if err != nil {
		return errs.Wrap(errs.ErrExternalTool, "ffmpeg", "write concat list", err)
	}
	defer os.Remove(list)

	return t.produce(ctx, "concat", out,
		"-f", "concat", "-safe", "0", "-i", list, "-c", "copy",
	)
}

// ChangeTempo rewrites path at the given playback speed.
func (t *Tool) ChangeTempo(ctx context.Context, path string, factor float64) error {
	if factor <= 0 {
		return errs.Wrap(errs.ErrExternalTool, "ffmpeg", "tempo", fmt.Errorf("invalid factor %v", factor))
	}
	return t.produce(ctx, "tempo", path, "-i", path, "-filter:a", AtempoChain(factor))
}

// ApplyEffect rewrites path through an audio filter graph.
func (t *Tool) ApplyEffect(ctx context.Context, path string, filter string) error {
	return t.produce(ctx, "effect", path, "-i", path, "-af", filter)
}

// Transcode encodes path into codec next to it and returns the new path.
// The source is left in place.
func (t *Tool) Transcode(ctx context.Context, path string, name string) (string, error) {
	c, ok := codecs[strings.ToLower(name)]
	if !ok {
		return "", errs.Wrap(errs.ErrExternalTool, "ffmpeg", "transcode", fmt.Errorf("unsupported codec %q", name))
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + c.ext
	args := append([]string{"-i", path}, c.args...)
	if err := t.produce(ctx, "transcode", out, args...); err != nil {
		return "", err
	}
	return out, nil
}

// AtempoChain builds an atempo filter for factor. A single atempo only
// accepts 0.5 to 2.0, so larger changes are split into several stages.
func AtempoChain(factor float64) string {
	var stages []string
	for factor > 2.0 {
		stages = append(stages, "atempo=2")
		factor /= 2.0
	}
	for factor < 0.5 {
		stages = append(stages, "atempo=0.5")
		factor /= 0.5
	}
	stages = append(stages, "atempo="+strconv.FormatFloat(factor, 'f', -1, 64))
	return strings.Join(stages, ",")
}

func (t *Tool) produce(ctx context.Context, op, out string, args ...string) error {
	tmp := fileutil.TempPath(out)
	full := append([]string{"-hide_banner", "-loglevel", "error", "-y"}, args...)
	full = append(full, tmp)

	logrus.WithFields(logrus.Fields{
		"op":   op,
		"out":  out,
		"args": strings.Join(full, " "),
	}).Debug("executing ffmpeg")

	if err := t.run(ctx, t.bin, full...); err != nil {
		_ = os.Remove(tmp)
		return errs.Wrap(errs.ErrExternalTool, "ffmpeg", op, err)
	}
	if _, err := os.Stat(tmp); err != nil {
		return errs.Wrap(errs.ErrExternalTool, "ffmpeg", op, fmt.Errorf("no output produced: %w", err))
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		return errs.Wrap(errs.ErrExternalTool, "ffmpeg", op, err)
	}
	return nil
}

func writeConcatList(dir string, inputs []string) (string, error) {
	var sb strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return "", err
		}
		sb.WriteString("file '")
		sb.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		sb.WriteString("'\n")
	}

	list := fileutil.TempPath(filepath.Join(dir, "concat.txt"))
	if err := os.WriteFile(list, []byte(sb.String()), 0o644); err != nil {
		return "", err
	}
	return list, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
