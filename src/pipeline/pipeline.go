package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/robert-clayton/audiobook/src/assembler"
	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/fileutil"
	"github.com/robert-clayton/audiobook/src/postprocess"
	"github.com/robert-clayton/audiobook/src/textparser"
	"github.com/robert-clayton/audiobook/src/textparser/parts"
	"github.com/robert-clayton/audiobook/src/tts"
	"github.com/robert-clayton/audiobook/src/voices"
	"github.com/sirupsen/logrus"
)

// Progress is told how many characters of a chapter have been voiced.
type Progress func(chapter string, done, total int)

type Options struct {
	InputDir     string
	OutputDir    string
	TmpDir       string
	Speed        float64
	Codec        string
	MaxChunkSize int
	// StrictChunks fails the chapter when any chunk could not be voiced
	// instead of assembling the survivors.
	StrictChunks bool
}

// Pipeline turns chapter text files into delivered audio, one chapter and
// one chunk at a time.
type Pipeline struct {
	opts      Options
	driver    *tts.Driver
	assembler *assembler.Assembler
	post      *postprocess.PostProcessor
	catalog   *voices.Catalog
	prompter  voices.Prompter
	progress  Progress
}

func New(opts Options, driver *tts.Driver, asm *assembler.Assembler, post *postprocess.PostProcessor, catalog *voices.Catalog, prompter voices.Prompter) *Pipeline {
	if opts.Codec == "" {
		opts.Codec = "mp3"
	}
	return &Pipeline{
		opts:      opts,
		driver:    driver,
		assembler: asm,
		post:      post,
		catalog:   catalog,
		prompter:  prompter,
	}
}

func (p *Pipeline) OnProgress(fn Progress) {
	p.progress = fn
}

// SeriesInputDir is where the chapters of a series are stored.
func SeriesInputDir(inputDir string, series *configure.SeriesConfig) string {
	return filepath.Join(inputDir, series.Name)
}

// Chapters lists the chapter files of series sorted by name, which is
// chronological since names start with the publish date.
func (p *Pipeline) Chapters(series *configure.SeriesConfig) ([]string, error) {
	dir := SeriesInputDir(p.opts.InputDir, series)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.ErrInputMissing, "list", dir, err)
	}

	var chapters []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".txt" || textparser.IsCleaned(name) {
			continue
		}
		chapters = append(chapters, filepath.Join(dir, name))
	}
	sort.Strings(chapters)
	return chapters, nil
}

// ProcessSeries runs every chapter of series in order. A failed chapter
// never stops the rest; an interrupt stops before the next chapter.
func (p *Pipeline) ProcessSeries(ctx context.Context, series *configure.SeriesConfig) ([]Result, error) {
	chapters, err := p.Chapters(series)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(chapters))
	for _, ch := range chapters {
		if err := ctx.Err(); err != nil {
			return results, errs.Wrap(errs.ErrInterrupted, "generate", series.Name, err)
		}
		res := p.ProcessChapter(ctx, series, ch)
		results = append(results, res)
		if errs.Is(res.Err, errs.ErrInterrupted) {
			return results, res.Err
		}
	}
	return results, nil
}

// Existing returns the delivered artifact of a chapter when one is present.
func (p *Pipeline) Existing(series *configure.SeriesConfig, chapter string) (string, bool) {
	base := chapterBase(chapter)
	dir := filepath.Join(p.opts.OutputDir, series.Name)
	for _, ext := range []string{"." + p.opts.Codec, ".mp3", ".wav"} {
		candidate := filepath.Join(dir, base+ext)
		if fileutil.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// ProcessChapter drives one chapter through the pipeline states. The
// normalized intermediate is removed on every exit path.
func (p *Pipeline) ProcessChapter(ctx context.Context, series *configure.SeriesConfig, chapter string) (res Result) {
	base := chapterBase(chapter)
	res = Result{Chapter: base, State: Pending}
	l := logrus.WithFields(logrus.Fields{
		"series":  series.Name,
		"chapter": base,
	})

	if out, ok := p.Existing(series, chapter); ok {
		res.State = SkippedExisting
		res.Output = out
		return res
	}

	fail := func(err error) Result {
		res.Stage = res.State
		res.State = Failed
		res.Err = err
		l.WithField("stage", res.Stage.String()).WithError(err).Error("chapter failed")
		return res
	}
	deliver := func(encoded string) Result {
		final, err := p.deliver(series, encoded)
		if err != nil {
			return fail(err)
		}
		res.State = Done
		res.Output = final
		l.WithFields(logrus.Fields{
			"output":  final,
			"dropped": res.Dropped,
		}).Info("chapter done")
		return res
	}

	// an encoded chapter left in tmp only needs delivering
	encoded := filepath.Join(p.opts.TmpDir, base+"."+p.opts.Codec)
	if fileutil.Exists(encoded) {
		l.Info("resuming from encoded chapter")
		res.State = PostProcessing
		return deliver(encoded)
	}

	// Validating
	res.State = Validating
	if err := os.MkdirAll(p.opts.TmpDir, 0o755); err != nil {
		return fail(errs.Wrap(errs.ErrResourceInit, "validate", "create tmp dir", err))
	}
	cleaned, bad, err := textparser.NormalizeFile(chapter, p.opts.TmpDir, series.Replacements)
	if cleaned != "" {
		defer func() {
			if err := os.Remove(cleaned); err != nil && !os.IsNotExist(err) {
				l.WithError(err).Warn("failed to remove cleaned chapter")
			}
		}()
	}
	if err != nil {
		return fail(err)
	}
	if len(bad) > 0 {
		offsets := make([]int, len(bad))
		for i, b := range bad {
			offsets[i] = b.Offset
		}
		l.WithFields(logrus.Fields{
			"stage":   "validate",
			"offsets": offsets,
		}).Warn(errs.ErrDecode.Error())
	}

	wavPath := filepath.Join(p.opts.TmpDir, base+".wav")
	if !postprocess.Ready(wavPath, p.opts.Speed) {
		// Segmenting
		res.State = Segmenting
		text, err := os.ReadFile(cleaned)
		if err != nil {
			return fail(errs.Wrap(errs.ErrInputMissing, "segment", "read cleaned chapter", err))
		}
		chunks := textparser.Process(string(text), p.opts.MaxChunkSize)
		res.Chunks = len(chunks)
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			l.Debug(spew.Sdump(chunks))
		}

		// Synthesizing
		res.State = Synthesizing
		paths, err := p.synthesize(ctx, l, series, base, chunks, &res)
		if err != nil {
			return fail(err)
		}

		// Assembling
		res.State = Assembling
		if err := p.assembler.Assemble(ctx, paths, wavPath); err != nil {
			return fail(err)
		}
	} else {
		l.Info("resuming from assembled chapter")
	}

	// PostProcessing
	res.State = PostProcessing
	encoded, err = p.post.Process(context.WithoutCancel(ctx), wavPath, p.opts.Speed, p.opts.Codec)
	if err != nil {
		return fail(err)
	}
	return deliver(encoded)
}

// deliver moves the encoded chapter into the series output directory, which
// may sit on another filesystem than tmp.
func (p *Pipeline) deliver(series *configure.SeriesConfig, encoded string) (string, error) {
	final := filepath.Join(p.opts.OutputDir, series.Name, filepath.Base(encoded))
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return "", errs.Wrap(errs.ErrExternalTool, "postprocess", "create output dir", err)
	}
	if err := fileutil.Move(encoded, final); err != nil {
		return "", errs.Wrap(errs.ErrExternalTool, "postprocess", "deliver", err)
	}
	return final, nil
}

func (p *Pipeline) synthesize(ctx context.Context, l *logrus.Entry, series *configure.SeriesConfig, base string, chunks parts.ChunkList, res *Result) ([]string, error) {
	resolver := &voices.Resolver{Catalog: p.catalog, Series: series, Prompter: p.prompter}
	total := chunks.Len()
	done := 0

	var paths []string
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.ErrInterrupted, "synthesize", base, err)
		}

		cl := l.WithFields(logrus.Fields{
			"stage": "synthesize",
			"chunk": c.Key(base, c.Speaker),
		})

		voice, err := resolver.Resolve(ctx, c.Speaker)
		if err != nil {
			if errs.Is(err, errs.ErrInterrupted) {
				return nil, err
			}
			cl.WithError(err).Warn("dropping chunk")
			res.Dropped++
		} else {
			// an in-flight chunk completes even when interrupted
			path, cached, err := p.driver.Synthesize(context.WithoutCancel(ctx), tts.Job{
				Chapter:  base,
				Chunk:    c,
				Voice:    voice,
				Modulate: series.ModulateSystem(),
				Speed:    series.SystemSpeed(),
			})
			switch {
			case err != nil && ctx.Err() != nil:
				return nil, errs.Wrap(errs.ErrInterrupted, "synthesize", base, err)
			case err != nil:
				cl.WithError(err).Warn("dropping chunk")
				res.Dropped++
			case cached:
				res.Cached++
				paths = append(paths, path)
			default:
				paths = append(paths, path)
			}
		}

		done += len(c.Value)
		if p.progress != nil {
			p.progress(base, done, total)
		}
	}

	if p.opts.StrictChunks && res.Dropped > 0 {
		return nil, errs.Wrap(errs.ErrSynthesis, "synthesize", base, nil)
	}
	return paths, nil
}

func chapterBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
