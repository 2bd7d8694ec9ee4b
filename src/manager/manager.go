package manager

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/global"
	"github.com/robert-clayton/audiobook/src/pipeline"
	"github.com/robert-clayton/audiobook/src/postprocess"
	"github.com/robert-clayton/audiobook/src/scrape"
	"github.com/robert-clayton/audiobook/src/tts"
	"github.com/robert-clayton/audiobook/src/voices"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Scrape   bool
	Generate bool
	// Speed overrides the configured playback speed when set.
	Speed    float64
	Progress pipeline.Progress
	// Prompter overrides the configured unmapped speaker policy.
	Prompter voices.Prompter
}

// Summary counts what one run did.
type Summary struct {
	NewChapters int
	Generated   int
	Skipped     int
	Failed      int
}

// Run does one pass over the configured series: scrape new chapters, then
// voice every chapter without audio. The config, with advanced latest
// pointers and learned voice mappings, is saved on every exit path.
func Run(ctx global.Context, opts Options) (sum Summary, err error) {
	cfg := ctx.Config()

	unlock, err := configure.Lock(cfg.Path)
	if err != nil {
		return sum, errs.Wrap(errs.ErrResourceInit, "config", "lock", err)
	}
	defer func() {
		if serr := configure.Save(cfg); serr != nil {
			logrus.WithError(serr).Error("failed to save config")
			err = multierror.Append(err, serr)
		}
		if uerr := unlock(); uerr != nil {
			logrus.WithError(uerr).Warn("failed to release config lock")
		}
	}()

	var result error

	if opts.Scrape {
		n, err := scrapeSeries(ctx)
		sum.NewChapters = n
		if err != nil {
			result = multierror.Append(result, err)
		}
		if ctx.Err() != nil {
			return sum, errs.Wrap(errs.ErrInterrupted, "scrape", "", ctx.Err())
		}
		if n == 0 {
			logrus.Info("no new chapters")
		} else {
			logrus.WithField("chapters", n).Info("scraped new chapters")
		}
	}

	if opts.Generate {
		if err := generate(ctx, opts, &sum); err != nil {
			if errs.Fatal(err) || errs.Is(err, errs.ErrInterrupted) {
				return sum, err
			}
			result = multierror.Append(result, err)
		}
		if sum.Generated == 0 {
			logrus.Info("no new audio")
		} else {
			logrus.WithFields(logrus.Fields{
				"generated": sum.Generated,
				"failed":    sum.Failed,
			}).Info("generated audio")
		}
	}

	return sum, result
}

func scrapeSeries(ctx global.Context) (int, error) {
	s := ctx.Config().Settings
	driver := scrape.NewDriver(
		scrape.Store{InputDir: s.InputDir},
		scrape.NewHTTPFetcher(s.Scrape),
		scrape.DefaultFilter(),
	)
	reports, err := scrape.Run(ctx, driver, ctx.Config().Series, s.ScrapeWorkers)
	return scrape.NewChapters(reports), err
}

func generate(ctx global.Context, opts Options, sum *Summary) error {
	cfg := ctx.Config()
	s := cfg.Settings

	if err := Setup(ctx); err != nil {
		return err
	}
	catalog, err := voices.Load(s.VoicesDir)
	if err != nil {
		return err
	}
	prompter, err := newPrompter(ctx, opts.Prompter)
	if err != nil {
		return err
	}
	asm, err := newAssembler(ctx)
	if err != nil {
		return err
	}

	speed := s.Speed
	if opts.Speed > 0 {
		speed = opts.Speed
	}

	inst := ctx.Inst()
	p := pipeline.New(pipeline.Options{
		InputDir:     s.InputDir,
		OutputDir:    s.OutputDir,
		TmpDir:       s.TmpDir,
		Speed:        speed,
		Codec:        s.Codec,
		MaxChunkSize: s.MaxChunkSize,
	}, tts.NewDriver(inst.Synthesizer, inst.Audio, s.TmpDir, s.Language), asm, postprocess.New(inst.Audio), catalog, prompter)
	if opts.Progress != nil {
		p.OnProgress(opts.Progress)
	}

	var result error
	for _, i := range cfg.Enabled() {
		series := &cfg.Series[i]
		results, err := p.ProcessSeries(ctx, series)
		for _, r := range results {
			switch r.State {
			case pipeline.Done:
				sum.Generated++
			case pipeline.SkippedExisting:
				sum.Skipped++
			case pipeline.Failed:
				sum.Failed++
			}
		}
		if err != nil {
			if errs.Is(err, errs.ErrInterrupted) {
				return err
			}
			result = multierror.Append(result, fmt.Errorf("%s: %w", series.Name, err))
		}
	}
	return result
}
