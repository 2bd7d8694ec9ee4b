package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run scrapes every enabled series with at most workers in flight. Each task
// only touches its own series entry and report slot. Rate limits, interrupts
// and unsupported sources end that series' pass without failing the run;
// anything else is collected into the returned error.
func Run(ctx context.Context, d *Driver, series []configure.SeriesConfig, workers int) ([]Report, error) {
	if workers < 1 {
		workers = 1
	}
	reports := make([]Report, len(series))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range series {
		if !series[i].IsEnabled() {
			reports[i] = Report{Series: series[i].Name, Latest: series[i].Latest}
			continue
		}
		i := i
		g.Go(func() error {
			rep, err := d.Scrape(ctx, &series[i])
			rep.Err = err
			reports[i] = rep
			return nil
		})
	}
	_ = g.Wait()

	var result error
	for _, rep := range reports {
		if rep.Err == nil {
			continue
		}
		logger := log.WithField("series", rep.Series).WithError(rep.Err)
		switch {
		case errs.Is(rep.Err, errs.ErrRateLimited):
			logger.Warn("rate limited, skipping series for this run")
		case errs.Is(rep.Err, errs.ErrInterrupted), errors.Is(rep.Err, context.Canceled):
			logger.Info("scrape interrupted")
		case errors.Is(rep.Err, ErrUnsupportedSource):
			logger.Warn("no scraper for this source, skipping series")
		default:
			logger.Error("scrape failed")
			result = multierror.Append(result, fmt.Errorf("%s: %w", rep.Series, rep.Err))
		}
	}
	return reports, result
}

// NewChapters counts the chapter files written across reports.
func NewChapters(reports []Report) int {
	n := 0
	for _, rep := range reports {
		n += len(rep.New)
	}
	return n
}
