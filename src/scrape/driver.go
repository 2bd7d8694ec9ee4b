package scrape

import (
	"context"
	"fmt"

	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	log "github.com/sirupsen/logrus"
)

// Report summarises one series' scrape pass.
type Report struct {
	Series string
	New    []string
	Latest string
	Err    error
}

// Driver walks a series forward from its latest known chapter, saving every
// chapter it has not seen before.
type Driver struct {
	store   Store
	fetcher Fetcher
	filter  *Filter
}

func NewDriver(store Store, fetcher Fetcher, filter *Filter) *Driver {
	if filter == nil {
		filter = DefaultFilter()
	}
	return &Driver{
		store:   store,
		fetcher: fetcher,
		filter:  filter,
	}
}

// Scrape follows next links from series.Latest. Latest only moves past a
// chapter once that chapter's file is on disk, so an error or interrupt
// leaves it at the last durable chapter.
func (d *Driver) Scrape(ctx context.Context, series *configure.SeriesConfig) (Report, error) {
	rep := Report{Series: series.Name, Latest: series.Latest}
	logger := log.WithField("series", series.Name)

	if series.Latest == "" {
		logger.Warn("no latest chapter configured, skipping scrape")
		return rep, nil
	}

	src, err := SourceFor(series, d.fetcher, d.filter)
	if err != nil {
		return rep, err
	}

	visited := map[string]struct{}{}
	for pageURL := series.Latest; pageURL != ""; {
		if err := ctx.Err(); err != nil {
			return rep, errs.Wrap(errs.ErrInterrupted, "scrape", series.Name, err)
		}
		if _, ok := visited[pageURL]; ok {
			logger.WithField("url", pageURL).Warn("next link loops back, stopping")
			break
		}
		visited[pageURL] = struct{}{}

		ch, err := src.Fetch(ctx, pageURL)
		if err != nil {
			return rep, err
		}

		title := ch.Title
		if title == "" {
			title = slugTitle(pageURL)
		}
		if title == "" {
			return rep, errs.Wrap(errs.ErrDecode, "scrape", "no title at "+pageURL, nil)
		}

		path, created, err := d.store.Save(series.Name, ch.Published, title, ch.Content)
		if err != nil {
			return rep, fmt.Errorf("save %s: %w", path, err)
		}
		if created {
			rep.New = append(rep.New, path)
			logger.WithField("title", title).Info("saved new chapter")
		} else {
			logger.WithField("title", title).Debug("chapter already saved")
		}

		series.Latest = pageURL
		rep.Latest = pageURL
		pageURL = ch.Next
	}

	return rep, nil
}
