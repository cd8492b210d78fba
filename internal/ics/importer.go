package ics

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/lead-planner/internal/event"
)

// EventSink receives expanded events; *event.Book satisfies it.
type EventSink interface {
	Merge(ctx context.Context, events []event.Event) (int, error)
}

// Importer pulls subscribed ICS feeds and merges their occurrences into the
// event book. A failing feed is logged and skipped; the remaining feeds are
// still imported.
type Importer struct {
	fetcher *Fetcher
	sink    EventSink
	sources []Source
	horizon time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewImporter wires an importer over the given sources. horizon bounds how
// far into the future recurrences are expanded.
func NewImporter(fetcher *Fetcher, sink EventSink, sources []Source, horizon time.Duration, now func() time.Time, logger *slog.Logger) *Importer {
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		fetcher: fetcher,
		sink:    sink,
		sources: sources,
		horizon: horizon,
		now:     now,
		logger:  logger,
	}
}

// Run imports every configured source once and returns the total number of
// events applied to the sink.
func (im *Importer) Run(ctx context.Context) (int, error) {
	if len(im.sources) == 0 {
		return 0, nil
	}

	now := im.now()
	window := Window{Start: now.AddDate(0, 0, -1), End: now.Add(im.horizon)}

	total := 0
	for _, src := range im.sources {
		applied, err := im.importSource(ctx, src, window)
		if err != nil {
			im.logger.Error("ics import failed", "source", src.ID, "error", err)
			continue
		}
		total += applied
	}

	im.logger.Info("ics import completed", "sources", len(im.sources), "events", total)
	return total, nil
}

func (im *Importer) importSource(ctx context.Context, src Source, window Window) (int, error) {
	body, err := im.fetcher.Fetch(ctx, src)
	if err != nil {
		return 0, err
	}

	parsed, skipped, err := Parse(src, body)
	if err != nil {
		return 0, err
	}
	for _, perr := range skipped {
		im.logger.Warn("skipping unparseable vevent", "source", src.ID, "error", perr)
	}
	if len(parsed) == 0 {
		return 0, nil
	}

	expanded, err := Expand(parsed, window)
	if err != nil {
		return 0, err
	}

	return im.sink.Merge(ctx, expanded)
}
