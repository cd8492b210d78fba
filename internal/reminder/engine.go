package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/lead-planner/internal/event"
	"github.com/example/lead-planner/internal/kvstore"
	"github.com/example/lead-planner/internal/logging"
	"github.com/example/lead-planner/internal/metrics"
	"github.com/example/lead-planner/internal/notify"
)

const (
	// LedgerStoreKey is the durable-store key for the dedupe ledger.
	LedgerStoreKey = "notifiedEventIds"
	// DigestMarkerStoreKey is the durable-store key for the last digest attempt date.
	DigestMarkerStoreKey = "lastDailySummary"

	// DefaultInterval is how often the engine re-evaluates all events.
	DefaultInterval = time.Minute
)

// EventSource supplies the engine with a fresh snapshot of all events each
// tick. The engine never mutates the snapshot and never assumes identity is
// stable between ticks; events are matched by ID only.
type EventSource interface {
	List(ctx context.Context) ([]event.Event, error)
}

// Config tunes an Engine. Zero values fall back to defaults, except
// DigestHour, where 0 is a valid midnight cutoff; only out-of-range hours
// fall back to DefaultDigestHour.
type Config struct {
	Interval       time.Duration
	DigestHour     int
	LedgerKeyLimit int
	Now            func() time.Time
	Metrics        metrics.Sink
}

// Engine drives the reminder state machine: every tick it projects the next
// occurrence for each event, fires the reminders whose lead window contains
// now, and once per day emits the next-day digest. The dedupe ledger and the
// digest marker are its only persisted state; both are loaded once at
// construction and written through on change.
type Engine struct {
	events     EventSource
	center     *notify.Center
	store      kvstore.Store
	ledger     *Ledger
	lastDigest time.Time

	interval   time.Duration
	digestHour int
	now        func() time.Time
	metrics    metrics.Sink
	logger     *slog.Logger

	// running guards against overlapping evaluation passes; a tick that
	// arrives while the previous one is still in flight is dropped.
	running atomic.Bool

	storeDegraded atomic.Bool
}

// NewEngine loads persisted reminder state from the store and returns a
// ready engine. It does not start ticking; call Run or drive Tick manually.
func NewEngine(ctx context.Context, events EventSource, center *notify.Center, store kvstore.Store, logger *slog.Logger, cfg Config) (*Engine, error) {
	if events == nil {
		return nil, fmt.Errorf("reminder: event source is required")
	}
	if center == nil {
		return nil, fmt.Errorf("reminder: notification center is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.DigestHour < 0 || cfg.DigestHour > 23 {
		cfg.DigestHour = DefaultDigestHour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Noop{}
	}

	seed, err := kvstore.GetJSON(ctx, store, LedgerStoreKey, map[string][]string{})
	if err != nil {
		return nil, fmt.Errorf("reminder: load ledger: %w", err)
	}
	lastDigest, err := kvstore.GetJSON(ctx, store, DigestMarkerStoreKey, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("reminder: load digest marker: %w", err)
	}

	return &Engine{
		events:     events,
		center:     center,
		store:      store,
		ledger:     NewLedger(seed, cfg.LedgerKeyLimit),
		lastDigest: lastDigest,
		interval:   cfg.Interval,
		digestHour: cfg.DigestHour,
		now:        cfg.Now,
		metrics:    cfg.Metrics,
		logger:     logger,
	}, nil
}

// Run evaluates once immediately, then on every interval until ctx is done.
// Stopping waits for an in-flight pass to finish.
func (e *Engine) Run(ctx context.Context) error {
	schedule := cron.New()
	if _, err := schedule.AddFunc(fmt.Sprintf("@every %s", e.interval), func() {
		e.Tick(ctx)
	}); err != nil {
		return fmt.Errorf("reminder: schedule ticks: %w", err)
	}

	e.logger.Info("reminder engine started", "interval", e.interval, "digest_hour", e.digestHour)

	// Immediate pass so reminders due within the first interval are not
	// missed by up to a full period.
	e.Tick(ctx)

	schedule.Start()
	<-ctx.Done()

	stopped := schedule.Stop()
	<-stopped.Done()

	e.logger.Info("reminder engine stopped")
	return ctx.Err()
}

// Tick runs one evaluation pass. It is the failure boundary: per-event
// problems are skipped, store write failures degrade to in-memory operation,
// and nothing propagates to the scheduler.
func (e *Engine) Tick(ctx context.Context) {
	if !e.running.CompareAndSwap(false, true) {
		e.metrics.TickSkipped()
		e.logger.Warn("evaluation pass still running, skipping tick")
		return
	}
	defer e.running.Store(false)

	e.metrics.TickStarted()
	started := time.Now()
	defer func() {
		e.metrics.TickCompleted(time.Since(started))
	}()

	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = e.logger
	}

	now := e.now()

	events, err := e.events.List(ctx)
	if err != nil {
		logger.Error("failed to snapshot events", "error", err)
		return
	}

	e.evaluateReminders(ctx, logger, events, now)
	e.evaluateDigest(ctx, logger, events, now)
}

func (e *Engine) evaluateReminders(ctx context.Context, logger *slog.Logger, events []event.Event, now time.Time) {
	firings, skipped := Evaluate(events, now, e.ledger)
	for i := 0; i < skipped; i++ {
		e.metrics.EventSkipped()
	}

	for _, firing := range firings {
		// Notification first, ledger second, matching the observed
		// behavior: a crash in between can duplicate once on the next
		// tick, which is acceptable for a personal planner.
		e.center.Append(ctx, firing.EventID, firing.Message)
		e.ledger.Record(firing.EventID, firing.Key)
		e.metrics.ReminderFired(string(firing.Recurrence))
		logger.Info("reminder fired",
			"event_id", firing.EventID,
			"reminder_key", firing.Key,
			"occurrence", firing.Occurrence,
		)
	}

	present := make(map[string]struct{}, len(events))
	for _, ev := range events {
		present[ev.ID] = struct{}{}
	}
	pruned := e.ledger.PruneMissing(present)

	if len(firings) > 0 || pruned > 0 {
		e.persist(ctx, logger, LedgerStoreKey, e.ledger.Snapshot())
	}
}

func (e *Engine) evaluateDigest(ctx context.Context, logger *slog.Logger, events []event.Event, now time.Time) {
	digest, marker, acted := EvaluateDigest(events, now, e.lastDigest, e.digestHour)
	if !acted {
		return
	}

	e.lastDigest = marker
	e.persist(ctx, logger, DigestMarkerStoreKey, marker)

	if digest == nil {
		logger.Info("daily digest skipped, no events tomorrow")
		return
	}

	e.center.Append(ctx, "", digest.Message)
	e.metrics.DigestFired(digest.Count)
	logger.Info("daily digest fired", "event_count", digest.Count)
}

// persist writes reminder state through to the durable store. Failures are
// logged once and counted; the engine keeps operating on in-memory state.
func (e *Engine) persist(ctx context.Context, logger *slog.Logger, key string, value any) {
	err := kvstore.SetJSON(ctx, e.store, key, value)
	if err == nil {
		if e.storeDegraded.CompareAndSwap(true, false) {
			logger.Info("reminder state persistence recovered")
		}
		return
	}

	e.metrics.StoreWriteFailed(key)
	if e.storeDegraded.CompareAndSwap(false, true) {
		logger.Error("reminder state persistence failed; continuing in memory", "key", key, "error", err)
	}
}
