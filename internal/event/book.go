package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/example/lead-planner/internal/kvstore"
)

// StoreKey is the durable-store key the whole event collection is persisted under.
const StoreKey = "events"

// ErrNotFound is returned when the requested event does not exist.
var ErrNotFound = errors.New("event: not found")

// Book owns the event collection on behalf of the host. The collection is
// persisted as a single JSON blob, last-write-wins, and handed to the
// reminder engine as a fresh snapshot on every tick.
type Book struct {
	mu     sync.RWMutex
	events map[string]Event
	store  kvstore.Store
	logger *slog.Logger
}

// NewBook loads any previously persisted events from the store.
func NewBook(ctx context.Context, store kvstore.Store, logger *slog.Logger) (*Book, error) {
	if logger == nil {
		logger = slog.Default()
	}

	persisted, err := kvstore.GetJSON(ctx, store, StoreKey, []Event{})
	if err != nil {
		return nil, fmt.Errorf("event: load book: %w", err)
	}

	events := make(map[string]Event, len(persisted))
	for _, ev := range persisted {
		if ev.ID == "" {
			continue
		}
		events[ev.ID] = ev
	}

	return &Book{events: events, store: store, logger: logger}, nil
}

// List returns a snapshot of all events ordered by start time, then ID.
func (b *Book) List(ctx context.Context) ([]Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked(), nil
}

// Get returns the event with the given id.
func (b *Book) Get(ctx context.Context, id string) (Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ev, ok := b.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return ev, nil
}

// Put validates and stores an event, inserting or replacing by ID.
func (b *Book) Put(ctx context.Context, ev Event) error {
	if vErr := ev.Validate(); vErr != nil {
		return vErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[ev.ID] = ev
	return b.persistLocked(ctx)
}

// Delete removes the event with the given id.
func (b *Book) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.events[id]; !ok {
		return ErrNotFound
	}
	delete(b.events, id)
	return b.persistLocked(ctx)
}

// Replace swaps the whole collection, e.g. after an external import. Events
// failing validation are skipped, not fatal.
func (b *Book) Replace(ctx context.Context, events []Event) error {
	next := make(map[string]Event, len(events))
	for _, ev := range events {
		if vErr := ev.Validate(); vErr != nil {
			b.logger.Warn("skipping invalid event on replace", "event_id", ev.ID, "errors", vErr.FieldErrors)
			continue
		}
		next[ev.ID] = ev
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = next
	return b.persistLocked(ctx)
}

// Merge upserts the given events into the collection, leaving unrelated
// entries untouched. Returns the number of events applied.
func (b *Book) Merge(ctx context.Context, events []Event) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	applied := 0
	for _, ev := range events {
		if vErr := ev.Validate(); vErr != nil {
			b.logger.Warn("skipping invalid event on merge", "event_id", ev.ID, "errors", vErr.FieldErrors)
			continue
		}
		b.events[ev.ID] = ev
		applied++
	}

	if applied == 0 {
		return 0, nil
	}
	return applied, b.persistLocked(ctx)
}

func (b *Book) snapshotLocked() []Event {
	out := make([]Event, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func (b *Book) persistLocked(ctx context.Context) error {
	if err := kvstore.SetJSON(ctx, b.store, StoreKey, b.snapshotLocked()); err != nil {
		return fmt.Errorf("event: persist book: %w", err)
	}
	return nil
}
