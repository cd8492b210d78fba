package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/lead-planner/internal/kvstore"
)

// StoreKey is the durable-store key the notification list is persisted under.
const StoreKey = "notifications"

// DefaultLimit caps the persisted notification list. The host UI only ever
// shows recent entries; older ones are dropped on append.
const DefaultLimit = 200

// Notification is a single feed entry shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Center owns the ordered notification list, most recent first. It is the
// only component allowed to mutate the list; the reminder engine appends,
// the host marks entries read. Every mutation is written through to the
// durable store, and store failures degrade to in-memory operation.
type Center struct {
	mu     sync.RWMutex
	items  []Notification
	store  kvstore.Store
	limit  int
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	// degraded is set after the first failed write so the log is not
	// flooded with one error per mutation.
	degraded bool
}

// Option customises a Center.
type Option func(*Center)

// WithLimit overrides the retention cap.
func WithLimit(limit int) Option {
	return func(c *Center) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithNow injects the time source.
func WithNow(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator injects the notification id source.
func WithIDGenerator(newID func() string) Option {
	return func(c *Center) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// NewCenter loads previously persisted notifications and returns a ready Center.
func NewCenter(ctx context.Context, store kvstore.Store, logger *slog.Logger, opts ...Option) (*Center, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Center{
		store:  store,
		limit:  DefaultLimit,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	persisted, err := kvstore.GetJSON(ctx, store, StoreKey, []Notification{})
	if err != nil {
		return nil, fmt.Errorf("notify: load notifications: %w", err)
	}
	if len(persisted) > c.limit {
		persisted = persisted[:c.limit]
	}
	c.items = persisted

	return c, nil
}

// Append creates a notification from the draft fields and prepends it to the
// list. The new entry is unread and carries a fresh id and timestamp.
func (c *Center) Append(ctx context.Context, eventID, message string) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := Notification{
		ID:        c.newID(),
		EventID:   eventID,
		Message:   message,
		Timestamp: c.now(),
		Read:      false,
	}

	c.items = append([]Notification{n}, c.items...)
	if len(c.items) > c.limit {
		c.items = c.items[:c.limit]
	}

	c.persistLocked(ctx)
	return n
}

// MarkAsRead marks a single notification read. Absent ids are a no-op; the
// call is idempotent.
func (c *Center) MarkAsRead(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		if !c.items[i].Read {
			c.items[i].Read = true
			c.persistLocked(ctx)
		}
		return true
	}
	return false
}

// MarkAllAsRead marks every notification read.
func (c *Center) MarkAllAsRead(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	for i := range c.items {
		if !c.items[i].Read {
			c.items[i].Read = true
			changed = true
		}
	}
	if changed {
		c.persistLocked(ctx)
	}
}

// List returns a copy of the notification list, most recent first.
func (c *Center) List() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// UnreadCount reports how many notifications are unread.
func (c *Center) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, n := range c.items {
		if !n.Read {
			count++
		}
	}
	return count
}

func (c *Center) persistLocked(ctx context.Context) {
	err := kvstore.SetJSON(ctx, c.store, StoreKey, c.items)
	if err == nil {
		if c.degraded {
			c.degraded = false
			c.logger.Info("notification persistence recovered")
		}
		return
	}
	if !c.degraded {
		c.degraded = true
		c.logger.Error("notification persistence failed; continuing in memory", "error", err)
	}
}
