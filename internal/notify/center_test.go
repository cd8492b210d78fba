package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/lead-planner/internal/kvstore"
	"github.com/example/lead-planner/internal/testfixtures"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCenter(t *testing.T, store kvstore.Store, opts ...Option) *Center {
	t.Helper()

	center, err := NewCenter(context.Background(), store, discardLogger(), opts...)
	if err != nil {
		t.Fatalf("failed to construct center: %v", err)
	}
	return center
}

func TestCenter_AppendOrdersMostRecentFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("notif")
	center := newTestCenter(t, kvstore.NewMemory(),
		WithNow(clock.NowFunc()), WithIDGenerator(ids.NextFunc()))

	center.Append(ctx, "evt-1", "first")
	clock.Advance(time.Minute)
	center.Append(ctx, "evt-2", "second")

	got := center.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Message != "second" || got[1].Message != "first" {
		t.Fatalf("expected most recent first, got %q then %q", got[0].Message, got[1].Message)
	}
	if got[0].ID != "notif-2" || got[1].ID != "notif-1" {
		t.Fatalf("unexpected ids %q, %q", got[0].ID, got[1].ID)
	}
	if got[0].Read || got[1].Read {
		t.Fatal("new notifications must be unread")
	}
}

func TestCenter_RetentionCap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	center := newTestCenter(t, kvstore.NewMemory(), WithLimit(3))

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		center.Append(ctx, "", msg)
	}

	got := center.List()
	if len(got) != 3 {
		t.Fatalf("expected the cap to hold 3 notifications, got %d", len(got))
	}
	if got[0].Message != "e" || got[2].Message != "c" {
		t.Fatalf("expected the newest entries to survive, got %q .. %q", got[0].Message, got[2].Message)
	}
}

func TestCenter_MarkAsRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ids := testfixtures.NewIDGenerator("notif")
	center := newTestCenter(t, kvstore.NewMemory(), WithIDGenerator(ids.NextFunc()))

	center.Append(ctx, "evt-1", "unread one")
	center.Append(ctx, "evt-2", "unread two")

	if got := center.UnreadCount(); got != 2 {
		t.Fatalf("expected 2 unread, got %d", got)
	}

	if !center.MarkAsRead(ctx, "notif-1") {
		t.Fatal("expected MarkAsRead to find the notification")
	}
	if got := center.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread after marking, got %d", got)
	}

	// Idempotent: a second call neither errors nor changes state.
	if !center.MarkAsRead(ctx, "notif-1") {
		t.Fatal("marking an already-read notification must still report found")
	}
	if got := center.UnreadCount(); got != 1 {
		t.Fatalf("expected unread count unchanged, got %d", got)
	}

	if center.MarkAsRead(ctx, "no-such-id") {
		t.Fatal("unknown ids must report not found")
	}
}

func TestCenter_MarkAllAsRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	center := newTestCenter(t, kvstore.NewMemory())

	center.Append(ctx, "", "one")
	center.Append(ctx, "", "two")
	center.MarkAllAsRead(ctx)

	if got := center.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}

	// Safe on an already-read list.
	center.MarkAllAsRead(ctx)
	if got := center.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread after repeat, got %d", got)
	}
}

func TestCenter_PersistsAcrossRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemory()
	ids := testfixtures.NewIDGenerator("notif")

	center := newTestCenter(t, store, WithIDGenerator(ids.NextFunc()))
	center.Append(ctx, "evt-1", "survives restart")
	center.MarkAsRead(ctx, "notif-1")

	reloaded := newTestCenter(t, store)
	got := reloaded.List()
	if len(got) != 1 {
		t.Fatalf("expected 1 notification after reload, got %d", len(got))
	}
	if got[0].Message != "survives restart" || !got[0].Read {
		t.Fatalf("reloaded notification lost state: %+v", got[0])
	}
}

func TestCenter_TruncatesOversizedPersistedList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemory()
	persisted := []Notification{
		{ID: "n1", Message: "newest"},
		{ID: "n2", Message: "middle"},
		{ID: "n3", Message: "oldest"},
	}
	if err := kvstore.SetJSON(ctx, store, StoreKey, persisted); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	center := newTestCenter(t, store, WithLimit(2))
	got := center.List()
	if len(got) != 2 {
		t.Fatalf("expected the persisted list truncated to 2, got %d", len(got))
	}
	if got[0].ID != "n1" || got[1].ID != "n2" {
		t.Fatalf("expected the newest persisted entries, got %q, %q", got[0].ID, got[1].ID)
	}
}
