package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "kv.db")
	store, err := OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close sqlite store: %v", err)
		}
	})
	return store
}

func TestSQLite_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestSQLite(t)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "notifications", []byte(`[]`)); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	got, err := store.Get(ctx, "notifications")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if string(got) != `[]` {
		t.Fatalf("expected %q, got %q", `[]`, got)
	}

	if err := store.Set(ctx, "notifications", []byte(`[{"id":"n1"}]`)); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}
	got, err = store.Get(ctx, "notifications")
	if err != nil {
		t.Fatalf("failed to get after overwrite: %v", err)
	}
	if string(got) != `[{"id":"n1"}]` {
		t.Fatalf("expected the upsert to replace the value, got %q", got)
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "kv.db")

	store, err := OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	if err := store.Set(ctx, "lastDailySummary", []byte(`"2025-06-13T21:30:00Z"`)); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened, err := OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("failed to reopen sqlite store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "lastDailySummary")
	if err != nil {
		t.Fatalf("failed to get after reopen: %v", err)
	}
	if string(got) != `"2025-06-13T21:30:00Z"` {
		t.Fatalf("value did not survive reopen: %q", got)
	}
}
