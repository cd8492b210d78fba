package ics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/lead-planner/internal/event"
)

type sinkStub struct {
	mu     sync.Mutex
	merged []event.Event
}

func (s *sinkStub) Merge(ctx context.Context, events []event.Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merged = append(s.merged, events...)
	return len(events), nil
}

func (s *sinkStub) all() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Event(nil), s.merged...)
}

func TestImporter_Run(t *testing.T) {
	t.Parallel()

	body := calendarBody(
		"BEGIN:VEVENT",
		"UID:standup@example.com",
		"SUMMARY:Standup",
		"DTSTART:20250616T090000Z",
		"DTEND:20250616T093000Z",
		"END:VEVENT",
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	sink := &sinkStub{}
	now := func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	importer := NewImporter(nil, sink, []Source{{ID: "team", Name: "Team Calendar", URL: server.URL}},
		30*24*time.Hour, now, logger)

	applied, err := importer.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected one applied event, got %d", applied)
	}

	merged := sink.all()
	if len(merged) != 1 || merged[0].Title != "Standup" {
		t.Fatalf("unexpected merged events %+v", merged)
	}
}

func TestImporter_FailingSourceIsSkipped(t *testing.T) {
	t.Parallel()

	good := calendarBody(
		"BEGIN:VEVENT",
		"UID:kept@example.com",
		"SUMMARY:Kept",
		"DTSTART:20250616T090000Z",
		"DTEND:20250616T100000Z",
		"END:VEVENT",
	)
	goodServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(good)
	}))
	defer goodServer.Close()

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer badServer.Close()

	sink := &sinkStub{}
	now := func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	importer := NewImporter(nil, sink, []Source{
		{ID: "bad", URL: badServer.URL},
		{ID: "good", Name: "Good", URL: goodServer.URL},
	}, 30*24*time.Hour, now, logger)

	applied, err := importer.Run(context.Background())
	if err != nil {
		t.Fatalf("a failing source must not abort the run: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected one applied event from the healthy source, got %d", applied)
	}
}

func TestImporter_NoSources(t *testing.T) {
	t.Parallel()

	importer := NewImporter(nil, &sinkStub{}, nil, time.Hour, nil, nil)
	applied, err := importer.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected zero applied events, got %d", applied)
	}
}
