package ics

import (
	"strings"
	"testing"
	"time"
)

func calendarBody(vevents ...string) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//planner tests//EN",
	}
	lines = append(lines, vevents...)
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParse_SingleEvent(t *testing.T) {
	t.Parallel()

	src := Source{ID: "team", Name: "Team Calendar"}
	body := calendarBody(
		"BEGIN:VEVENT",
		"UID:standup@example.com",
		"SUMMARY:Standup",
		"LOCATION:Room 4",
		"DTSTART:20250616T090000Z",
		"DTEND:20250616T093000Z",
		"END:VEVENT",
	)

	events, skipped, err := Parse(src, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped vevents, got %v", skipped)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}

	ev := events[0]
	if ev.UID != "standup@example.com" {
		t.Errorf("unexpected uid %q", ev.UID)
	}
	if ev.Summary != "Standup" || ev.Location != "Room 4" {
		t.Errorf("unexpected summary/location %q/%q", ev.Summary, ev.Location)
	}
	wantStart := time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC)
	if !ev.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, ev.Start)
	}
	if !ev.End.Equal(wantStart.Add(30 * time.Minute)) {
		t.Errorf("unexpected end %v", ev.End)
	}
	if ev.AllDay {
		t.Error("timed event must not be all-day")
	}
	if ev.RawRRule != "" {
		t.Errorf("unexpected rrule %q", ev.RawRRule)
	}
}

func TestParse_CarriesRawRRule(t *testing.T) {
	t.Parallel()

	body := calendarBody(
		"BEGIN:VEVENT",
		"UID:weekly@example.com",
		"SUMMARY:Weekly sync",
		"DTSTART:20250616T090000Z",
		"DTEND:20250616T100000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"END:VEVENT",
	)

	events, _, err := Parse(Source{ID: "team"}, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].RawRRule != "FREQ=WEEKLY;BYDAY=MO" {
		t.Fatalf("expected the rrule kept verbatim, got %q", events[0].RawRRule)
	}
}

func TestParse_AllDayEvent(t *testing.T) {
	t.Parallel()

	body := calendarBody(
		"BEGIN:VEVENT",
		"UID:holiday@example.com",
		"SUMMARY:Public holiday",
		"DTSTART;VALUE=DATE:20250616",
		"DTEND;VALUE=DATE:20250617",
		"END:VEVENT",
	)

	events, _, err := Parse(Source{ID: "team"}, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if !events[0].AllDay {
		t.Fatal("DATE-valued DTSTART must be detected as all-day")
	}
}

func TestParse_SkipsVEventWithoutUID(t *testing.T) {
	t.Parallel()

	body := calendarBody(
		"BEGIN:VEVENT",
		"SUMMARY:Anonymous",
		"DTSTART:20250616T090000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:kept@example.com",
		"SUMMARY:Kept",
		"DTSTART:20250616T090000Z",
		"DTEND:20250616T100000Z",
		"END:VEVENT",
	)

	events, skipped, err := Parse(Source{ID: "team"}, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 1 {
		t.Fatalf("expected one skipped vevent, got %d", len(skipped))
	}
	if len(events) != 1 || events[0].UID != "kept@example.com" {
		t.Fatalf("expected only the well-formed vevent, got %+v", events)
	}
}

func TestParse_RejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, _, err := Parse(Source{ID: "team"}, []byte("not a calendar")); err == nil {
		t.Fatal("expected an error for a non-ICS body")
	}
	if _, _, err := Parse(Source{ID: "team"}, nil); err == nil {
		t.Fatal("expected an error for an empty body")
	}
}
