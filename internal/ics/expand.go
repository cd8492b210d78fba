package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/lead-planner/internal/event"
)

// maxOccurrencesPerEvent caps RRULE expansion so a pathological rule cannot
// flood the event book.
const maxOccurrencesPerEvent = 1000

// Window bounds recurrence expansion.
type Window struct {
	Start time.Time
	End   time.Time
}

// Expand turns parsed VEVENTs into concrete planner events inside the
// window. Recurring VEVENTs become one event per occurrence with a
// deterministic id (source, UID and occurrence instant), so re-importing the
// same feed upserts instead of duplicating.
func Expand(parsed []ParsedEvent, window Window) ([]event.Event, error) {
	if window.End.Before(window.Start) {
		return nil, fmt.Errorf("ics: expansion window end precedes start")
	}

	var out []event.Event
	for _, pe := range parsed {
		if pe.RawRRule == "" {
			if overlaps(pe.Start, pe.End, window) {
				out = append(out, toEvent(pe, pe.Start, pe.End))
			}
			continue
		}

		occurrences, err := expandRecurring(pe, window)
		if err != nil {
			return nil, err
		}
		out = append(out, occurrences...)
	}
	return out, nil
}

func expandRecurring(pe ParsedEvent, window Window) ([]event.Event, error) {
	rule, err := rrule.StrToRRule(pe.RawRRule)
	if err != nil {
		return nil, fmt.Errorf("ics: rrule for uid %s: %w", pe.UID, err)
	}
	rule.DTStart(pe.Start)

	var set rrule.Set
	set.RRule(rule)

	rangeStart := window.Start.In(pe.Start.Location())
	rangeEnd := window.End.In(pe.Start.Location())
	starts := set.Between(rangeStart, rangeEnd, true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	duration := pe.End.Sub(pe.Start)

	out := make([]event.Event, 0, len(starts))
	for _, occStart := range starts {
		if pe.AllDay {
			occStart = time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			out = append(out, toEvent(pe, occStart, occStart.Add(24*time.Hour)))
			continue
		}
		out = append(out, toEvent(pe, occStart, occStart.Add(duration)))
	}
	return out, nil
}

func toEvent(pe ParsedEvent, start, end time.Time) event.Event {
	title := pe.Summary
	if title == "" {
		title = pe.UID
	}
	return event.Event{
		ID:       occurrenceID(pe, start),
		Title:    title,
		Start:    start,
		End:      end,
		IsAllDay: pe.AllDay,
		Location: pe.Location,
		Source:   pe.Source.Name,
		SeriesID: pe.UID,
	}
}

func occurrenceID(pe ParsedEvent, start time.Time) string {
	return fmt.Sprintf("ics-%s-%s-%s", pe.Source.ID, pe.UID, start.UTC().Format("20060102T150405Z"))
}

func overlaps(start, end time.Time, window Window) bool {
	if end.Before(start) {
		end = start
	}
	return !end.Before(window.Start) && !start.After(window.End)
}
