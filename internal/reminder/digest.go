package reminder

import (
	"fmt"
	"time"

	"github.com/example/lead-planner/internal/event"
	"github.com/example/lead-planner/internal/recurrence"
)

// DefaultDigestHour is the local hour after which the once-daily summary of
// tomorrow's events may fire.
const DefaultDigestHour = 21

// Digest is the once-daily summary notification draft.
type Digest struct {
	Count   int
	Message string
}

// EvaluateDigest decides whether the daily summary should run at the given
// instant. It acts at most once per calendar day, only after the cutoff
// hour. When it acts, the returned marker is the new "last attempted" date
// and must be persisted regardless of whether a notification was produced:
// a zero-count day is silently skipped but still consumes the day.
func EvaluateDigest(events []event.Event, now time.Time, lastAttempt time.Time, cutoffHour int) (digest *Digest, marker time.Time, acted bool) {
	if now.Hour() < cutoffHour {
		return nil, lastAttempt, false
	}
	if sameCalendarDay(lastAttempt, now) {
		return nil, lastAttempt, false
	}

	windowStart, windowEnd := recurrence.TomorrowWindow(now)

	count := 0
	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}
		if !ev.Start.Before(windowStart) && ev.Start.Before(windowEnd) {
			count++
		}
	}

	if count == 0 {
		return nil, now, true
	}

	return &Digest{
		Count:   count,
		Message: fmt.Sprintf("Daily Summary: You have %d event(s) tomorrow.", count),
	}, now, true
}

func sameCalendarDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
