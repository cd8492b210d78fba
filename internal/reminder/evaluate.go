package reminder

import (
	"fmt"
	"math"
	"time"

	"github.com/example/lead-planner/internal/event"
	"github.com/example/lead-planner/internal/recurrence"
)

// occurrenceDateLayout renders the concrete occurrence date in recurring
// reminder messages.
const occurrenceDateLayout = "Jan 2, 2006"

// Firing describes one reminder that is due now: the notification draft plus
// the ledger key that must be recorded so the same (event, offset, cycle)
// triple never fires twice.
type Firing struct {
	EventID    string
	Key        string
	Message    string
	Recurrence event.Recurrence
	Occurrence time.Time
}

// Evaluate decides which reminders fire at the given instant. It reads the
// ledger but never mutates it; the caller applies the returned firings in
// order (notification first, then ledger record). Malformed events — missing
// id, zero anchor, or any non-positive offset — are skipped whole for this
// pass without ledger writes, so they fire once repaired. The skipped count
// is returned for observability.
func Evaluate(events []event.Event, now time.Time, ledger *Ledger) (firings []Firing, skipped int) {
	for _, ev := range events {
		if len(ev.Reminders) == 0 {
			continue
		}
		if ev.ID == "" || ev.Anchor().IsZero() || hasInvalidOffset(ev.Reminders) {
			skipped++
			continue
		}

		occurrence := recurrence.Next(ev.Anchor(), ev.Recurring, now)
		cycle := recurrence.CycleKey(ev.Recurring, occurrence)
		diff := occurrence.Sub(now)

		// Offsets are independent; a duplicate offset in the list must
		// still fire at most once per pass.
		seen := make(map[string]struct{}, len(ev.Reminders))

		for _, offset := range ev.Reminders {
			// Strictly future, within the lead window.
			if diff <= 0 || diff > time.Duration(offset)*time.Minute {
				continue
			}

			key := fmt.Sprintf("%dm-%s", offset, cycle)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if ledger.Has(ev.ID, key) {
				continue
			}

			firings = append(firings, Firing{
				EventID:    ev.ID,
				Key:        key,
				Message:    reminderMessage(ev, offset, occurrence),
				Recurrence: ev.Recurring,
				Occurrence: occurrence,
			})
		}
	}
	return firings, skipped
}

func hasInvalidOffset(offsets []int) bool {
	for _, offset := range offsets {
		if offset <= 0 {
			return true
		}
	}
	return false
}

func reminderMessage(ev event.Event, offsetMinutes int, occurrence time.Time) string {
	lead := leadLabel(offsetMinutes)

	switch ev.Recurring {
	case event.RecurrenceAnnually:
		return fmt.Sprintf("Annual Reminder: %q is due in less than %s on %s.",
			ev.Title, lead, occurrence.Format(occurrenceDateLayout))
	case event.RecurrenceMonthly:
		return fmt.Sprintf("Monthly Reminder: %q is due in less than %s on %s.",
			ev.Title, lead, occurrence.Format(occurrenceDateLayout))
	case event.RecurrenceWeekly:
		return fmt.Sprintf("Weekly Reminder: %q is due in less than %s on %s.",
			ev.Title, lead, occurrence.Format(occurrenceDateLayout))
	default:
		return fmt.Sprintf("Reminder: %q is due in less than %s.", ev.Title, lead)
	}
}

// leadLabel phrases a lead time: under an hour in minutes, otherwise rounded
// to whole hours with pluralization.
func leadLabel(offsetMinutes int) string {
	if offsetMinutes < 60 {
		if offsetMinutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", offsetMinutes)
	}

	hours := int(math.Round(float64(offsetMinutes) / 60))
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
