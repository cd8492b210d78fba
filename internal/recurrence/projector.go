package recurrence

import (
	"fmt"
	"time"

	"github.com/example/lead-planner/internal/event"
)

// Next computes the next occurrence of anchor relative to now for the given
// recurrence kind. The result may be in the past only for non-repeating
// events, which are single points in time.
//
// Rebasing uses time.Date normalization, so a day-of-month that does not
// exist in the target month (anchor day 31 into a 30-day month, Feb 29 in a
// non-leap year) rolls over into the following month. This matches the
// wall-clock arithmetic the host application's event data was produced with.
func Next(anchor time.Time, kind event.Recurrence, now time.Time) time.Time {
	switch kind {
	case event.RecurrenceAnnually:
		candidate := rebase(anchor, now.Year(), anchor.Month(), anchor.Day())
		if candidate.Before(now) {
			candidate = rebase(anchor, now.Year()+1, anchor.Month(), anchor.Day())
		}
		return candidate

	case event.RecurrenceMonthly:
		candidate := rebase(anchor, now.Year(), now.Month(), anchor.Day())
		if candidate.Before(now) {
			// Month 13 normalizes into January of the next year.
			candidate = rebase(anchor, now.Year(), now.Month()+1, anchor.Day())
		}
		return candidate

	case event.RecurrenceWeekly:
		// The anchor's weekday within now's Sunday-start week.
		dayShift := int(anchor.Weekday()) - int(now.Weekday())
		candidate := rebase(anchor, now.Year(), now.Month(), now.Day()+dayShift)
		if candidate.Before(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate

	default:
		return anchor
	}
}

// CycleKey returns the discriminator that distinguishes one occurrence cycle
// of a recurring event from the next: the year for annual events, year-month
// for monthly, year-month-weekOfMonth for weekly, empty for one-time events.
func CycleKey(kind event.Recurrence, occurrence time.Time) string {
	switch kind {
	case event.RecurrenceAnnually:
		return fmt.Sprintf("annual-%d", occurrence.Year())
	case event.RecurrenceMonthly:
		return fmt.Sprintf("monthly-%d-%d", occurrence.Year(), int(occurrence.Month()))
	case event.RecurrenceWeekly:
		return fmt.Sprintf("weekly-%d-%d-%d", occurrence.Year(), int(occurrence.Month()), weekOfMonth(occurrence))
	default:
		return "onetime"
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// TomorrowWindow returns the half-open interval [start of tomorrow, start of
// the day after) relative to now.
func TomorrowWindow(now time.Time) (time.Time, time.Time) {
	tomorrow := StartOfDay(now).AddDate(0, 0, 1)
	return tomorrow, tomorrow.AddDate(0, 0, 1)
}

func rebase(anchor time.Time, year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
}

func weekOfMonth(t time.Time) int {
	return (t.Day() + 6) / 7
}
