package event

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence identifies how often an event repeats.
type Recurrence string

const (
	// RecurrenceNone marks a single, non-repeating event.
	RecurrenceNone Recurrence = ""
	// RecurrenceWeekly repeats on the anchor's weekday every week.
	RecurrenceWeekly Recurrence = "weekly"
	// RecurrenceMonthly repeats on the anchor's day every month.
	RecurrenceMonthly Recurrence = "monthly"
	// RecurrenceAnnually repeats on the anchor's month and day every year.
	RecurrenceAnnually Recurrence = "annually"
)

// ParseRecurrence normalises a recurrence label. Unknown labels map to
// RecurrenceNone alongside an error so callers can decide whether to reject
// or degrade.
func ParseRecurrence(value string) (Recurrence, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return RecurrenceNone, nil
	case "weekly":
		return RecurrenceWeekly, nil
	case "monthly":
		return RecurrenceMonthly, nil
	case "annually":
		return RecurrenceAnnually, nil
	default:
		return RecurrenceNone, fmt.Errorf("event: unknown recurrence %q", value)
	}
}

// Event is a calendar entry as managed by the host application. The reminder
// engine treats events as a read-only snapshot each tick and matches them by
// ID only; field layout mirrors the JSON the host stores.
type Event struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	IsAllDay bool       `json:"isAllDay,omitempty"`
	Summary  string     `json:"summary,omitempty"`
	Location string     `json:"location,omitempty"`
	Category []string   `json:"category,omitempty"`
	SeriesID string     `json:"seriesId,omitempty"`
	Source   string     `json:"source,omitempty"`
	// Reminders holds lead times in minutes before the event deadline.
	Reminders []int      `json:"reminders,omitempty"`
	Recurring Recurrence `json:"recurring,omitempty"`
}

// Anchor returns the instant reminder projection is based on. Deadline
// semantics: the event's end.
func (e Event) Anchor() time.Time {
	return e.End
}

// Validate reports field-level problems with the event.
func (e Event) Validate() *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(e.ID) == "" {
		vErr.Add("id", "id is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		vErr.Add("title", "title is required")
	}
	if e.Start.IsZero() {
		vErr.Add("start", "start is required")
	}
	if e.End.IsZero() {
		vErr.Add("end", "end is required")
	}
	if !e.Start.IsZero() && !e.End.IsZero() && e.End.Before(e.Start) {
		vErr.Add("time", "end must not precede start")
	}
	for _, offset := range e.Reminders {
		if offset <= 0 {
			vErr.Add("reminders", "reminder offsets must be positive minutes")
			break
		}
	}
	if _, err := ParseRecurrence(string(e.Recurring)); err != nil {
		vErr.Add("recurring", "must be one of weekly, monthly, annually")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field level validation error.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
