package event

import (
	"errors"
	"testing"
	"time"
)

func validEvent() Event {
	start := time.Date(2025, time.June, 14, 10, 0, 0, 0, time.Local)
	return Event{
		ID:        "evt-1",
		Title:     "Dentist",
		Start:     start,
		End:       start.Add(time.Hour),
		Reminders: []int{30, 1440},
	}
}

func TestParseRecurrence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    Recurrence
		wantErr bool
	}{
		{"", RecurrenceNone, false},
		{"none", RecurrenceNone, false},
		{"weekly", RecurrenceWeekly, false},
		{"Monthly", RecurrenceMonthly, false},
		{"  annually  ", RecurrenceAnnually, false},
		{"fortnightly", RecurrenceNone, true},
	}

	for _, tc := range cases {
		got, err := ParseRecurrence(tc.input)
		if tc.wantErr && err == nil {
			t.Errorf("ParseRecurrence(%q): expected an error", tc.input)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("ParseRecurrence(%q): unexpected error %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseRecurrence(%q): expected %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid event passes", func(t *testing.T) {
		t.Parallel()
		if vErr := validEvent().Validate(); vErr != nil {
			t.Fatalf("expected no validation errors, got %v", vErr.FieldErrors)
		}
	})

	cases := []struct {
		name   string
		mutate func(*Event)
		field  string
	}{
		{"missing id", func(e *Event) { e.ID = " " }, "id"},
		{"missing title", func(e *Event) { e.Title = "" }, "title"},
		{"missing start", func(e *Event) { e.Start = time.Time{} }, "start"},
		{"missing end", func(e *Event) { e.End = time.Time{} }, "end"},
		{"end before start", func(e *Event) { e.End = e.Start.Add(-time.Minute) }, "time"},
		{"non-positive reminder", func(e *Event) { e.Reminders = []int{0} }, "reminders"},
		{"unknown recurrence", func(e *Event) { e.Recurring = "fortnightly" }, "recurring"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ev := validEvent()
			tc.mutate(&ev)

			vErr := ev.Validate()
			if vErr == nil {
				t.Fatal("expected a validation error")
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected an error on field %q, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestAnchorIsDeadline(t *testing.T) {
	t.Parallel()

	ev := validEvent()
	if !ev.Anchor().Equal(ev.End) {
		t.Fatalf("expected the anchor to be the event end, got %v", ev.Anchor())
	}
}

func TestValidationErrorIsError(t *testing.T) {
	t.Parallel()

	ev := Event{}
	err := error(ev.Validate())

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatal("expected errors.As to unwrap ValidationError")
	}
	if !vErr.HasErrors() {
		t.Fatal("expected recorded field errors")
	}
}
