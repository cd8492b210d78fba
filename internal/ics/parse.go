package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ParsedEvent is the normalized representation of a VEVENT before recurrence
// expansion.
type ParsedEvent struct {
	Source Source

	UID      string
	Summary  string
	Location string

	Start  time.Time
	End    time.Time
	AllDay bool

	// RawRRule is kept verbatim; expansion happens in expand.go.
	RawRRule string
}

// Parse turns a single ICS payload into parsed events. Individual VEVENTs
// that cannot be understood are collected as skipped; only an unreadable
// calendar is an error.
func Parse(src Source, body []byte) (events []ParsedEvent, skipped []error, err error) {
	if len(body) == 0 {
		return nil, nil, fmt.Errorf("ics: empty body for %s", src.ID)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("ics: parse %s: %w", src.ID, err)
	}

	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(src, ve)
		if perr != nil {
			skipped = append(skipped, fmt.Errorf("ics: vevent in %s: %w", src.ID, perr))
			continue
		}
		events = append(events, ev)
	}

	return events, skipped, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("uid %s: start: %w", out.UID, err)
	}
	out.Start = start

	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	} else {
		out.End = start
	}

	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		out.AllDay = isAllDay(dtStart)
	}

	if rrule := ve.GetProperty(ical.ComponentPropertyRrule); rrule != nil {
		out.RawRRule = rrule.Value
	}

	return out, nil
}

// isAllDay detects DATE-valued DTSTART, either via VALUE=DATE or the bare
// YYYYMMDD form.
func isAllDay(prop *ical.IANAProperty) bool {
	if params := prop.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(prop.Value, "T")
}
