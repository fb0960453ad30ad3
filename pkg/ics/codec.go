// Package ics encodes and decodes calendar events as single-VEVENT
// iCalendar documents, one event per artifact.
package ics

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/borgmon/dayplan/pkg/models"
)

// Extension is the recognized file extension for stored events.
const Extension = ".ics"

// Decode reads an iCalendar document and returns the first VEVENT it
// contains. Events without a UID or a parsable start/end are rejected.
func Decode(r io.Reader) (models.Event, error) {
	decoder := ical.NewDecoder(r)

	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Event{}, fmt.Errorf("failed to decode calendar: %w", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			return parseEvent(comp)
		}
	}

	return models.Event{}, fmt.Errorf("no VEVENT component found")
}

// Encode writes the event as a complete iCalendar document containing a
// single VEVENT.
func Encode(w io.Writer, e models.Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//borgmon//dayplan//EN")

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, e.ID)
	ev.Props.SetText(ical.PropSummary, e.Title)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now())
	ev.Props.SetDateTime(ical.PropDateTimeStart, e.Start)
	ev.Props.SetDateTime(ical.PropDateTimeEnd, e.End)
	cal.Children = append(cal.Children, ev.Component)

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func parseEvent(comp *ical.Component) (models.Event, error) {
	event := models.Event{}

	if uidProp := comp.Props.Get(ical.PropUID); uidProp != nil {
		event.ID = uidProp.Value
	}
	if event.ID == "" {
		return models.Event{}, fmt.Errorf("event is missing a UID")
	}

	if summaryProp := comp.Props.Get(ical.PropSummary); summaryProp != nil {
		event.Title = summaryProp.Value
	}

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	endProp := comp.Props.Get(ical.PropDateTimeEnd)
	if startProp == nil || endProp == nil {
		return models.Event{}, fmt.Errorf("event %s is missing DTSTART or DTEND", event.ID)
	}

	start, err := parseDateTimeProperty(startProp)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s: %w", event.ID, err)
	}
	end, err := parseDateTimeProperty(endProp)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s: %w", event.ID, err)
	}

	event.Start = start
	event.End = end
	return event, nil
}

// parseDateTimeProperty attempts to parse a datetime property with multiple strategies
func parseDateTimeProperty(prop *ical.Prop) (time.Time, error) {
	// First try the standard DateTime method with local timezone
	if t, err := prop.DateTime(time.Local); err == nil {
		return t.In(time.Local), nil
	}

	// If that fails, try parsing the raw value directly
	value := prop.Value

	formats := []string{
		"20060102T150405",     // Basic format: YYYYMMDDTHHMMSS
		"20060102T150405Z",    // UTC format
		time.RFC3339,          // Standard RFC3339
		"2006-01-02T15:04:05", // ISO 8601 without timezone
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, value, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", value)
}
