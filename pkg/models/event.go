package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a calendar event
type Event struct {
	ID      string    // Stable unique identifier, assigned at creation
	Title   string    // Event title/summary
	Start   time.Time // Event start time (local)
	End     time.Time // Event end time (local)
	Changed bool      // Set when the event was committed as modified
}

// NewEvent creates an empty event with a fresh identity.
func NewEvent() Event {
	return Event{ID: uuid.New().String()}
}

// Clone returns a copy of the event carrying a fresh identity. Title and
// times are preserved; the copy is never marked changed.
func (e Event) Clone() Event {
	c := e
	c.ID = uuid.New().String()
	c.Changed = false
	return c
}

// Duration returns the span between start and end.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// MarkChanged flags the event for the persistence sync layer.
func (e *Event) MarkChanged() {
	e.Changed = true
}

// Overlaps reports whether the event's time range overlaps the closed
// interval [from, to]. Ranges that merely touch at an endpoint count.
func (e Event) Overlaps(from, to time.Time) bool {
	start := e.Start
	if from.After(start) {
		start = from
	}
	end := e.End
	if to.Before(end) {
		end = to
	}
	return !start.After(end)
}
