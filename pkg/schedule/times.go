package schedule

import (
	"time"

	"github.com/borgmon/dayplan/pkg/models"
)

// reorderTimes swaps start and end when they are out of order, reporting
// whether a swap happened.
func reorderTimes(start, end *time.Time) bool {
	if !start.After(*end) {
		return false
	}
	*start, *end = *end, *start
	return true
}

func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func onSameDay(a, b time.Time) bool {
	return midnightOf(a).Equal(midnightOf(b))
}

// dayProgress returns how far into its day t falls, in [0, 1).
func dayProgress(t time.Time) float64 {
	return float64(t.Sub(midnightOf(t))) / float64(24*time.Hour)
}

// moveEventStart sets a new start time, pinning it at end-minDuration so
// the event never shrinks below the minimum.
func moveEventStart(event *models.Event, t time.Time, minDuration time.Duration) {
	if latest := event.End.Add(-minDuration); t.After(latest) {
		t = latest
	}
	event.Start = t
}

// moveEventEnd sets a new end time, pinning it at start+minDuration.
func moveEventEnd(event *models.Event, t time.Time, minDuration time.Duration) {
	if earliest := event.Start.Add(minDuration); t.Before(earliest) {
		t = earliest
	}
	event.End = t
}

// moveEvent moves the event to a new start, preserving its duration.
func moveEvent(event *models.Event, start time.Time) {
	d := event.Duration()
	event.Start = start
	event.End = start.Add(d)
}
