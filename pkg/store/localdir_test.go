package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/dayplan/pkg/models"
)

func newTestStore(t *testing.T) *LocalDir {
	t.Helper()
	s, err := NewLocalDir(t.TempDir())
	require.NoError(t, err)
	return s
}

func storedEvent(title string, start, end time.Time) models.Event {
	event := models.NewEvent()
	event.Title = title
	event.Start = start
	event.End = end
	return event
}

func at(hour int) time.Time {
	return time.Date(2026, 3, 9, hour, 0, 0, 0, time.Local)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	event := storedEvent("standup", at(10), at(11))

	require.NoError(t, s.CreateEvent(event))

	got, ok := s.GetEvent(event.ID)
	require.True(t, ok)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.Title, got.Title)
	assert.True(t, event.Start.Equal(got.Start))
	assert.True(t, event.End.Equal(got.End))
}

func TestGetEventUnknownID(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.GetEvent("missing")
	assert.False(t, ok)
}

func TestGetEventsOverlapPredicate(t *testing.T) {
	s := newTestStore(t)
	event := storedEvent("standup", at(10), at(11))
	require.NoError(t, s.CreateEvent(event))

	cases := []struct {
		name     string
		from, to time.Time
		included bool
	}{
		{"fully inside", at(9), at(12), true},
		{"query inside event", at(10).Add(15 * time.Minute), at(10).Add(30 * time.Minute), true},
		{"overlaps start", at(9), at(10).Add(30 * time.Minute), true},
		{"overlaps end", at(10).Add(30 * time.Minute), at(12), true},
		{"touches at event end", at(11), at(12), true},
		{"touches at event start", at(9), at(10), true},
		{"after", at(11).Add(time.Minute), at(12), false},
		{"before", at(8), at(10).Add(-time.Minute), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, err := s.GetEvents(tc.from, tc.to)
			require.NoError(t, err)
			if tc.included {
				require.Len(t, events, 1)
				assert.Equal(t, event.ID, events[0].ID)
			} else {
				assert.Empty(t, events)
			}
		})
	}
}

func TestGetEventsSkipsCorruptFiles(t *testing.T) {
	s := newTestStore(t)
	event := storedEvent("standup", at(10), at(11))
	require.NoError(t, s.CreateEvent(event))

	corrupt := filepath.Join(s.Dir(), "broken.ics")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an icalendar file"), 0o644))

	events, err := s.GetEvents(at(0), at(23))
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// A direct lookup of the corrupt record reads as not-found.
	_, ok := s.GetEvent("broken")
	assert.False(t, ok)
}

func TestGetEventsIgnoresForeignExtensions(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("todo"), 0o644))

	events, err := s.GetEvents(at(0), at(23))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestUpdateOverwritesInFull(t *testing.T) {
	s := newTestStore(t)
	event := storedEvent("standup", at(10), at(11))
	require.NoError(t, s.CreateEvent(event))

	event.Title = "daily standup"
	event.Start = at(9)
	event.End = at(10)
	require.NoError(t, s.UpdateEvent(event))

	got, ok := s.GetEvent(event.ID)
	require.True(t, ok)
	assert.Equal(t, "daily standup", got.Title)
	assert.True(t, at(9).Equal(got.Start))
}

func TestUpdateMissingRecordUpserts(t *testing.T) {
	s := newTestStore(t)
	event := storedEvent("standup", at(10), at(11))

	require.NoError(t, s.UpdateEvent(event))

	_, ok := s.GetEvent(event.ID)
	assert.True(t, ok)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	event := storedEvent("standup", at(10), at(11))
	require.NoError(t, s.CreateEvent(event))

	require.NoError(t, s.DeleteEvent(event.ID))
	_, ok := s.GetEvent(event.ID)
	assert.False(t, ok)

	// Deleting again, or deleting something never stored, still succeeds.
	require.NoError(t, s.DeleteEvent(event.ID))
	require.NoError(t, s.DeleteEvent("never-existed"))

	events, err := s.GetEvents(at(0), at(23))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventFileNamedByIdentity(t *testing.T) {
	s := newTestStore(t)
	event := storedEvent("standup", at(10), at(11))
	require.NoError(t, s.CreateEvent(event))

	_, err := os.Stat(filepath.Join(s.Dir(), event.ID+".ics"))
	assert.NoError(t, err)
}
