package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/dayplan/pkg/models"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	event := models.NewEvent()
	event.Title = "design review"
	event.Start = time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)
	event.End = time.Date(2026, 3, 10, 10, 15, 0, 0, time.Local)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, event))
	assert.Contains(t, buf.String(), "BEGIN:VEVENT")

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.Title, got.Title)
	assert.True(t, event.Start.Equal(got.Start))
	assert.True(t, event.End.Equal(got.End))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("certainly not icalendar"))
	assert.Error(t, err)
}

func TestDecodeRequiresEvent(t *testing.T) {
	doc := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	_, err := Decode(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestDecodeRequiresUID(t *testing.T) {
	doc := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"DTSTAMP:20260310T080000Z",
		"SUMMARY:mystery",
		"DTSTART:20260310T093000",
		"DTEND:20260310T101500",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	_, err := Decode(strings.NewReader(doc))
	assert.ErrorContains(t, err, "UID")
}

func TestDecodeBasicLocalTimestamps(t *testing.T) {
	doc := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:abc-123",
		"DTSTAMP:20260310T080000Z",
		"SUMMARY:standup",
		"DTSTART:20260310T093000",
		"DTEND:20260310T101500",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	event, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "abc-123", event.ID)
	assert.Equal(t, "standup", event.Title)
	assert.True(t, time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local).Equal(event.Start))
	assert.True(t, time.Date(2026, 3, 10, 10, 15, 0, 0, time.Local).Equal(event.End))
}
