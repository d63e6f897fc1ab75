package links

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGmailMessage(t *testing.T) {
	assert.Equal(t,
		"https://mail.google.com/mail/u/0/#inbox/18f2a9c4d7",
		GmailMessage("18f2a9c4d7"))
}

func TestCalendarEvent(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	got := CalendarEvent("Team standup", start)

	assert.Contains(t, got, "https://calendar.google.com/calendar/render?")
	assert.Contains(t, got, "action=TEMPLATE")
	assert.Contains(t, got, "text=Team+standup")
	assert.Contains(t, got, "dates=20250602T090000Z%2F20250602T100000Z")
}

func TestCalendarEvent_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	start := time.Date(2025, 6, 2, 11, 0, 0, 0, loc)

	got := CalendarEvent("Lunch", start)
	assert.Contains(t, got, "20250602T090000Z")
}

func TestParseEventTime(t *testing.T) {
	got := ParseEventTime("2025-06-02T09:00:00Z")
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), got)

	got = ParseEventTime("2025-06-02 09:00:00")
	assert.Equal(t, 9, got.Hour())

	got = ParseEventTime("2025-06-02")
	assert.Equal(t, time.June, got.Month())

	assert.True(t, ParseEventTime("next tuesday-ish").IsZero())
	assert.True(t, ParseEventTime("").IsZero())
}
