// Package links builds Gmail and Google Calendar deep links for results
// shown in the UI, so clients never assemble URLs themselves.
package links

import (
	"net/url"
	"time"
)

const (
	gmailInboxURL     = "https://mail.google.com/mail/u/0/#inbox/"
	calendarRenderURL = "https://calendar.google.com/calendar/render"

	// Events without an explicit end get a one hour default duration.
	defaultEventDuration = time.Hour
)

// GmailMessage returns the deep link that opens the email in Gmail.
func GmailMessage(emailID string) string {
	return gmailInboxURL + url.PathEscape(emailID)
}

// CalendarEvent returns a Google Calendar prefill link for an event starting
// at start. The end time defaults to start plus one hour.
func CalendarEvent(title string, start time.Time) string {
	end := start.Add(defaultEventDuration)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", formatCalendarTime(start)+"/"+formatCalendarTime(end))
	return calendarRenderURL + "?" + q.Encode()
}

// formatCalendarTime renders a timestamp in the compact UTC form the
// Calendar render endpoint expects.
func formatCalendarTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// ParseEventTime parses the datetime string attached to a detected event.
// The backend emits RFC 3339 when it can; a date-only fallback is accepted.
// Returns the zero time when the value cannot be interpreted.
func ParseEventTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
