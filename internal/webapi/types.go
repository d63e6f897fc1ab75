package webapi

import "time"

// TranscriptEntryResponse is one conversation entry as served to the UI.
// Deep links are resolved server-side so the front-end renders them as-is.
type TranscriptEntryResponse struct {
	ID        string        `json:"id"`
	Role      string        `json:"role"`
	Text      string        `json:"text"`
	Kind      string        `json:"kind,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Events    []EventCard   `json:"events,omitempty"`
	Summaries []SummaryCard `json:"summaries,omitempty"`
	Labels    []LabelCard   `json:"labels,omitempty"`
}

// EventCard is a detected calendar event with its prefill link.
type EventCard struct {
	EmailID     string `json:"emailId"`
	Event       string `json:"event"`
	DateTime    string `json:"datetime,omitempty"`
	GmailURL    string `json:"gmailUrl"`
	CalendarURL string `json:"calendarUrl,omitempty"`
}

// SummaryCard is a per-email summary with the Gmail deep link.
type SummaryCard struct {
	EmailID  string `json:"emailId"`
	Snippet  string `json:"snippet"`
	Summary  string `json:"summary"`
	GmailURL string `json:"gmailUrl"`
}

// LabelCard is the label suggestion for one email.
type LabelCard struct {
	EmailID  string   `json:"emailId"`
	Snippet  string   `json:"snippet"`
	Labels   []string `json:"labels"`
	GmailURL string   `json:"gmailUrl"`
}

// EmailResponse is one email in the current context.
type EmailResponse struct {
	ID           string    `json:"id"`
	Snippet      string    `json:"snippet"`
	InternalDate time.Time `json:"internalDate"`
	GmailURL     string    `json:"gmailUrl"`
}

// EmailListResponse wraps the email context with its filter date.
type EmailListResponse struct {
	FilterDate string          `json:"filterDate"`
	Emails     []EmailResponse `json:"emails"`
}

// StatusResponse reports the session processing state.
type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SendMessageRequest is the body for POST /api/send-message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageResponse returns the assistant entry the dispatch produced.
type SendMessageResponse struct {
	EntryID string `json:"entryId"`
}

// RefreshRequest is the body for POST /api/refresh-emails.
type RefreshRequest struct {
	FilterDate string `json:"filterDate"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
