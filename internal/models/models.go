// Package models holds the core data types shared across the assistant:
// transcript entries, email records, workflow kinds, and card payloads.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EntryID uniquely identifies a transcript entry within a session.
type EntryID string

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// WorkflowKind identifies the workflow the backend selected for a user
// message. The values match the "type" field on the wire.
type WorkflowKind string

const (
	KindPlainMessage   WorkflowKind = "message"
	KindCalendarEvent  WorkflowKind = "calendar_event"
	KindSummarizeEmail WorkflowKind = "summarize_email"
	KindGenerateLabels WorkflowKind = "generate_labels"
)

// IsBatch reports whether the kind triggers a per-email batch run.
func (k WorkflowKind) IsBatch() bool {
	switch k {
	case KindCalendarEvent, KindSummarizeEmail, KindGenerateLabels:
		return true
	}
	return false
}

// ParseWorkflowKind maps a wire "type" value to a WorkflowKind.
// Unrecognized values degrade to a plain message.
func ParseWorkflowKind(s string) WorkflowKind {
	switch WorkflowKind(s) {
	case KindCalendarEvent, KindSummarizeEmail, KindGenerateLabels:
		return WorkflowKind(s)
	}
	return KindPlainMessage
}

// Status represents the session-level processing state.
type Status string

const (
	StatusReady      Status = "ready"
	StatusProcessing Status = "processing"
	StatusError      Status = "error"
)

// EpochMillis is a timestamp transmitted as milliseconds since the Unix
// epoch. The backend sends it either as a JSON number or a numeric string.
type EpochMillis int64

// UnmarshalJSON accepts both number and string encodings.
func (m *EpochMillis) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing epoch millis %q: %w", s, err)
	}
	*m = EpochMillis(v)
	return nil
}

// Time converts the timestamp to a time.Time in UTC.
func (m EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// EmailRecord is a single email returned by the date-filtered list call.
type EmailRecord struct {
	ID           string      `json:"id"`
	Snippet      string      `json:"snippet"`
	InternalDate EpochMillis `json:"internalDate"`
}

// Classification is the backend's verdict for a user message: the text to
// show and the workflow kind to run.
type Classification struct {
	Text string
	Kind WorkflowKind
}

// DetectedEvent is a calendar event extracted from an email. Both fields
// come back verbatim from the backend.
type DetectedEvent struct {
	EmailID  string `json:"emailId"`
	Event    string `json:"event"`
	DateTime string `json:"datetime,omitempty"`
}

// EmailSummary is a per-email summary produced during a summarize batch.
type EmailSummary struct {
	EmailID string `json:"emailId"`
	Snippet string `json:"snippet"`
	Summary string `json:"summary"`
}

// LabelSet holds the labels generated for one email. Labels is never empty;
// emails the backend could not label carry the fallback label.
type LabelSet struct {
	EmailID string   `json:"emailId"`
	Snippet string   `json:"snippet"`
	Labels  []string `json:"labels"`
}

// FallbackLabel is assigned when the backend returns no labels for an email.
const FallbackLabel = "general"

// Payload carries the structured results accumulated during a batch run.
// Only the slice matching the entry's workflow kind is populated.
type Payload struct {
	Events    []DetectedEvent `json:"events,omitempty"`
	Summaries []EmailSummary  `json:"summaries,omitempty"`
	Labels    []LabelSet      `json:"labels,omitempty"`
}

// IsEmpty reports whether the payload carries no results.
func (p Payload) IsEmpty() bool {
	return len(p.Events) == 0 && len(p.Summaries) == 0 && len(p.Labels) == 0
}

// Clone returns a deep copy. Amendments attach a copy so that later
// accumulation never mutates an already-published payload.
func (p Payload) Clone() Payload {
	out := Payload{}
	if p.Events != nil {
		out.Events = make([]DetectedEvent, len(p.Events))
		copy(out.Events, p.Events)
	}
	if p.Summaries != nil {
		out.Summaries = make([]EmailSummary, len(p.Summaries))
		copy(out.Summaries, p.Summaries)
	}
	if p.Labels != nil {
		out.Labels = make([]LabelSet, len(p.Labels))
		for i, ls := range p.Labels {
			cp := ls
			cp.Labels = make([]string, len(ls.Labels))
			copy(cp.Labels, ls.Labels)
			out.Labels[i] = cp
		}
	}
	return out
}

// TranscriptEntry is one message in the conversation log.
type TranscriptEntry struct {
	ID        EntryID      `json:"id"`
	Role      Role         `json:"role"`
	Text      string       `json:"text"`
	Kind      WorkflowKind `json:"kind,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   Payload      `json:"payload,omitempty"`
}

// MarshalJSON omits an empty payload entirely so plain messages stay compact.
func (e TranscriptEntry) MarshalJSON() ([]byte, error) {
	type alias TranscriptEntry
	if e.Payload.IsEmpty() {
		return json.Marshal(struct {
			alias
			Payload *Payload `json:"payload,omitempty"`
		}{alias: alias(e)})
	}
	return json.Marshal(alias(e))
}
