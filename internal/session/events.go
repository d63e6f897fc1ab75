package session

import "time"

// EventType identifies the kind of session event.
type EventType string

const (
	EventSessionStart    EventType = "session_start"
	EventSessionEnd      EventType = "session_complete"
	EventEmailsRefreshed EventType = "emails_refreshed"
	EventDispatchStart   EventType = "dispatch_start"
	EventClassified      EventType = "classified"
	EventItemComplete    EventType = "item_complete"
	EventItemSkipped     EventType = "item_skipped"
	EventBatchComplete   EventType = "batch_complete"
	EventError           EventType = "error"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// SessionStartData returns event data for a session start.
func SessionStartData(backendURL, filterDate string) map[string]any {
	return map[string]any{
		"backend_url": backendURL,
		"filter_date": filterDate,
	}
}

// SessionCompleteData returns event data for a session end.
func SessionCompleteData(entries int, durationMs int64) map[string]any {
	return map[string]any{
		"entries":     entries,
		"duration_ms": durationMs,
	}
}

// EmailsRefreshedData returns event data for a successful context refresh.
func EmailsRefreshedData(filterDate string, count int) map[string]any {
	return map[string]any{
		"filter_date": filterDate,
		"count":       count,
	}
}

// DispatchStartData returns event data for an incoming user message.
func DispatchStartData(message string) map[string]any {
	return map[string]any{
		"message": message,
	}
}

// ClassifiedData returns event data for a classification result.
func ClassifiedData(kind, text string) map[string]any {
	return map[string]any{
		"kind": kind,
		"text": text,
	}
}

// ItemCompleteData returns event data for a resolved batch item.
func ItemCompleteData(kind, emailID string, itemNum, totalItems int, durationMs int64) map[string]any {
	return map[string]any{
		"kind":        kind,
		"email_id":    emailID,
		"item":        itemNum,
		"total":       totalItems,
		"duration_ms": durationMs,
	}
}

// ItemSkippedData returns event data for a batch item that failed and was
// skipped.
func ItemSkippedData(kind, emailID string, itemNum, totalItems int, errMsg string) map[string]any {
	return map[string]any{
		"kind":     kind,
		"email_id": emailID,
		"item":     itemNum,
		"total":    totalItems,
		"error":    errMsg,
	}
}

// BatchCompleteData returns event data for a finished batch.
func BatchCompleteData(kind string, totalItems, results int) map[string]any {
	return map[string]any{
		"kind":    kind,
		"total":   totalItems,
		"results": results,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{
		"message": message,
	}
	for k, v := range details {
		d[k] = v
	}
	return d
}
