package workflow

import (
	"fmt"
	"sync"

	"github.com/locoxsoco/GG-Assist/internal/models"
)

// ErrBusy is returned when a dispatch is attempted while another message is
// still being processed.
var ErrBusy = fmt.Errorf("a message is already being processed")

// StatusTracker holds the session-level processing state. Only one dispatch
// may hold the Processing state at a time.
type StatusTracker struct {
	mu      sync.Mutex
	status  models.Status
	lastErr string
}

// NewStatusTracker creates a tracker in the Ready state.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{status: models.StatusReady}
}

// Begin transitions to Processing. Returns ErrBusy if a dispatch is already
// in flight. Beginning from the Error state clears the previous error.
func (t *StatusTracker) Begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == models.StatusProcessing {
		return ErrBusy
	}
	t.status = models.StatusProcessing
	t.lastErr = ""
	return nil
}

// Finish transitions back to Ready.
func (t *StatusTracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = models.StatusReady
}

// Fail transitions to Error and records the message. The tracker is never
// left in Processing after a failure.
func (t *StatusTracker) Fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = models.StatusError
	t.lastErr = msg
}

// Current returns the status and, when in the Error state, its message.
func (t *StatusTracker) Current() (models.Status, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.lastErr
}
