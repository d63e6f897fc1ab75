package backend

import "fmt"

// FetchError indicates the date-filtered email list could not be retrieved.
// Callers keep serving the previously fetched context when this occurs.
type FetchError struct {
	FilterDate string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching emails for %s: %v", e.FilterDate, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DispatchError indicates message classification failed. No workflow is
// started; the failure surfaces as a system message in the transcript.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("classifying message: %v", e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// ItemOperationError indicates a per-email operation failed mid-batch.
// The batch runner skips the item and continues with the next one.
type ItemOperationError struct {
	Op      string
	EmailID string
	Err     error
}

func (e *ItemOperationError) Error() string {
	return fmt.Sprintf("%s for email %s: %v", e.Op, e.EmailID, e.Err)
}

func (e *ItemOperationError) Unwrap() error { return e.Err }
