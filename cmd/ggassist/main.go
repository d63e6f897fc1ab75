package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Clean exit
	ExitBackendError = 1 // The email backend failed or is unreachable
	ExitError        = 2 // Configuration or runtime error
)

// BackendFailureError indicates the command itself ran fine, but the email
// backend could not serve a request.
type BackendFailureError struct {
	Message string
}

func (e *BackendFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var backendErr *BackendFailureError
		if errors.As(err, &backendErr) {
			os.Exit(ExitBackendError)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
