// Package workflow orchestrates message handling: classification, batch
// execution over the email context, and the session processing status.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/mailbox"
	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/locoxsoco/GG-Assist/internal/transcript"
)

// Dispatcher is the single entry point for user messages. It classifies the
// message, records both sides of the exchange in the transcript, and hands
// batch workflows to the runner.
type Dispatcher struct {
	client  backend.Client
	store   *transcript.Store
	mailbox *mailbox.Provider
	status  *StatusTracker
	runner  *Runner
	logger  *slog.Logger
}

// NewDispatcher wires a dispatcher from its collaborators.
func NewDispatcher(client backend.Client, store *transcript.Store, mb *mailbox.Provider, status *StatusTracker, runner *Runner, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		client:  client,
		store:   store,
		mailbox: mb,
		status:  status,
		runner:  runner,
		logger:  logger,
	}
}

// Dispatch processes one user message end to end and returns the ID of the
// assistant entry it produced. While a previous dispatch is still running it
// returns ErrBusy without touching the transcript.
//
// Classification failures append a system message describing the problem,
// leave the status in Error, and return a *backend.DispatchError.
func (d *Dispatcher) Dispatch(ctx context.Context, userText string) (models.EntryID, error) {
	if err := d.status.Begin(); err != nil {
		return "", err
	}

	start := time.Now()
	d.store.Append(models.TranscriptEntry{
		Role: models.RoleUser,
		Text: userText,
	})
	d.runner.notifyProgress(ProgressEvent{
		EventType: EventDispatchStart,
		Details:   map[string]any{"message": userText},
	})

	cls, err := d.client.Classify(ctx, userText, d.mailbox.FilterDate())
	if err != nil {
		d.logger.Error("classification failed", "error", err)
		d.store.Append(models.TranscriptEntry{
			Role: models.RoleSystem,
			Text: fmt.Sprintf("Sorry, something went wrong while processing your request: %v", err),
		})
		d.status.Fail(err.Error())
		d.runner.notifyProgress(ProgressEvent{
			EventType: EventDispatchFailed,
			Details:   map[string]any{"error": err.Error()},
		})
		return "", err
	}

	entryID := d.store.Append(models.TranscriptEntry{
		Role: models.RoleAssistant,
		Text: cls.Text,
		Kind: cls.Kind,
	})
	d.runner.notifyProgress(ProgressEvent{
		EventType: EventClassified,
		Kind:      cls.Kind,
		Details:   map[string]any{"text": cls.Text},
	})

	if !cls.Kind.IsBatch() {
		d.status.Finish()
		return entryID, nil
	}

	// The email snapshot is captured once at hand-off; refreshes that land
	// mid-batch do not change the set being processed.
	emails := d.mailbox.Current()

	if err := d.runner.Run(ctx, entryID, cls.Text, cls.Kind, emails); err != nil {
		d.logger.Error("batch run aborted", "kind", string(cls.Kind), "error", err)
		d.status.Fail(err.Error())
		return entryID, err
	}

	d.logger.Debug("dispatch complete",
		"kind", string(cls.Kind),
		"emails", len(emails),
		"duration_ms", time.Since(start).Milliseconds())
	d.status.Finish()
	return entryID, nil
}

// OnProgress registers a listener for dispatch and batch progress events.
func (d *Dispatcher) OnProgress(listener ProgressListener) {
	d.runner.OnProgress(listener)
}
