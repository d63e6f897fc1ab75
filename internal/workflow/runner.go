package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/cache"
	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/locoxsoco/GG-Assist/internal/transcript"
)

// ProgressListener receives progress updates from the runner and dispatcher.
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event.
type EventType string

// EventType constants
const (
	EventDispatchStart  EventType = "dispatch_start"
	EventClassified     EventType = "classified"
	EventDispatchFailed EventType = "dispatch_failed"
	EventBatchStart     EventType = "batch_start"
	EventItemStart      EventType = "item_start"
	EventItemComplete   EventType = "item_complete"
	EventItemSkipped    EventType = "item_skipped"
	EventBatchComplete  EventType = "batch_complete"
)

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	EventType  EventType
	Kind       models.WorkflowKind
	EmailID    string
	ItemNum    int
	TotalItems int
	DurationMs int64
	Details    map[string]any
}

// Runner executes a batch workflow over an email snapshot, amending one
// transcript entry in place as items resolve.
type Runner struct {
	client backend.Client
	store  *transcript.Store
	cache  *cache.Cache
	logger *slog.Logger
	now    func() time.Time

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCache enables per-email result caching.
func WithCache(c *cache.Cache) RunnerOption {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithRunnerClock overrides the timestamp source used for amendments.
func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a batch runner writing into the given store.
func NewRunner(client backend.Client, store *transcript.Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:    client,
		store:     store,
		cache:     cache.New(""),
		logger:    slog.Default(),
		now:       time.Now,
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run processes emails strictly in order for the given workflow kind,
// amending the target entry after every item. baseText is the classification
// text the progress suffix is rebuilt from on each amendment.
//
// Per-item failures skip the item and keep going. The returned error is
// non-nil only for top-level failures (unknown kind, canceled context).
func (r *Runner) Run(ctx context.Context, target models.EntryID, baseText string, kind models.WorkflowKind, emails []models.EmailRecord) error {
	strategy, err := StrategyFor(kind, r.client, r.cache)
	if err != nil {
		return err
	}

	total := len(emails)
	r.notifyProgress(ProgressEvent{
		EventType:  EventBatchStart,
		Kind:       kind,
		TotalItems: total,
	})

	var acc models.Payload
	for i, email := range emails {
		// Cancellation is honored between items; an in-flight item always
		// runs to completion and has its amendment applied.
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch canceled after %d/%d items: %w", i, total, err)
		}

		r.notifyProgress(ProgressEvent{
			EventType:  EventItemStart,
			Kind:       kind,
			EmailID:    email.ID,
			ItemNum:    i + 1,
			TotalItems: total,
		})

		itemStart := r.now()
		itemErr := strategy.ProcessItem(ctx, email, &acc)
		if itemErr != nil {
			r.logger.Warn("batch item failed, skipping",
				"kind", string(kind), "email_id", email.ID,
				"item", i+1, "total", total, "error", itemErr)
		}

		r.amendProgress(target, baseText, i+1, total, acc)

		if itemErr != nil {
			r.notifyProgress(ProgressEvent{
				EventType:  EventItemSkipped,
				Kind:       kind,
				EmailID:    email.ID,
				ItemNum:    i + 1,
				TotalItems: total,
				DurationMs: time.Since(itemStart).Milliseconds(),
				Details:    map[string]any{"error": itemErr.Error()},
			})
		} else {
			r.notifyProgress(ProgressEvent{
				EventType:  EventItemComplete,
				Kind:       kind,
				EmailID:    email.ID,
				ItemNum:    i + 1,
				TotalItems: total,
				DurationMs: time.Since(itemStart).Milliseconds(),
			})
		}
	}

	r.notifyProgress(ProgressEvent{
		EventType:  EventBatchComplete,
		Kind:       kind,
		TotalItems: total,
		Details:    map[string]any{"results": resultCount(acc)},
	})
	return nil
}

// amendProgress rewrites the target entry: progress suffix appended to the
// original classification text, fresh timestamp, and a wholesale copy of the
// accumulator as the payload.
func (r *Runner) amendProgress(target models.EntryID, baseText string, done, total int, acc models.Payload) {
	text := fmt.Sprintf("%s (%d/%d)", baseText, done, total)
	snapshot := acc.Clone()
	now := r.now()

	r.store.Amend(target, func(e *models.TranscriptEntry) {
		e.Text = text
		e.Timestamp = now
		e.Payload = snapshot
	})
}

func resultCount(p models.Payload) int {
	return len(p.Events) + len(p.Summaries) + len(p.Labels)
}
