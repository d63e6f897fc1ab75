// Package session assembles the assistant's per-conversation state: the
// transcript, the email context, the processing status, and the dispatcher.
// It also records an NDJSON event log of everything that happened.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/cache"
	"github.com/locoxsoco/GG-Assist/internal/mailbox"
	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/locoxsoco/GG-Assist/internal/transcript"
	"github.com/locoxsoco/GG-Assist/internal/workflow"
)

// WelcomeText is the system message that opens every new session.
const WelcomeText = "Hi! I can check your inbox, summarize emails, suggest labels, and find calendar events. What would you like to do?"

// Config holds session construction parameters.
type Config struct {
	BackendURL string
	FilterDate string
	Cache      *cache.Cache
	Logger     *slog.Logger
	Events     Logger
}

// Session owns one conversation and its collaborators.
type Session struct {
	Store      *transcript.Store
	Mailbox    *mailbox.Provider
	Status     *workflow.StatusTracker
	Dispatcher *workflow.Dispatcher

	backendURL string
	events     Logger
	logger     *slog.Logger
	startedAt  time.Time
}

// New builds a session around the given backend client. The transcript
// opens with the welcome message.
func New(client backend.Client, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Events == nil {
		cfg.Events = NopLogger{}
	}

	store := transcript.NewStore(transcript.WithLogger(cfg.Logger))
	mb := mailbox.NewProvider(client, cfg.Logger)
	status := workflow.NewStatusTracker()

	runnerOpts := []workflow.RunnerOption{workflow.WithRunnerLogger(cfg.Logger)}
	if cfg.Cache != nil {
		runnerOpts = append(runnerOpts, workflow.WithCache(cfg.Cache))
	}
	runner := workflow.NewRunner(client, store, runnerOpts...)
	dispatcher := workflow.NewDispatcher(client, store, mb, status, runner, cfg.Logger)

	s := &Session{
		Store:      store,
		Mailbox:    mb,
		Status:     status,
		Dispatcher: dispatcher,
		backendURL: cfg.BackendURL,
		events:     cfg.Events,
		logger:     cfg.Logger,
		startedAt:  time.Now(),
	}

	dispatcher.OnProgress(s.logProgress)

	store.Append(models.TranscriptEntry{
		Role: models.RoleSystem,
		Text: WelcomeText,
	})

	s.logEvent(EventSessionStart, SessionStartData(cfg.BackendURL, cfg.FilterDate))
	return s
}

// Dispatch forwards a user message to the dispatcher.
func (s *Session) Dispatch(ctx context.Context, text string) (models.EntryID, error) {
	return s.Dispatcher.Dispatch(ctx, text)
}

// RefreshEmails refetches the email context for filterDate and logs the
// outcome. The previous context survives a failed refresh.
func (s *Session) RefreshEmails(ctx context.Context, filterDate string) error {
	if err := s.Mailbox.Refresh(ctx, filterDate); err != nil {
		s.logEvent(EventError, ErrorData(err.Error(), map[string]any{"filter_date": filterDate}))
		return err
	}
	s.logEvent(EventEmailsRefreshed, EmailsRefreshedData(filterDate, len(s.Mailbox.Current())))
	return nil
}

// Transcript returns the conversation snapshot for rendering.
func (s *Session) Transcript() []models.TranscriptEntry {
	return s.Store.Entries()
}

// Emails returns the current email context snapshot.
func (s *Session) Emails() []models.EmailRecord {
	return s.Mailbox.Current()
}

// CurrentStatus returns the processing status and error message, if any.
func (s *Session) CurrentStatus() (models.Status, string) {
	return s.Status.Current()
}

// OnProgress registers an additional progress listener, e.g. for live
// terminal rendering.
func (s *Session) OnProgress(listener workflow.ProgressListener) {
	s.Dispatcher.OnProgress(listener)
}

// Close records the session end event and closes the event log.
func (s *Session) Close() error {
	s.logEvent(EventSessionEnd, SessionCompleteData(
		s.Store.Len(),
		time.Since(s.startedAt).Milliseconds()))
	return s.events.Close()
}

func (s *Session) logEvent(t EventType, data map[string]any) {
	if err := s.events.Log(NewEvent(t, data)); err != nil {
		s.logger.Debug("session event log write failed", "type", string(t), "error", err)
	}
}

// logProgress translates workflow progress events into session log events.
func (s *Session) logProgress(ev workflow.ProgressEvent) {
	switch ev.EventType {
	case workflow.EventDispatchStart:
		msg, _ := ev.Details["message"].(string) //nolint:errcheck
		s.logEvent(EventDispatchStart, DispatchStartData(msg))
	case workflow.EventClassified:
		text, _ := ev.Details["text"].(string) //nolint:errcheck
		s.logEvent(EventClassified, ClassifiedData(string(ev.Kind), text))
	case workflow.EventDispatchFailed:
		msg, _ := ev.Details["error"].(string) //nolint:errcheck
		s.logEvent(EventError, ErrorData(msg, nil))
	case workflow.EventItemComplete:
		s.logEvent(EventItemComplete, ItemCompleteData(
			string(ev.Kind), ev.EmailID, ev.ItemNum, ev.TotalItems, ev.DurationMs))
	case workflow.EventItemSkipped:
		errMsg, _ := ev.Details["error"].(string) //nolint:errcheck
		s.logEvent(EventItemSkipped, ItemSkippedData(
			string(ev.Kind), ev.EmailID, ev.ItemNum, ev.TotalItems, errMsg))
	case workflow.EventBatchComplete:
		results := 0
		if n, ok := ev.Details["results"].(int); ok {
			results = n
		}
		s.logEvent(EventBatchComplete, BatchCompleteData(string(ev.Kind), ev.TotalItems, results))
	}
}
