package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures events in memory for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (l *recordingLogger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *recordingLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *recordingLogger) types() []EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	types := make([]EventType, len(l.events))
	for i, e := range l.events {
		types[i] = e.Type
	}
	return types
}

func TestSession_OpensWithWelcomeMessage(t *testing.T) {
	s := New(&backend.MockClient{}, Config{})

	entries := s.Transcript()
	require.Len(t, entries, 1)
	assert.Equal(t, models.RoleSystem, entries[0].Role)
	assert.Equal(t, WelcomeText, entries[0].Text)

	status, _ := s.CurrentStatus()
	assert.Equal(t, models.StatusReady, status)
}

func TestSession_LogsLifecycleEvents(t *testing.T) {
	events := &recordingLogger{}
	client := &backend.MockClient{
		ListEmailsFunc: func(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
			return []models.EmailRecord{{ID: "m1"}}, nil
		},
	}
	s := New(client, Config{BackendURL: "http://localhost:5000", Events: events})

	require.NoError(t, s.RefreshEmails(context.Background(), "2025-06-01"))
	require.NoError(t, s.Close())

	assert.Equal(t, []EventType{
		EventSessionStart,
		EventEmailsRefreshed,
		EventSessionEnd,
	}, events.types())
	assert.True(t, events.closed)
}

func TestSession_LogsFailedRefresh(t *testing.T) {
	events := &recordingLogger{}
	client := &backend.MockClient{
		ListEmailsFunc: func(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
			return nil, &backend.FetchError{FilterDate: filterDate, Err: errors.New("down")}
		},
	}
	s := New(client, Config{Events: events})

	err := s.RefreshEmails(context.Background(), "2025-06-01")
	require.Error(t, err)

	types := events.types()
	require.Len(t, types, 2)
	assert.Equal(t, EventError, types[1])
	assert.Equal(t, "2025-06-01", events.events[1].Data["filter_date"])
}

func TestSession_LogsBatchProgress(t *testing.T) {
	events := &recordingLogger{}
	client := &backend.MockClient{
		ListEmailsFunc: func(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
			return []models.EmailRecord{{ID: "m1"}, {ID: "m2"}}, nil
		},
		ClassifyFunc: func(ctx context.Context, message, filterDate string) (models.Classification, error) {
			return models.Classification{Text: "Summarizing", Kind: models.KindSummarizeEmail}, nil
		},
		SummarizeFunc: func(ctx context.Context, emailID string) (string, error) {
			if emailID == "m2" {
				return "", errors.New("model timeout")
			}
			return "summary", nil
		},
	}
	s := New(client, Config{Events: events})
	require.NoError(t, s.RefreshEmails(context.Background(), "2025-06-01"))

	_, err := s.Dispatch(context.Background(), "summarize my emails")
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventSessionStart,
		EventEmailsRefreshed,
		EventDispatchStart,
		EventClassified,
		EventItemComplete,
		EventItemSkipped,
		EventBatchComplete,
	}, events.types())
}

func TestSession_LogsDispatchFailure(t *testing.T) {
	events := &recordingLogger{}
	client := &backend.MockClient{
		ClassifyFunc: func(ctx context.Context, message, filterDate string) (models.Classification, error) {
			return models.Classification{}, &backend.DispatchError{Err: errors.New("offline")}
		},
	}
	s := New(client, Config{Events: events})

	_, err := s.Dispatch(context.Background(), "hello")
	require.Error(t, err)

	types := events.types()
	assert.Equal(t, EventError, types[len(types)-1])

	// The failure is visible in the transcript as a system entry.
	entries := s.Transcript()
	last := entries[len(entries)-1]
	assert.Equal(t, models.RoleSystem, last.Role)
	assert.Contains(t, last.Text, "Sorry, something went wrong")
}

func TestSession_EmailsReflectMailbox(t *testing.T) {
	client := &backend.MockClient{
		ListEmailsFunc: func(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
			return []models.EmailRecord{{ID: "m1", Snippet: "hello"}}, nil
		},
	}
	s := New(client, Config{})

	assert.Empty(t, s.Emails())
	require.NoError(t, s.RefreshEmails(context.Background(), "2025-06-01"))
	require.Len(t, s.Emails(), 1)
	assert.Equal(t, "m1", s.Emails()[0].ID)
}
