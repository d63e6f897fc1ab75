package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/cache"
	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/locoxsoco/GG-Assist/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmails(n int) []models.EmailRecord {
	emails := make([]models.EmailRecord, n)
	for i := range emails {
		emails[i] = models.EmailRecord{
			ID:      fmt.Sprintf("m%d", i+1),
			Snippet: fmt.Sprintf("snippet %d", i+1),
		}
	}
	return emails
}

func newBatchEntry(t *testing.T, store *transcript.Store, text string) models.EntryID {
	t.Helper()
	return store.Append(models.TranscriptEntry{
		Role: models.RoleAssistant,
		Text: text,
		Kind: models.KindSummarizeEmail,
	})
}

func TestRunner_SummarizeAllEmails(t *testing.T) {
	client := &backend.MockClient{
		SummarizeFunc: func(ctx context.Context, emailID string) (string, error) {
			return "summary of " + emailID, nil
		},
	}
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "Summarizing your emails")
	r := NewRunner(client, store)

	err := r.Run(context.Background(), id, "Summarizing your emails", models.KindSummarizeEmail, testEmails(3))
	require.NoError(t, err)

	entry, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Summarizing your emails (3/3)", entry.Text)
	require.Len(t, entry.Payload.Summaries, 3)
	assert.Equal(t, "m1", entry.Payload.Summaries[0].EmailID)
	assert.Equal(t, "summary of m1", entry.Payload.Summaries[0].Summary)
	assert.Equal(t, "snippet 1", entry.Payload.Summaries[0].Snippet)
}

func TestRunner_ProgressSuffixDoesNotCompound(t *testing.T) {
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "Working on it")
	r := NewRunner(&backend.MockClient{}, store)

	var texts []string
	r.OnProgress(func(event ProgressEvent) {
		if event.EventType == EventItemComplete {
			entry, _ := store.Get(id)
			texts = append(texts, entry.Text)
		}
	})

	err := r.Run(context.Background(), id, "Working on it", models.KindSummarizeEmail, testEmails(3))
	require.NoError(t, err)

	// Each amendment rebuilds from the original text, never from the
	// previous amended text.
	assert.Equal(t, []string{
		"Working on it (1/3)",
		"Working on it (2/3)",
		"Working on it (3/3)",
	}, texts)
}

func TestRunner_StrictlySequential(t *testing.T) {
	client := &backend.MockClient{}
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "base")
	r := NewRunner(client, store)

	err := r.Run(context.Background(), id, "base", models.KindSummarizeEmail, testEmails(4))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"summarize:m1",
		"summarize:m2",
		"summarize:m3",
		"summarize:m4",
	}, client.Calls)
}

func TestRunner_PerItemErrorSkipsAndAdvances(t *testing.T) {
	client := &backend.MockClient{
		SummarizeFunc: func(ctx context.Context, emailID string) (string, error) {
			if emailID == "m2" {
				return "", errors.New("model timeout")
			}
			return "ok", nil
		},
	}
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "Summarizing")
	r := NewRunner(client, store)

	var skipped []string
	r.OnProgress(func(event ProgressEvent) {
		if event.EventType == EventItemSkipped {
			skipped = append(skipped, event.EmailID)
		}
	})

	err := r.Run(context.Background(), id, "Summarizing", models.KindSummarizeEmail, testEmails(3))
	require.NoError(t, err)

	entry, _ := store.Get(id)
	// The failed email contributes nothing, but the counter still reaches
	// the full total.
	assert.Equal(t, "Summarizing (3/3)", entry.Text)
	require.Len(t, entry.Payload.Summaries, 2)
	assert.Equal(t, "m1", entry.Payload.Summaries[0].EmailID)
	assert.Equal(t, "m3", entry.Payload.Summaries[1].EmailID)
	assert.Equal(t, []string{"m2"}, skipped)
}

func TestRunner_CalendarSkipsEmailsWithoutEvents(t *testing.T) {
	client := &backend.MockClient{
		DetectEventFunc: func(ctx context.Context, emailID string) (*models.DetectedEvent, error) {
			if emailID != "m2" {
				return nil, nil
			}
			return &models.DetectedEvent{
				EmailID:  emailID,
				Event:    "Sprint review",
				DateTime: "2025-06-02T15:00:00Z",
			}, nil
		},
	}
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "Checking for events")
	r := NewRunner(client, store)

	err := r.Run(context.Background(), id, "Checking for events", models.KindCalendarEvent, testEmails(3))
	require.NoError(t, err)

	entry, _ := store.Get(id)
	assert.Equal(t, "Checking for events (3/3)", entry.Text)
	require.Len(t, entry.Payload.Events, 1)
	assert.Equal(t, "Sprint review", entry.Payload.Events[0].Event)
}

func TestRunner_LabelsFallbackWhenEmpty(t *testing.T) {
	client := &backend.MockClient{
		GenerateLabelsFunc: func(ctx context.Context, emailID string) ([]string, error) {
			if emailID == "m1" {
				return []string{"work", "urgent"}, nil
			}
			return nil, nil
		},
	}
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "Labeling")
	r := NewRunner(client, store)

	err := r.Run(context.Background(), id, "Labeling", models.KindGenerateLabels, testEmails(2))
	require.NoError(t, err)

	entry, _ := store.Get(id)
	require.Len(t, entry.Payload.Labels, 2)
	assert.Equal(t, []string{"work", "urgent"}, entry.Payload.Labels[0].Labels)
	assert.Equal(t, []string{models.FallbackLabel}, entry.Payload.Labels[1].Labels)
}

func TestRunner_PayloadReplacedWholesaleEachStep(t *testing.T) {
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "base")
	r := NewRunner(&backend.MockClient{}, store)

	var sizes []int
	r.OnProgress(func(event ProgressEvent) {
		if event.EventType == EventItemComplete {
			entry, _ := store.Get(id)
			sizes = append(sizes, len(entry.Payload.Summaries))
		}
	})

	err := r.Run(context.Background(), id, "base", models.KindSummarizeEmail, testEmails(3))
	require.NoError(t, err)

	// Each step carries everything accumulated so far, not a delta.
	assert.Equal(t, []int{1, 2, 3}, sizes)
}

func TestRunner_EmptySnapshot(t *testing.T) {
	client := &backend.MockClient{}
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "Summarizing")
	r := NewRunner(client, store)

	var events []EventType
	r.OnProgress(func(event ProgressEvent) {
		events = append(events, event.EventType)
	})

	err := r.Run(context.Background(), id, "Summarizing", models.KindSummarizeEmail, nil)
	require.NoError(t, err)

	assert.Empty(t, client.Calls)
	assert.Equal(t, []EventType{EventBatchStart, EventBatchComplete}, events)

	// With no items there is nothing to amend.
	entry, _ := store.Get(id)
	assert.Equal(t, "Summarizing", entry.Text)
}

func TestRunner_UnknownKind(t *testing.T) {
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "base")
	r := NewRunner(&backend.MockClient{}, store)

	err := r.Run(context.Background(), id, "base", models.KindPlainMessage, testEmails(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no batch strategy")
}

func TestRunner_CancellationBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &backend.MockClient{
		SummarizeFunc: func(innerCtx context.Context, emailID string) (string, error) {
			if emailID == "m2" {
				cancel()
			}
			return "ok", nil
		},
	}
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "Summarizing")
	r := NewRunner(client, store)

	err := r.Run(ctx, id, "Summarizing", models.KindSummarizeEmail, testEmails(4))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The item in flight when cancellation landed still had its amendment
	// applied; later items never ran.
	entry, _ := store.Get(id)
	assert.Equal(t, "Summarizing (2/4)", entry.Text)
	assert.Len(t, client.Calls, 2)
}

func TestRunner_AmendmentsUseFreshTimestamps(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store := transcript.NewStore()
	id := newBatchEntry(t, store, "base")
	r := NewRunner(&backend.MockClient{}, store, WithRunnerClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))

	err := r.Run(context.Background(), id, "base", models.KindSummarizeEmail, testEmails(2))
	require.NoError(t, err)

	entry, _ := store.Get(id)
	assert.True(t, entry.Timestamp.After(base))
}

func TestRunner_CacheAvoidsRepeatBackendCalls(t *testing.T) {
	calls := 0
	client := &backend.MockClient{
		SummarizeFunc: func(ctx context.Context, emailID string) (string, error) {
			calls++
			return "cached summary", nil
		},
	}
	store := transcript.NewStore()
	c := cache.New(t.TempDir())
	r := NewRunner(client, store, WithCache(c))

	emails := testEmails(2)

	id1 := newBatchEntry(t, store, "first pass")
	require.NoError(t, r.Run(context.Background(), id1, "first pass", models.KindSummarizeEmail, emails))
	assert.Equal(t, 2, calls)

	id2 := newBatchEntry(t, store, "second pass")
	require.NoError(t, r.Run(context.Background(), id2, "second pass", models.KindSummarizeEmail, emails))
	assert.Equal(t, 2, calls)

	entry, _ := store.Get(id2)
	require.Len(t, entry.Payload.Summaries, 2)
	assert.Equal(t, "cached summary", entry.Payload.Summaries[0].Summary)
}
