package workflow

import (
	"context"
	"fmt"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/cache"
	"github.com/locoxsoco/GG-Assist/internal/models"
)

// Strategy is the per-kind behavior plugged into the batch runner: how to
// process one email and how to fold the result into the payload.
type Strategy interface {
	Kind() models.WorkflowKind

	// ProcessItem runs the backend operation for one email and applies the
	// result to the accumulator. A returned error means the email
	// contributed nothing; the runner skips it and moves on.
	ProcessItem(ctx context.Context, email models.EmailRecord, acc *models.Payload) error
}

// StrategyFor returns the strategy for a batch workflow kind.
func StrategyFor(kind models.WorkflowKind, client backend.Client, c *cache.Cache) (Strategy, error) {
	switch kind {
	case models.KindCalendarEvent:
		return &calendarStrategy{client: client, cache: c}, nil
	case models.KindSummarizeEmail:
		return &summarizeStrategy{client: client, cache: c}, nil
	case models.KindGenerateLabels:
		return &labelsStrategy{client: client, cache: c}, nil
	}
	return nil, fmt.Errorf("no batch strategy for workflow kind %q", kind)
}

// calendarStrategy extracts calendar events. Emails without an event are
// valid results and add nothing to the payload.
type calendarStrategy struct {
	client backend.Client
	cache  *cache.Cache
}

func (s *calendarStrategy) Kind() models.WorkflowKind { return models.KindCalendarEvent }

// cachedEvent wraps the nullable detection result so "no event" is a
// cacheable outcome distinct from a miss.
type cachedEvent struct {
	Event *models.DetectedEvent `json:"event"`
}

func (s *calendarStrategy) ProcessItem(ctx context.Context, email models.EmailRecord, acc *models.Payload) error {
	key := cache.Key("detect-event", email.ID, email.Snippet)

	var cached cachedEvent
	if s.cache.Get(key, &cached) {
		if cached.Event != nil {
			acc.Events = append(acc.Events, *cached.Event)
		}
		return nil
	}

	ev, err := s.client.DetectEvent(ctx, email.ID)
	if err != nil {
		return err
	}
	_ = s.cache.Put(key, cachedEvent{Event: ev})

	if ev == nil {
		return nil
	}
	acc.Events = append(acc.Events, *ev)
	return nil
}

// summarizeStrategy produces one summary per email, unconditionally.
type summarizeStrategy struct {
	client backend.Client
	cache  *cache.Cache
}

func (s *summarizeStrategy) Kind() models.WorkflowKind { return models.KindSummarizeEmail }

func (s *summarizeStrategy) ProcessItem(ctx context.Context, email models.EmailRecord, acc *models.Payload) error {
	key := cache.Key("summarize", email.ID, email.Snippet)

	var summary string
	if !s.cache.Get(key, &summary) {
		var err error
		summary, err = s.client.SummarizeEmail(ctx, email.ID)
		if err != nil {
			return err
		}
		_ = s.cache.Put(key, summary)
	}

	acc.Summaries = append(acc.Summaries, models.EmailSummary{
		EmailID: email.ID,
		Snippet: email.Snippet,
		Summary: summary,
	})
	return nil
}

// labelsStrategy generates labels per email. An empty label list is
// normalized to the fallback label before accumulating.
type labelsStrategy struct {
	client backend.Client
	cache  *cache.Cache
}

func (s *labelsStrategy) Kind() models.WorkflowKind { return models.KindGenerateLabels }

func (s *labelsStrategy) ProcessItem(ctx context.Context, email models.EmailRecord, acc *models.Payload) error {
	key := cache.Key("generate-labels", email.ID, email.Snippet)

	var labels []string
	if !s.cache.Get(key, &labels) {
		var err error
		labels, err = s.client.GenerateLabels(ctx, email.ID)
		if err != nil {
			return err
		}
		_ = s.cache.Put(key, labels)
	}

	if len(labels) == 0 {
		labels = []string{models.FallbackLabel}
	}
	acc.Labels = append(acc.Labels, models.LabelSet{
		EmailID: email.ID,
		Snippet: email.Snippet,
		Labels:  labels,
	})
	return nil
}
