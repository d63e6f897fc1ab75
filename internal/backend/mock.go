package backend

import (
	"context"
	"fmt"

	"github.com/locoxsoco/GG-Assist/internal/models"
)

// MockClient is a simple mock implementation for testing. Each method
// delegates to the corresponding function field when set.
type MockClient struct {
	ListEmailsFunc     func(ctx context.Context, filterDate string) ([]models.EmailRecord, error)
	ClassifyFunc       func(ctx context.Context, message, filterDate string) (models.Classification, error)
	DetectEventFunc    func(ctx context.Context, emailID string) (*models.DetectedEvent, error)
	SummarizeFunc      func(ctx context.Context, emailID string) (string, error)
	GenerateLabelsFunc func(ctx context.Context, emailID string) ([]string, error)

	// Calls records every method invocation in order, formatted as
	// "method:arg" for asserting strict sequencing.
	Calls []string
}

func (m *MockClient) ListEmails(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
	m.record("list-emails", filterDate)
	if m.ListEmailsFunc != nil {
		return m.ListEmailsFunc(ctx, filterDate)
	}
	return nil, nil
}

func (m *MockClient) Classify(ctx context.Context, message, filterDate string) (models.Classification, error) {
	m.record("classify", message)
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, message, filterDate)
	}
	return models.Classification{Text: "Mock reply for: " + message, Kind: models.KindPlainMessage}, nil
}

func (m *MockClient) DetectEvent(ctx context.Context, emailID string) (*models.DetectedEvent, error) {
	m.record("detect-event", emailID)
	if m.DetectEventFunc != nil {
		return m.DetectEventFunc(ctx, emailID)
	}
	return nil, nil
}

func (m *MockClient) SummarizeEmail(ctx context.Context, emailID string) (string, error) {
	m.record("summarize", emailID)
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, emailID)
	}
	return "Mock summary for " + emailID, nil
}

func (m *MockClient) GenerateLabels(ctx context.Context, emailID string) ([]string, error) {
	m.record("generate-labels", emailID)
	if m.GenerateLabelsFunc != nil {
		return m.GenerateLabelsFunc(ctx, emailID)
	}
	return []string{"mock"}, nil
}

func (m *MockClient) record(method, arg string) {
	m.Calls = append(m.Calls, fmt.Sprintf("%s:%s", method, arg))
}
