// Package backend provides the HTTP client for the local email-processing
// service and the error taxonomy its callers branch on.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/locoxsoco/GG-Assist/internal/models"
)

// DefaultBaseURL is where the backend listens when started locally.
const DefaultBaseURL = "http://localhost:5000"

// Client is the interface the orchestration layer depends on. HTTPClient is
// the production implementation; MockClient serves tests.
type Client interface {
	// ListEmails returns the emails received on filterDate (YYYY-MM-DD).
	ListEmails(ctx context.Context, filterDate string) ([]models.EmailRecord, error)

	// Classify submits a user message and returns the backend's reply text
	// and the workflow kind it selected.
	Classify(ctx context.Context, message, filterDate string) (models.Classification, error)

	// DetectEvent extracts a calendar event from an email. A nil result
	// with a nil error means the email contains no event.
	DetectEvent(ctx context.Context, emailID string) (*models.DetectedEvent, error)

	// SummarizeEmail returns a short summary of the email body.
	SummarizeEmail(ctx context.Context, emailID string) (string, error)

	// GenerateLabels returns suggested labels for an email. The list may be
	// empty; normalization is the caller's concern.
	GenerateLabels(ctx context.Context, emailID string) ([]string, error)
}

// HTTPClient talks JSON over HTTP to the backend service.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpc = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *HTTPClient) {
		c.logger = l
	}
}

// NewHTTPClient creates a client for the backend at baseURL.
// An empty baseURL falls back to DefaultBaseURL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// errorResponse is the backend's error body shape.
type errorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPClient) ListEmails(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
	q := url.Values{}
	q.Set("filterDate", filterDate)

	var out struct {
		Response []models.EmailRecord `json:"response"`
	}
	if err := c.getJSON(ctx, "/api/get-emails?"+q.Encode(), &out); err != nil {
		return nil, &FetchError{FilterDate: filterDate, Err: err}
	}
	return out.Response, nil
}

func (c *HTTPClient) Classify(ctx context.Context, message, filterDate string) (models.Classification, error) {
	req := map[string]string{
		"message":     message,
		"filter_date": filterDate,
	}
	var out struct {
		Response string `json:"response"`
		Type     string `json:"type"`
	}
	if err := c.postJSON(ctx, "/api/send-message", req, &out); err != nil {
		return models.Classification{}, &DispatchError{Err: err}
	}
	return models.Classification{
		Text: out.Response,
		Kind: models.ParseWorkflowKind(out.Type),
	}, nil
}

func (c *HTTPClient) DetectEvent(ctx context.Context, emailID string) (*models.DetectedEvent, error) {
	req := map[string]string{"email_id": emailID}
	var out struct {
		Event    *string `json:"event"`
		DateTime *string `json:"datetime"`
	}
	if err := c.postJSON(ctx, "/api/detect-email-event", req, &out); err != nil {
		return nil, &ItemOperationError{Op: "detect-event", EmailID: emailID, Err: err}
	}
	if out.Event == nil {
		return nil, nil
	}
	ev := &models.DetectedEvent{EmailID: emailID, Event: *out.Event}
	if out.DateTime != nil {
		ev.DateTime = *out.DateTime
	}
	return ev, nil
}

func (c *HTTPClient) SummarizeEmail(ctx context.Context, emailID string) (string, error) {
	req := map[string]string{"email_id": emailID}
	var out struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/summarize-email", req, &out); err != nil {
		return "", &ItemOperationError{Op: "summarize", EmailID: emailID, Err: err}
	}
	return out.Response, nil
}

func (c *HTTPClient) GenerateLabels(ctx context.Context, emailID string) ([]string, error) {
	req := map[string]string{"email_id": emailID}
	var out struct {
		Labels []string `json:"labels"`
	}
	if err := c.postJSON(ctx, "/api/generate-email-labels", req, &out); err != nil {
		return nil, &ItemOperationError{Op: "generate-labels", EmailID: emailID, Err: err}
	}
	return out.Labels, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	c.logger.Debug("backend request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			return fmt.Errorf("backend returned %d: %s", resp.StatusCode, er.Error)
		}
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
