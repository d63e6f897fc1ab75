// Package mailbox maintains the date-filtered email context the workflows
// operate on.
package mailbox

import (
	"context"
	"log/slog"
	"sync"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/models"
)

// Provider caches the most recently fetched email list for a single filter
// date. A failed refresh keeps the previous snapshot visible so the UI never
// flashes empty on a transient backend error.
type Provider struct {
	client backend.Client
	logger *slog.Logger

	mu         sync.RWMutex
	filterDate string
	emails     []models.EmailRecord
	fetched    bool
}

// NewProvider creates a provider backed by the given client.
func NewProvider(client backend.Client, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{client: client, logger: logger}
}

// Refresh fetches the email list for filterDate (YYYY-MM-DD). On success the
// snapshot and active date are replaced atomically. On failure the previous
// snapshot stays in place and the error is returned as a *backend.FetchError.
func (p *Provider) Refresh(ctx context.Context, filterDate string) error {
	emails, err := p.client.ListEmails(ctx, filterDate)
	if err != nil {
		p.logger.Warn("email refresh failed, keeping previous context",
			"filter_date", filterDate, "error", err)
		return err
	}

	p.mu.Lock()
	p.filterDate = filterDate
	p.emails = emails
	p.fetched = true
	p.mu.Unlock()

	p.logger.Debug("email context refreshed", "filter_date", filterDate, "count", len(emails))
	return nil
}

// Current returns a copy of the cached email list in backend order.
func (p *Provider) Current() []models.EmailRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.EmailRecord, len(p.emails))
	copy(out, p.emails)
	return out
}

// FilterDate returns the date of the last successful refresh, or "" when no
// refresh has succeeded yet.
func (p *Provider) FilterDate() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filterDate
}

// Fetched reports whether at least one refresh has succeeded.
func (p *Provider) Fetched() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fetched
}
