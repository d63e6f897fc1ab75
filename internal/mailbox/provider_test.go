package mailbox

import (
	"context"
	"testing"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_RefreshReplacesSnapshot(t *testing.T) {
	client := &backend.MockClient{
		ListEmailsFunc: func(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
			return []models.EmailRecord{{ID: "m1", Snippet: "hello"}}, nil
		},
	}
	p := NewProvider(client, nil)

	require.NoError(t, p.Refresh(context.Background(), "2025-06-01"))

	emails := p.Current()
	require.Len(t, emails, 1)
	assert.Equal(t, "m1", emails[0].ID)
	assert.Equal(t, "2025-06-01", p.FilterDate())
	assert.True(t, p.Fetched())
}

func TestProvider_FailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	fail := false
	client := &backend.MockClient{
		ListEmailsFunc: func(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
			if fail {
				return nil, &backend.FetchError{FilterDate: filterDate, Err: context.DeadlineExceeded}
			}
			return []models.EmailRecord{{ID: "m1"}, {ID: "m2"}}, nil
		},
	}
	p := NewProvider(client, nil)

	require.NoError(t, p.Refresh(context.Background(), "2025-06-01"))

	fail = true
	err := p.Refresh(context.Background(), "2025-06-02")
	require.Error(t, err)

	var fetchErr *backend.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "2025-06-02", fetchErr.FilterDate)

	// The stale context survives and the active date is unchanged.
	assert.Len(t, p.Current(), 2)
	assert.Equal(t, "2025-06-01", p.FilterDate())
}

func TestProvider_CurrentReturnsCopy(t *testing.T) {
	client := &backend.MockClient{
		ListEmailsFunc: func(ctx context.Context, filterDate string) ([]models.EmailRecord, error) {
			return []models.EmailRecord{{ID: "m1", Snippet: "original"}}, nil
		},
	}
	p := NewProvider(client, nil)
	require.NoError(t, p.Refresh(context.Background(), "2025-06-01"))

	snapshot := p.Current()
	snapshot[0].Snippet = "mutated"

	assert.Equal(t, "original", p.Current()[0].Snippet)
}

func TestProvider_EmptyBeforeFirstRefresh(t *testing.T) {
	p := NewProvider(&backend.MockClient{}, nil)

	assert.Empty(t, p.Current())
	assert.Equal(t, "", p.FilterDate())
	assert.False(t, p.Fetched())
}
