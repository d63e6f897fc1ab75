package workflow

import (
	"testing"

	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTracker_StartsReady(t *testing.T) {
	tracker := NewStatusTracker()

	status, errMsg := tracker.Current()
	assert.Equal(t, models.StatusReady, status)
	assert.Empty(t, errMsg)
}

func TestStatusTracker_SingleFlight(t *testing.T) {
	tracker := NewStatusTracker()

	require.NoError(t, tracker.Begin())
	assert.ErrorIs(t, tracker.Begin(), ErrBusy)

	tracker.Finish()
	assert.NoError(t, tracker.Begin())
}

func TestStatusTracker_FailRecordsError(t *testing.T) {
	tracker := NewStatusTracker()

	require.NoError(t, tracker.Begin())
	tracker.Fail("backend unreachable")

	status, errMsg := tracker.Current()
	assert.Equal(t, models.StatusError, status)
	assert.Equal(t, "backend unreachable", errMsg)
}

func TestStatusTracker_BeginAfterErrorClearsIt(t *testing.T) {
	tracker := NewStatusTracker()

	require.NoError(t, tracker.Begin())
	tracker.Fail("boom")

	// Error is not a terminal state. The next message starts cleanly.
	require.NoError(t, tracker.Begin())

	status, errMsg := tracker.Current()
	assert.Equal(t, models.StatusProcessing, status)
	assert.Empty(t, errMsg)
}
