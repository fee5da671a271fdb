package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func TestVacatingPredicate(t *testing.T) {
	assert.False(t, StatusScheduled.IsVacating())
	assert.False(t, StatusInProgress.IsVacating())
	assert.True(t, StatusCompleted.IsVacating())
	assert.True(t, StatusNoShow.IsVacating())
	assert.True(t, StatusCancelled.IsVacating())

	assert.ElementsMatch(t, []string{"scheduled", "in-progress"}, OccupyingStatuses())
	assert.False(t, Status("bogus").IsOccupying())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("no-show")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, s)

	_, err = ParseStatus("done")
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestNextTransitions(t *testing.T) {
	tests := []struct {
		from Status
		t    Transition
		to   Status
		ok   bool
	}{
		{StatusScheduled, TransitionStart, StatusInProgress, true},
		{StatusInProgress, TransitionFinish, StatusCompleted, true},
		{StatusScheduled, TransitionFinish, StatusCompleted, true},
		{StatusScheduled, TransitionNoShow, StatusNoShow, true},
		{StatusScheduled, TransitionCancel, StatusCancelled, true},
		{StatusCompleted, TransitionStart, "", false},
		{StatusNoShow, TransitionFinish, "", false},
	}

	for _, tt := range tests {
		got, err := Next(tt.from, tt.t)
		if !tt.ok {
			assert.True(t, httperr.IsBusiness(err, "invalid_state"), "%s -%s->", tt.from, tt.t)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.to, got)
	}

	_, err := Next(StatusScheduled, Transition("teleport"))
	assert.True(t, httperr.IsBusiness(err, "invalid_transition"))
}

func TestCanOverrideIsPermissive(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.True(t, CanOverride(from, to))
		}
	}
	assert.False(t, CanOverride(StatusScheduled, "bogus"))
}

func TestApplyComputesDuration(t *testing.T) {
	b := &models.Booking{Status: string(StatusScheduled)}
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	require.NoError(t, Apply(b, TransitionStart, start))
	assert.Equal(t, string(StatusInProgress), b.Status)
	assert.Nil(t, b.ActualDurationMinutes)

	require.NoError(t, Apply(b, TransitionFinish, start.Add(42*time.Minute+30*time.Second)))
	assert.Equal(t, string(StatusCompleted), b.Status)
	require.NotNil(t, b.ActualDurationMinutes)
	assert.Equal(t, 42, *b.ActualDurationMinutes)

	assert.Error(t, Apply(b, TransitionStart, start))
}

func TestApplyStatus_ChecksMergedInterval(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	b := &models.Booking{Status: string(StatusInProgress), StartedAt: &start}

	early := start.Add(-10 * time.Minute)
	err := ApplyStatus(b, StatusCompleted, nil, &early)
	assert.True(t, httperr.IsBusiness(err, CodeInvalidInterval))
	assert.Equal(t, string(StatusInProgress), b.Status)
	assert.Nil(t, b.EndedAt)
	assert.Nil(t, b.ActualDurationMinutes)

	earlier := start.Add(-20 * time.Minute)
	end := start.Add(30 * time.Minute)
	b.EndedAt = &end
	require.NoError(t, ApplyStatus(b, StatusCompleted, &earlier, nil))
	require.NotNil(t, b.ActualDurationMinutes)
	assert.Equal(t, 50, *b.ActualDurationMinutes)

	late := end.Add(time.Minute)
	err = ApplyStatus(b, StatusCompleted, &late, nil)
	assert.True(t, httperr.IsBusiness(err, CodeInvalidInterval))
}
