package booking

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

const CodeInvalidInterval = "invalid_interval"

// ===============================
// Domain Actions
// ===============================

// ApplyStatus sets a new status and the visit instants. A given instant
// replaces the stored one; the merged pair must not end before it starts,
// otherwise b is left untouched. The actual duration is stored only when
// both instants are known.
func ApplyStatus(b *models.Booking, to Status, startedAt, endedAt *time.Time) error {
	start, end := b.StartedAt, b.EndedAt
	if startedAt != nil {
		start = startedAt
	}
	if endedAt != nil {
		end = endedAt
	}
	if start != nil && end != nil && end.Before(*start) {
		return httperr.ErrValidation(CodeInvalidInterval, "End time is before start time.")
	}

	b.Status = string(to)
	b.StartedAt = start
	b.EndedAt = end
	b.ActualDurationMinutes = ActualDuration(start, end)
	return nil
}

// Apply runs a named transition, stamping the start or end instant with now.
func Apply(b *models.Booking, t Transition, now time.Time) error {
	to, err := Next(Status(b.Status), t)
	if err != nil {
		return err
	}

	var startedAt, endedAt *time.Time
	switch t {
	case TransitionStart:
		startedAt = &now
	case TransitionFinish:
		endedAt = &now
	}

	return ApplyStatus(b, to, startedAt, endedAt)
}

func ActualDuration(startedAt, endedAt *time.Time) *int {
	if startedAt == nil || endedAt == nil {
		return nil
	}
	minutes := int(endedAt.Sub(*startedAt) / time.Minute)
	return &minutes
}
