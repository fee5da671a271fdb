package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
)

type DeleteBooking struct {
	deps Deps
}

func NewDeleteBooking(deps Deps) *DeleteBooking {
	return &DeleteBooking{deps: deps}
}

// Execute hard-deletes the booking with its service-lines and payments.
// It reports false when the booking did not exist.
func (uc *DeleteBooking) Execute(
	ctx context.Context,
	actorID uint,
	bookingID uint,
) (bool, error) {

	b, ok, err := uc.deps.Bookings.DeleteBooking(ctx, bookingID)
	if err != nil || !ok {
		return false, err
	}

	uc.deps.recorder().Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionDelete,
		Table:    audit.TableBookings,
		RecordID: b.ID,
		Before:   snapshot(b),
	})
	uc.deps.logger().Info("booking deleted", zap.Uint("booking_id", b.ID))
	return true, nil
}
