package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type UpdateStatusInput struct {
	ActorID   uint
	BookingID uint
	Status    string
	StartedAt *time.Time
	EndedAt   *time.Time
}

// UpdateBookingStatus sets any known status. No overlap check is run here;
// re-occupying a taken slot is refused by the store.
type UpdateBookingStatus struct {
	deps Deps
}

func NewUpdateBookingStatus(deps Deps) *UpdateBookingStatus {
	return &UpdateBookingStatus{deps: deps}
}

func (uc *UpdateBookingStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*models.Booking, error) {

	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if in.StartedAt != nil && in.EndedAt != nil && in.EndedAt.Before(*in.StartedAt) {
		return nil, httperr.ErrValidation(domain.CodeInvalidInterval, "End time is before start time.")
	}

	b, err := uc.deps.Bookings.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, notFoundAs(err, "booking_not_found", "Booking not found.")
	}
	if !domain.CanOverride(domain.Status(b.Status), to) {
		return nil, httperr.ErrBusiness("invalid_state")
	}

	before := snapshot(b)
	if err := domain.ApplyStatus(b, to, in.StartedAt, in.EndedAt); err != nil {
		return nil, err
	}

	return b, save(ctx, uc.deps, in.ActorID, b, before)
}

// TransitionBooking runs one of the named transitions (start, finish,
// no-show, cancel), stamping the visit instants with the clock.
type TransitionBooking struct {
	deps Deps
	t    domain.Transition
}

func NewStartBooking(deps Deps) *TransitionBooking {
	return &TransitionBooking{deps: deps, t: domain.TransitionStart}
}

func NewFinishBooking(deps Deps) *TransitionBooking {
	return &TransitionBooking{deps: deps, t: domain.TransitionFinish}
}

func NewMarkNoShow(deps Deps) *TransitionBooking {
	return &TransitionBooking{deps: deps, t: domain.TransitionNoShow}
}

func NewCancelBooking(deps Deps) *TransitionBooking {
	return &TransitionBooking{deps: deps, t: domain.TransitionCancel}
}

func (uc *TransitionBooking) Execute(
	ctx context.Context,
	actorID uint,
	bookingID uint,
) (*models.Booking, error) {

	b, err := uc.deps.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundAs(err, "booking_not_found", "Booking not found.")
	}

	before := snapshot(b)
	if err := domain.Apply(b, uc.t, uc.deps.Clock.Now()); err != nil {
		return nil, err
	}

	return b, save(ctx, uc.deps, actorID, b, before)
}

func save(
	ctx context.Context,
	deps Deps,
	actorID uint,
	b *models.Booking,
	before map[string]any,
) error {

	if err := deps.Bookings.SaveStatus(ctx, b); err != nil {
		return notFoundAs(err, "booking_not_found", "Booking not found.")
	}

	deps.recorder().Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionUpdate,
		Table:    audit.TableBookings,
		RecordID: b.ID,
		Before:   before,
		After:    snapshot(b),
	})
	deps.logger().Info("booking status changed",
		zap.Uint("booking_id", b.ID),
		zap.Any("from", before["status"]),
		zap.String("to", b.Status),
	)
	return nil
}
