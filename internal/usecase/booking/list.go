package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

type ListInput struct {
	From           time.Time
	To             time.Time
	PractitionerID *uint
	Statuses       []string
	PaymentStatus  string
}

// ListBookingsByDateRange lists bookings on [From, To] ordered by date and
// time. A single day is From == To.
type ListBookingsByDateRange struct {
	repo domain.Repository
}

func NewListBookingsByDateRange(repo domain.Repository) *ListBookingsByDateRange {
	return &ListBookingsByDateRange{repo: repo}
}

func (uc *ListBookingsByDateRange) Execute(
	ctx context.Context,
	in ListInput,
) ([]dto.BookingListDTO, error) {

	if in.From.IsZero() || in.To.IsZero() {
		return nil, httperr.ErrValidation("date_range_required", "Both from and to are required.")
	}
	from, to := timezone.Date(in.From), timezone.Date(in.To)
	if to.Before(from) {
		return nil, httperr.ErrValidation("invalid_date_range", "End date is before start date.")
	}

	f := domain.ListFilter{
		From:           from,
		To:             to,
		PractitionerID: in.PractitionerID,
		PaymentStatus:  in.PaymentStatus,
	}
	for _, s := range in.Statuses {
		st, err := domain.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		f.Statuses = append(f.Statuses, st)
	}

	bookings, err := uc.repo.ListBookings(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toListDTO(b))
	}
	return out, nil
}

func toListDTO(b models.Booking) dto.BookingListDTO {
	return dto.BookingListDTO{
		ID:               b.ID,
		Date:             b.BookingDate.Format(timezone.DateLayout),
		Time:             b.BookingTime,
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		ClientID:         b.ClientID,
		ClientName:       b.Client.FullName(),
		ClientPhone:      b.Client.Phone,
		PractitionerID:   b.PractitionerID,
		PractitionerName: b.Practitioner.FullName(),
		ServiceName:      b.Service.Name,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt,
	}
}

type GetBooking struct {
	repo domain.Repository
}

func NewGetBooking(repo domain.Repository) *GetBooking {
	return &GetBooking{repo: repo}
}

func (uc *GetBooking) Execute(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := uc.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "booking_not_found", "Booking not found.")
	}
	return b, nil
}
