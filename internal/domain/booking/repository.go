package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ListFilter selects bookings with BookingDate in [From, To], both inclusive.
type ListFilter struct {
	From           time.Time
	To             time.Time
	PractitionerID *uint
	Statuses       []Status
	PaymentStatus  string
}

type Repository interface {
	// -------- Create (conflict-checked) --------

	// CreateWithServiceLine checks the slot and inserts the booking and its
	// first service-line in one transaction. When newClient is not nil it is
	// inserted after the slot check and b.ClientID is set to it. An occupied
	// slot yields SlotConflict and nothing is written, the client included.
	CreateWithServiceLine(
		ctx context.Context,
		b *models.Booking,
		line *models.ServiceLine,
		newClient *models.Client,
	) error

	// -------- Read --------
	GetBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	ListBookings(
		ctx context.Context,
		f ListFilter,
	) ([]models.Booking, error)

	// -------- State change --------
	SaveStatus(
		ctx context.Context,
		b *models.Booking,
	) error

	// DeleteBooking removes the booking with its service-lines and payments.
	// It returns the deleted row, or false when nothing matched.
	DeleteBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, bool, error)
}
