package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// Line is a service-line joined with its catalog entry and paid amount.
type Line struct {
	ID           uint            `json:"id"`
	BookingID    uint            `json:"booking_id"`
	ServiceID    uint            `json:"service_id"`
	ServiceName  string          `json:"service_name"`
	CatalogPrice decimal.Decimal `json:"catalog_price"`
	Price        decimal.Decimal `json:"price"`
	Paid         decimal.Decimal `json:"paid"`
	CreatedAt    time.Time       `json:"created_at"`
}

type MethodTotal struct {
	Method Method          `json:"method"`
	Total  decimal.Decimal `json:"total"`
}

// PaymentPlan turns the locked booking's lines and position into the entries
// to insert. An error aborts the transaction.
type PaymentPlan func(lines []Line, before Position) ([]*models.Payment, error)

type Repository interface {
	// -------- Service-lines --------

	// AttachLine returns false when the booking already has this service.
	AttachLine(ctx context.Context, line *models.ServiceLine) (bool, error)

	// DetachLine deletes the line and its payments, returning the removed
	// line with Payments loaded, or false when nothing matched.
	DetachLine(ctx context.Context, bookingID, serviceID uint) (*models.ServiceLine, bool, error)

	GetLine(ctx context.Context, id uint) (*models.ServiceLine, error)
	UpdateLinePrice(ctx context.Context, id uint, price decimal.Decimal) error
	ListLines(ctx context.Context, bookingID uint) ([]Line, error)
	TotalCost(ctx context.Context, bookingID uint) (decimal.Decimal, error)

	// -------- Payments --------

	// AddPayments inserts all entries in one transaction.
	AddPayments(ctx context.Context, payments []*models.Payment) error
	DeletePayment(ctx context.Context, id uint) (*models.Payment, bool, error)
	TotalPaid(ctx context.Context, bookingID uint) (decimal.Decimal, error)
	SummaryByMethod(ctx context.Context, bookingID uint) ([]MethodTotal, error)

	// RecordPayments locks the booking, runs plan against its current lines
	// and position, inserts the planned entries and caches the new payment
	// status, all in one transaction.
	RecordPayments(ctx context.Context, bookingID uint, plan PaymentPlan) ([]*models.Payment, Position, error)

	// -------- Booking cache --------

	// RefreshPaymentStatus locks the booking, recomputes its payment status
	// from committed lines and payments and caches it.
	RefreshPaymentStatus(ctx context.Context, bookingID uint) (Position, error)
}
