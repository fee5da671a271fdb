package billing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

var tracer = otel.Tracer("clinic.usecase.billing")

// Deps are the collaborators shared by the billing use cases.
// Log and Metrics may be nil.
type Deps struct {
	Billing  domain.Repository
	Bookings booking.Repository
	Catalog  catalog.Repository
	Audit    audit.Recorder
	Clock    timezone.Clock
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d Deps) recorder() audit.Recorder {
	if d.Audit == nil {
		return audit.Nop{}
	}
	return d.Audit
}

// Balance is the paid/cost position of one booking.
type Balance struct {
	BookingID uint                 `json:"booking_id"`
	TotalCost decimal.Decimal      `json:"total_cost"`
	TotalPaid decimal.Decimal      `json:"total_paid"`
	Remaining decimal.Decimal      `json:"remaining"`
	Status    domain.PaymentStatus `json:"payment_status"`
}

func newBalance(bookingID uint, pos domain.Position) Balance {
	remaining := pos.Cost.Sub(pos.Paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return Balance{
		BookingID: bookingID,
		TotalCost: pos.Cost,
		TotalPaid: pos.Paid,
		Remaining: remaining,
		Status:    pos.Status,
	}
}

// balance is a read-only view; writers use refresh.
func (d Deps) balance(ctx context.Context, bookingID uint) (Balance, error) {
	cost, err := d.Billing.TotalCost(ctx, bookingID)
	if err != nil {
		return Balance{}, err
	}
	paid, err := d.Billing.TotalPaid(ctx, bookingID)
	if err != nil {
		return Balance{}, err
	}
	return newBalance(bookingID, domain.NewPosition(paid, cost)), nil
}

// refresh recomputes the payment status under the booking lock and caches it.
func (d Deps) refresh(ctx context.Context, bookingID uint) (Balance, error) {
	pos, err := d.Billing.RefreshPaymentStatus(ctx, bookingID)
	if err != nil {
		d.logger().Error("payment status not cached",
			zap.Uint("booking_id", bookingID),
			zap.Error(err),
		)
		return Balance{}, err
	}
	return newBalance(bookingID, pos), nil
}

func (d Deps) requireBooking(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := d.Bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "booking_not_found", "Booking not found.")
	}
	return b, nil
}

func (d Deps) requireLine(ctx context.Context, id uint) (*models.ServiceLine, error) {
	l, err := d.Billing.GetLine(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "service_line_not_found", "Service line not found.")
	}
	return l, nil
}

func notFoundAs(err error, code, message string) error {
	if httperr.IsKind(err, httperr.KindNotFound) {
		return httperr.ErrNotFound(code, message)
	}
	return err
}

func paymentSnapshot(p *models.Payment) map[string]any {
	return map[string]any{
		"id":              p.ID,
		"service_line_id": p.ServiceLineID,
		"method":          p.Method,
		"amount":          p.Amount.StringFixed(2),
		"note":            p.Note,
		"paid_at":         p.PaidAt,
	}
}

func lineSnapshot(l *models.ServiceLine) map[string]any {
	payments := make([]map[string]any, 0, len(l.Payments))
	for i := range l.Payments {
		payments = append(payments, paymentSnapshot(&l.Payments[i]))
	}
	return map[string]any{
		"id":         l.ID,
		"booking_id": l.BookingID,
		"service_id": l.ServiceID,
		"price":      l.Price.StringFixed(2),
		"payments":   payments,
	}
}
