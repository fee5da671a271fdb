package billing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type CheckoutInput struct {
	ActorID          uint
	BookingID        uint
	Tenders          []domain.Tender
	AllowOverpayment bool
	Note             string
}

type CheckoutResult struct {
	Balance
	Payments []models.Payment `json:"payments"`
	Overpaid decimal.Decimal  `json:"overpaid"`
	Warning  string           `json:"warning,omitempty"`
}

const CodeOverpayment = "overpayment"

// Checkout splits the tenders across the booking's service-lines in
// proportion to price. The balance check and every share are written in one
// transaction under the booking lock.
type Checkout struct {
	deps Deps
}

func NewCheckout(deps Deps) *Checkout {
	return &Checkout{deps: deps}
}

func (uc *Checkout) Execute(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	ctx, span := tracer.Start(ctx, "billing.checkout")
	defer span.End()
	span.SetAttributes(attribute.Int64("clinic.booking_id", int64(in.BookingID)))

	res, err := uc.execute(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(httperr.KindOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.String("clinic.payment_status", string(res.Status)))
	return res, nil
}

func (uc *Checkout) execute(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	tenders, err := normalizeTenders(in.Tenders)
	if err != nil {
		return nil, err
	}
	note, err := validators.ValidateNotes(in.Note)
	if err != nil {
		return nil, err
	}

	if _, err := uc.deps.requireBooking(ctx, in.BookingID); err != nil {
		return nil, err
	}

	tendered := domain.TenderTotal(tenders)
	now := uc.deps.Clock.Now()
	overpaid := decimal.Zero

	// The balance is read under the booking lock, so concurrent checkouts
	// see each other's entries.
	plan := func(lines []domain.Line, before domain.Position) ([]*models.Payment, error) {
		overpaid = before.Paid.Add(tendered).Sub(before.Cost)
		if overpaid.IsPositive() && !in.AllowOverpayment {
			remaining := newBalance(in.BookingID, before).Remaining
			return nil, httperr.ErrValidation(
				CodeOverpayment,
				fmt.Sprintf("Tendered %s exceeds the remaining %s.", tendered.StringFixed(2), remaining.StringFixed(2)),
			)
		}

		shares := make([]domain.LineShare, 0, len(lines))
		for _, l := range lines {
			shares = append(shares, domain.LineShare{LineID: l.ID, Price: l.Price})
		}
		allocs, err := domain.Allocate(shares, tenders)
		if err != nil {
			return nil, err
		}

		payments := make([]*models.Payment, 0, len(allocs))
		for _, a := range allocs {
			payments = append(payments, &models.Payment{
				ServiceLineID: a.LineID,
				Method:        string(a.Method),
				Amount:        a.Amount,
				Note:          note,
				PaidAt:        now,
			})
		}
		return payments, nil
	}

	payments, pos, err := uc.deps.Billing.RecordPayments(ctx, in.BookingID, plan)
	if err != nil {
		return nil, notFoundAs(err, "booking_not_found", "Booking not found.")
	}
	after := newBalance(in.BookingID, pos)

	res := &CheckoutResult{Balance: after, Overpaid: decimal.Zero}
	for _, p := range payments {
		res.Payments = append(res.Payments, *p)

		uc.deps.recorder().Record(audit.Event{
			ActorID:  in.ActorID,
			Action:   audit.ActionCreate,
			Table:    audit.TablePayments,
			RecordID: p.ID,
			After:    paymentSnapshot(p),
		})
		uc.deps.Metrics.PaymentRecorded(p.Method, p.Amount.InexactFloat64())
	}
	if overpaid.IsPositive() {
		res.Overpaid = overpaid
		res.Warning = fmt.Sprintf("Overpaid by %s.", overpaid.StringFixed(2))
	}

	uc.deps.logger().Info("checkout recorded",
		zap.Uint("booking_id", in.BookingID),
		zap.Int("entries", len(payments)),
		zap.String("tendered", tendered.StringFixed(2)),
		zap.String("payment_status", string(after.Status)),
	)
	return res, nil
}

func normalizeTenders(in []domain.Tender) ([]domain.Tender, error) {
	if len(in) == 0 {
		return nil, httperr.ErrValidation("no_tenders", "At least one payment method is required.")
	}
	out := make([]domain.Tender, 0, len(in))
	for _, t := range in {
		method, err := domain.ParseMethod(string(t.Method))
		if err != nil {
			return nil, err
		}
		amount, err := validators.ValidateAmount(t.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Tender{Method: method, Amount: amount})
	}
	return out, nil
}
