package billing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type AddPaymentInput struct {
	ActorID       uint
	ServiceLineID uint
	Method        string
	Amount        decimal.Decimal
	Note          string
}

// AddPayment records one entry against a service-line. The amount is not
// capped by the remaining balance; Checkout is the capped path.
type AddPayment struct {
	deps Deps
}

func NewAddPayment(deps Deps) *AddPayment {
	return &AddPayment{deps: deps}
}

func (uc *AddPayment) Execute(ctx context.Context, in AddPaymentInput) (*models.Payment, Balance, error) {
	amount, err := validators.ValidateAmount(in.Amount)
	if err != nil {
		return nil, Balance{}, err
	}
	method, err := domain.ParseMethod(in.Method)
	if err != nil {
		return nil, Balance{}, err
	}
	note, err := validators.ValidateNotes(in.Note)
	if err != nil {
		return nil, Balance{}, err
	}

	line, err := uc.deps.requireLine(ctx, in.ServiceLineID)
	if err != nil {
		return nil, Balance{}, err
	}

	p := &models.Payment{
		ServiceLineID: line.ID,
		Method:        string(method),
		Amount:        amount,
		Note:          note,
		PaidAt:        uc.deps.Clock.Now(),
	}
	if err := uc.deps.Billing.AddPayments(ctx, []*models.Payment{p}); err != nil {
		return nil, Balance{}, err
	}

	uc.deps.recorder().Record(audit.Event{
		ActorID:  in.ActorID,
		Action:   audit.ActionCreate,
		Table:    audit.TablePayments,
		RecordID: p.ID,
		After:    paymentSnapshot(p),
	})
	uc.deps.Metrics.PaymentRecorded(p.Method, amount.InexactFloat64())

	bal, err := uc.deps.refresh(ctx, line.BookingID)
	if err != nil {
		return p, Balance{}, err
	}

	uc.deps.logger().Info("payment recorded",
		zap.Uint("payment_id", p.ID),
		zap.Uint("booking_id", line.BookingID),
		zap.String("method", p.Method),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("payment_status", string(bal.Status)),
	)
	return p, bal, nil
}

type DeletePayment struct {
	deps Deps
}

func NewDeletePayment(deps Deps) *DeletePayment {
	return &DeletePayment{deps: deps}
}

// Execute reports false when the payment does not exist.
func (uc *DeletePayment) Execute(ctx context.Context, actorID, paymentID uint) (bool, error) {
	p, ok, err := uc.deps.Billing.DeletePayment(ctx, paymentID)
	if err != nil || !ok {
		return false, err
	}

	uc.deps.recorder().Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionDelete,
		Table:    audit.TablePayments,
		RecordID: p.ID,
		Before:   paymentSnapshot(p),
	})

	line, err := uc.deps.requireLine(ctx, p.ServiceLineID)
	if err != nil {
		return true, err
	}
	if _, err := uc.deps.refresh(ctx, line.BookingID); err != nil {
		return true, err
	}

	uc.deps.logger().Info("payment deleted",
		zap.Uint("payment_id", p.ID),
		zap.Uint("booking_id", line.BookingID),
	)
	return true, nil
}

type PaymentSummary struct {
	Balance
	ByMethod []domain.MethodTotal `json:"by_method"`
}

// SummarizePayments returns totals per method together with the balance.
type SummarizePayments struct {
	deps Deps
}

func NewSummarizePayments(deps Deps) *SummarizePayments {
	return &SummarizePayments{deps: deps}
}

func (uc *SummarizePayments) Execute(ctx context.Context, bookingID uint) (*PaymentSummary, error) {
	if _, err := uc.deps.requireBooking(ctx, bookingID); err != nil {
		return nil, err
	}

	byMethod, err := uc.deps.Billing.SummaryByMethod(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if byMethod == nil {
		byMethod = []domain.MethodTotal{}
	}
	bal, err := uc.deps.balance(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &PaymentSummary{Balance: bal, ByMethod: byMethod}, nil
}
