package billing

import "github.com/shopspring/decimal"

// PaymentStatus is derived from paid vs. cost and cached on the booking.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partially-paid"
	PaymentPaid          PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartiallyPaid, PaymentPaid:
		return true
	}
	return false
}

// RecomputePaymentStatus is unpaid when nothing is paid, paid once the cost is
// covered, partially-paid otherwise.
func RecomputePaymentStatus(totalPaid, totalCost decimal.Decimal) PaymentStatus {
	switch {
	case totalPaid.IsZero():
		return PaymentUnpaid
	case totalPaid.GreaterThanOrEqual(totalCost):
		return PaymentPaid
	default:
		return PaymentPartiallyPaid
	}
}

// Position is the cost/paid state of one booking read under its row lock.
type Position struct {
	Cost   decimal.Decimal
	Paid   decimal.Decimal
	Status PaymentStatus
}

func NewPosition(paid, cost decimal.Decimal) Position {
	return Position{Cost: cost, Paid: paid, Status: RecomputePaymentStatus(paid, cost)}
}
