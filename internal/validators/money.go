package validators

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

// ValidatePrice accepts any non-negative amount, rounded to cents.
func ValidatePrice(p decimal.Decimal) (decimal.Decimal, error) {
	if p.IsNegative() {
		return decimal.Zero, httperr.ErrValidation("invalid_price", "Price cannot be negative.")
	}
	return p.Round(2), nil
}

// ValidateAmount accepts strictly positive amounts, rounded to cents.
func ValidateAmount(a decimal.Decimal) (decimal.Decimal, error) {
	a = a.Round(2)
	if !a.IsPositive() {
		return decimal.Zero, httperr.ErrValidation("invalid_amount", "Amount must be greater than zero.")
	}
	return a, nil
}
