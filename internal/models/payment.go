package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is append-only: it is added or deleted, never edited.
type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ServiceLineID uint `gorm:"not null;index" json:"service_line_id"`

	Method string          `gorm:"size:20;not null" json:"method"`
	Amount decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_payments_amount,amount > 0" json:"amount"`
	Note   string          `gorm:"size:255" json:"note"`
	PaidAt time.Time       `gorm:"not null" json:"paid_at"`
}
