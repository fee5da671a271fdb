package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceLine is a billable service attached to a booking at its own price.
type ServiceLine struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint `gorm:"not null;uniqueIndex:ux_service_lines_booking_service,priority:1" json:"booking_id"`

	ServiceID uint    `gorm:"not null;uniqueIndex:ux_service_lines_booking_service,priority:2" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Price decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_service_lines_price,price >= 0" json:"price"`

	Payments []Payment `gorm:"constraint:OnDelete:CASCADE;" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
