package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a catalog entry. Price is only the default for new service-lines.
type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PractitionerID uint         `gorm:"not null;index" json:"practitioner_id"`
	Practitioner   Practitioner `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Name            string          `gorm:"size:100;not null" json:"name"`
	Description     string          `gorm:"size:255" json:"description"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_services_price,price >= 0" json:"price"`
	DurationMinutes int             `gorm:"not null;default:30" json:"duration_minutes"`
	Active          bool            `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
