package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	PractitionerID uint         `gorm:"not null;index:idx_bookings_slot,priority:1" json:"practitioner_id"`
	Practitioner   Practitioner `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"practitioner"`

	// ServiceID is the service chosen at creation; billing lives in ServiceLines.
	ServiceID uint    `gorm:"not null" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service"`

	BookingDate time.Time `gorm:"type:date;not null;index:idx_bookings_slot,priority:2" json:"date"`
	BookingTime string    `gorm:"size:8;not null;index:idx_bookings_slot,priority:3" json:"time"`

	Status        string `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	PaymentStatus string `gorm:"size:20;not null;default:'unpaid';index" json:"payment_status"`

	Notes  string `gorm:"size:500" json:"notes"`
	Source string `gorm:"size:50" json:"source"`

	StartedAt             *time.Time `json:"started_at"`
	EndedAt               *time.Time `json:"ended_at"`
	ActualDurationMinutes *int       `json:"actual_duration_minutes"`

	ServiceLines []ServiceLine `gorm:"constraint:OnDelete:CASCADE;" json:"service_lines,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
