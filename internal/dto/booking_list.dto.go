package dto

import "time"

type BookingListDTO struct {
	ID               uint      `json:"id"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	ClientID         uint      `json:"client_id"`
	ClientName       string    `json:"client_name"`
	ClientPhone      string    `json:"client_phone"`
	PractitionerID   uint      `json:"practitioner_id"`
	PractitionerName string    `json:"practitioner_name"`
	ServiceName      string    `json:"service_name"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
