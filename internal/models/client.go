package models

import "time"

// Client is a patient. Phone is globally unique in +7XXXXXXXXXX form.
type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName string     `gorm:"size:50;not null" json:"first_name"`
	LastName  string     `gorm:"size:50" json:"last_name"`
	BirthDate *time.Time `gorm:"type:date" json:"birth_date"`
	Phone     string     `gorm:"size:12;not null;uniqueIndex:ux_clients_phone" json:"phone"`
	Email     string     `gorm:"size:254" json:"email"`
	Active    bool       `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
