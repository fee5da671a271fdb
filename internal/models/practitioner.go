package models

import "time"

type Practitioner struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName      string `gorm:"size:50;not null" json:"first_name"`
	LastName       string `gorm:"size:50;not null" json:"last_name"`
	Specialization string `gorm:"size:100;not null" json:"specialization"`
	Phone          string `gorm:"size:20" json:"phone"`
	Email          string `gorm:"size:254" json:"email"`
	Active         bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Practitioner) FullName() string {
	return p.FirstName + " " + p.LastName
}
