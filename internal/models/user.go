package models

import "time"

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	AccessLevel  string     `gorm:"size:20;not null;default:'staff'" json:"access_level"`
	LastLogin    *time.Time `json:"last_login"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
