package client

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

// Input is the raw registration data as typed at the front desk.
type Input struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	BirthDate *time.Time `json:"birth_date"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
}

// Normalize validates every field and returns the client row to store.
// today bounds the birth date.
func (in Input) Normalize(today time.Time) (*models.Client, error) {
	first, err := validators.ValidateName(in.FirstName, "first_name", true)
	if err != nil {
		return nil, err
	}
	last, err := validators.ValidateName(in.LastName, "last_name", false)
	if err != nil {
		return nil, err
	}
	phone, err := validators.NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	email, err := validators.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	if in.BirthDate != nil && in.BirthDate.After(today) {
		return nil, httperr.ErrValidation("invalid_birth_date", "Birth date is in the future.")
	}

	return &models.Client{
		FirstName: first,
		LastName:  last,
		BirthDate: in.BirthDate,
		Phone:     phone,
		Email:     email,
		Active:    true,
	}, nil
}

const CodeDuplicatePhone = "duplicate_phone"

func DuplicatePhone(phone string) error {
	return httperr.ErrConflict(CodeDuplicatePhone, "A client with phone "+phone+" already exists.")
}
