package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const defaultDurationMinutes = 30

type PractitionerInput struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
}

func (in PractitionerInput) Normalize() (*models.Practitioner, error) {
	first, err := validators.ValidateName(in.FirstName, "first_name", true)
	if err != nil {
		return nil, err
	}
	last, err := validators.ValidateName(in.LastName, "last_name", true)
	if err != nil {
		return nil, err
	}
	specialization := strings.TrimSpace(in.Specialization)
	if specialization == "" || len(specialization) > 100 {
		return nil, httperr.ErrValidation("invalid_specialization", "Specialization is required, up to 100 characters.")
	}

	var phone string
	if strings.TrimSpace(in.Phone) != "" {
		if phone, err = validators.NormalizePhone(in.Phone); err != nil {
			return nil, err
		}
	}
	email, err := validators.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	return &models.Practitioner{
		FirstName:      first,
		LastName:       last,
		Specialization: specialization,
		Phone:          phone,
		Email:          email,
		Active:         true,
	}, nil
}

type ServiceInput struct {
	PractitionerID  uint            `json:"practitioner_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
}

func (in ServiceInput) Normalize() (*models.Service, error) {
	if in.PractitionerID == 0 {
		return nil, httperr.ErrValidation("practitioner_required", "Practitioner is required.")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		return nil, httperr.ErrValidation("invalid_service_name", "Service name is required, up to 100 characters.")
	}
	price, err := validators.ValidatePrice(in.Price)
	if err != nil {
		return nil, err
	}
	duration := in.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	if duration < 0 {
		return nil, httperr.ErrValidation("invalid_duration", "Duration must be positive.")
	}

	return &models.Service{
		PractitionerID:  in.PractitionerID,
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		Price:           price,
		DurationMinutes: duration,
		Active:          true,
	}, nil
}

type Repository interface {
	CreatePractitioner(ctx context.Context, p *models.Practitioner) error
	GetPractitioner(ctx context.Context, id uint) (*models.Practitioner, error)
	ListPractitioners(ctx context.Context) ([]models.Practitioner, error)

	CreateService(ctx context.Context, s *models.Service) error
	GetService(ctx context.Context, id uint) (*models.Service, error)

	// ListServices returns active services, optionally of one practitioner.
	ListServices(ctx context.Context, practitionerID *uint) ([]models.Service, error)
}
