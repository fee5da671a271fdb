package client

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type Repository interface {
	// CreateClient fails with DuplicatePhone when the phone is taken.
	CreateClient(ctx context.Context, c *models.Client) error

	GetClient(ctx context.Context, id uint) (*models.Client, error)
	FindClientByPhone(ctx context.Context, phone string) (*models.Client, error)

	// SearchClients matches names or phone, case-insensitive, up to limit rows.
	SearchClients(ctx context.Context, query string, limit int) ([]models.Client, error)

	SetClientActive(ctx context.Context, id uint, active bool) error
}
