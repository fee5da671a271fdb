package user

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type AccessLevel string

const (
	AccessAdmin   AccessLevel = "admin"
	AccessManager AccessLevel = "manager"
	AccessStaff   AccessLevel = "staff"
)

func (a AccessLevel) Valid() bool {
	switch a {
	case AccessAdmin, AccessManager, AccessStaff:
		return true
	}
	return false
}

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}
