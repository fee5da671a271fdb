package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) CreateUser(ctx context.Context, u *models.User) error {
	return httperr.FromDB(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserGormRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return &u, nil
}

func (r *UserGormRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&u).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return &u, nil
}

func (r *UserGormRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return httperr.FromDB(r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error)
}

// Compile-time check
var _ domain.Repository = (*UserGormRepository)(nil)
