package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type ClientGormRepository struct {
	db *gorm.DB
}

func NewClientGormRepository(db *gorm.DB) *ClientGormRepository {
	return &ClientGormRepository{db: db}
}

func (r *ClientGormRepository) CreateClient(
	ctx context.Context,
	c *models.Client,
) error {

	err := r.db.WithContext(ctx).Create(c).Error
	if httperr.IsUniqueViolation(err) {
		return domain.DuplicatePhone(c.Phone)
	}
	return httperr.FromDB(err)
}

func (r *ClientGormRepository) GetClient(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var c models.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return &c, nil
}

func (r *ClientGormRepository) FindClientByPhone(
	ctx context.Context,
	phone string,
) (*models.Client, error) {

	var c models.Client
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&c).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return &c, nil
}

func (r *ClientGormRepository) SearchClients(
	ctx context.Context,
	query string,
	limit int,
) ([]models.Client, error) {

	like := "%" + query + "%"

	var out []models.Client
	if err := r.db.WithContext(ctx).
		Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR phone LIKE ?",
			like, like, like,
		).
		Order("last_name ASC").
		Order("first_name ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return out, nil
}

func (r *ClientGormRepository) SetClientActive(
	ctx context.Context,
	id uint,
	active bool,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return httperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("not_found", "Client not found.")
	}
	return nil
}

// Compile-time check
var _ domain.Repository = (*ClientGormRepository)(nil)
