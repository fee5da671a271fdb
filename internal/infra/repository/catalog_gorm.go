package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// --------------------------------------------------
// Practitioner
// --------------------------------------------------

func (r *CatalogGormRepository) CreatePractitioner(ctx context.Context, p *models.Practitioner) error {
	return httperr.FromDB(r.db.WithContext(ctx).Create(p).Error)
}

func (r *CatalogGormRepository) GetPractitioner(ctx context.Context, id uint) (*models.Practitioner, error) {
	var p models.Practitioner
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return &p, nil
}

func (r *CatalogGormRepository) ListPractitioners(ctx context.Context) ([]models.Practitioner, error) {
	var out []models.Practitioner
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("last_name ASC").
		Order("first_name ASC").
		Find(&out).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return out, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *CatalogGormRepository) CreateService(ctx context.Context, s *models.Service) error {
	return httperr.FromDB(r.db.WithContext(ctx).Omit("Practitioner").Create(s).Error)
}

func (r *CatalogGormRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return &s, nil
}

func (r *CatalogGormRepository) ListServices(ctx context.Context, practitionerID *uint) ([]models.Service, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if practitionerID != nil {
		q = q.Where("practitioner_id = ?", *practitionerID)
	}

	var out []models.Service
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return out, nil
}

// Compile-time check
var _ domain.Repository = (*CatalogGormRepository)(nil)
