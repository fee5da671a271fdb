package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type BillingGormRepository struct {
	db *gorm.DB
}

func NewBillingGormRepository(db *gorm.DB) *BillingGormRepository {
	return &BillingGormRepository{db: db}
}

type sumRow struct {
	Total decimal.Decimal
}

// --------------------------------------------------
// Service-lines
// --------------------------------------------------

func (r *BillingGormRepository) AttachLine(
	ctx context.Context,
	line *models.ServiceLine,
) (bool, error) {

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
	if httperr.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, httperr.FromDB(err)
	}
	return true, nil
}

func (r *BillingGormRepository) DetachLine(
	ctx context.Context,
	bookingID uint,
	serviceID uint,
) (*models.ServiceLine, bool, error) {

	var line models.ServiceLine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Payments").
			Where("booking_id = ? AND service_id = ?", bookingID, serviceID).
			First(&line).Error; err != nil {
			return err
		}
		// payments follow through ON DELETE CASCADE.
		return tx.Delete(&models.ServiceLine{}, line.ID).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, httperr.FromDB(err)
	}
	return &line, true, nil
}

func (r *BillingGormRepository) GetLine(
	ctx context.Context,
	id uint,
) (*models.ServiceLine, error) {

	var line models.ServiceLine
	if err := r.db.WithContext(ctx).First(&line, id).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return &line, nil
}

func (r *BillingGormRepository) UpdateLinePrice(
	ctx context.Context,
	id uint,
	price decimal.Decimal,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.ServiceLine{}).
		Where("id = ?", id).
		Update("price", price)
	if res.Error != nil {
		return httperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("not_found", "Service line not found.")
	}
	return nil
}

func (r *BillingGormRepository) ListLines(
	ctx context.Context,
	bookingID uint,
) ([]domain.Line, error) {

	out, err := listLines(r.db.WithContext(ctx), bookingID)
	if err != nil {
		return nil, httperr.FromDB(err)
	}
	return out, nil
}

func listLines(tx *gorm.DB, bookingID uint) ([]domain.Line, error) {
	var out []domain.Line
	err := tx.
		Table("service_lines AS sl").
		Select(`sl.id, sl.booking_id, sl.service_id,
			s.name AS service_name,
			s.price AS catalog_price,
			sl.price,
			COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.service_line_id = sl.id), 0) AS paid,
			sl.created_at`).
		Joins("JOIN services s ON s.id = sl.service_id").
		Where("sl.booking_id = ?", bookingID).
		Order("s.name ASC").
		Order("sl.id ASC").
		Scan(&out).Error
	return out, err
}

func (r *BillingGormRepository) TotalCost(
	ctx context.Context,
	bookingID uint,
) (decimal.Decimal, error) {

	total, err := totalCost(r.db.WithContext(ctx), bookingID)
	if err != nil {
		return decimal.Zero, httperr.FromDB(err)
	}
	return total, nil
}

func totalCost(tx *gorm.DB, bookingID uint) (decimal.Decimal, error) {
	var row sumRow
	err := tx.
		Model(&models.ServiceLine{}).
		Select("COALESCE(SUM(price), 0) AS total").
		Where("booking_id = ?", bookingID).
		Scan(&row).Error
	return row.Total, err
}

// --------------------------------------------------
// Payments
// --------------------------------------------------

func (r *BillingGormRepository) AddPayments(
	ctx context.Context,
	payments []*models.Payment,
) error {

	if len(payments) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range payments {
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return httperr.FromDB(err)
}

func (r *BillingGormRepository) DeletePayment(
	ctx context.Context,
	id uint,
) (*models.Payment, bool, error) {

	var p models.Payment
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&p)
	if res.Error != nil {
		return nil, false, httperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &p, true, nil
}

func (r *BillingGormRepository) TotalPaid(
	ctx context.Context,
	bookingID uint,
) (decimal.Decimal, error) {

	total, err := totalPaid(r.db.WithContext(ctx), bookingID)
	if err != nil {
		return decimal.Zero, httperr.FromDB(err)
	}
	return total, nil
}

func totalPaid(tx *gorm.DB, bookingID uint) (decimal.Decimal, error) {
	var row sumRow
	err := tx.
		Table("payments AS p").
		Select("COALESCE(SUM(p.amount), 0) AS total").
		Joins("JOIN service_lines sl ON sl.id = p.service_line_id").
		Where("sl.booking_id = ?", bookingID).
		Scan(&row).Error
	return row.Total, err
}

func (r *BillingGormRepository) RecordPayments(
	ctx context.Context,
	bookingID uint,
	plan domain.PaymentPlan,
) ([]*models.Payment, domain.Position, error) {

	var (
		payments []*models.Payment
		after    domain.Position
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBooking(tx, bookingID); err != nil {
			return err
		}

		lines, err := listLines(tx, bookingID)
		if err != nil {
			return err
		}
		before, err := position(tx, bookingID)
		if err != nil {
			return err
		}

		if payments, err = plan(lines, before); err != nil {
			return err
		}
		for _, p := range payments {
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}

		if after, err = position(tx, bookingID); err != nil {
			return err
		}
		return setPaymentStatus(tx, bookingID, after.Status)
	})
	if err != nil {
		return nil, domain.Position{}, httperr.FromDB(err)
	}
	return payments, after, nil
}

func (r *BillingGormRepository) SummaryByMethod(
	ctx context.Context,
	bookingID uint,
) ([]domain.MethodTotal, error) {

	var out []domain.MethodTotal
	if err := r.db.WithContext(ctx).
		Table("payments AS p").
		Select("p.method, SUM(p.amount) AS total").
		Joins("JOIN service_lines sl ON sl.id = p.service_line_id").
		Where("sl.booking_id = ?", bookingID).
		Group("p.method").
		Order("p.method ASC").
		Scan(&out).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return out, nil
}

// --------------------------------------------------
// Booking cache
// --------------------------------------------------

func (r *BillingGormRepository) RefreshPaymentStatus(
	ctx context.Context,
	bookingID uint,
) (domain.Position, error) {

	var pos domain.Position
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBooking(tx, bookingID); err != nil {
			return err
		}
		var err error
		if pos, err = position(tx, bookingID); err != nil {
			return err
		}
		return setPaymentStatus(tx, bookingID, pos.Status)
	})
	if err != nil {
		return domain.Position{}, httperr.FromDB(err)
	}
	return pos, nil
}

// lockBooking takes the booking row lock that serializes payment writers.
func lockBooking(tx *gorm.DB, bookingID uint) error {
	var b models.Booking
	return tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&b, bookingID).Error
}

func position(tx *gorm.DB, bookingID uint) (domain.Position, error) {
	cost, err := totalCost(tx, bookingID)
	if err != nil {
		return domain.Position{}, err
	}
	paid, err := totalPaid(tx, bookingID)
	if err != nil {
		return domain.Position{}, err
	}
	return domain.NewPosition(paid, cost), nil
}

func setPaymentStatus(tx *gorm.DB, bookingID uint, status domain.PaymentStatus) error {
	return tx.
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("payment_status", string(status)).Error
}

// Compile-time check
var _ domain.Repository = (*BillingGormRepository)(nil)
