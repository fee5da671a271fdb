package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// ActiveSlotIndex is the partial unique index over occupying bookings.
const ActiveSlotIndex = "ux_bookings_active_slot"

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Create
// --------------------------------------------------

func (r *BookingGormRepository) CreateWithServiceLine(
	ctx context.Context,
	b *models.Booking,
	line *models.ServiceLine,
	newClient *models.Client,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// Serializes concurrent creators of the same slot, including the
		// first one when there is no row yet to lock.
		if err := tx.Exec(
			"SELECT pg_advisory_xact_lock(hashtext(?))",
			slotLockKey(b),
		).Error; err != nil {
			return err
		}

		var existing models.Booking
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(
				"practitioner_id = ? AND booking_date = ? AND booking_time = ? AND status IN ?",
				b.PractitionerID,
				b.BookingDate,
				b.BookingTime,
				domain.OccupyingStatuses(),
			).
			First(&existing).Error

		switch {
		case err == nil:
			var holder models.Client
			if err := tx.First(&holder, existing.ClientID).Error; err != nil {
				return err
			}
			return domain.SlotConflict(existing.ID, holder.FullName())
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if newClient != nil {
			if err := tx.Create(newClient).Error; err != nil {
				if httperr.IsUniqueViolation(err) {
					return client.DuplicatePhone(newClient.Phone)
				}
				return err
			}
			b.ClientID = newClient.ID
		}

		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return err
		}

		line.BookingID = b.ID
		return tx.Omit(clause.Associations).Create(line).Error
	})

	return slotError(err)
}

func slotLockKey(b *models.Booking) string {
	return fmt.Sprintf(
		"booking:%d:%s:%s",
		b.PractitionerID,
		b.BookingDate.Format(timezone.DateLayout),
		b.BookingTime,
	)
}

// slotError surfaces a violation of the active-slot index as a slot conflict.
func slotError(err error) error {
	if err == nil {
		return nil
	}
	err = httperr.FromDB(err)

	var be httperr.BusinessError
	if errors.As(err, &be) && be.Code == "duplicate" && be.Message == ActiveSlotIndex {
		return httperr.ErrConflict(domain.CodeTimeConflict, "Practitioner is already booked at this time.")
	}
	return err
}

// --------------------------------------------------
// Read
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Practitioner").
		Preload("Service").
		First(&b, id).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Practitioner").
		Preload("Service").
		Where("booking_date >= ? AND booking_date <= ?", f.From, f.To)

	if f.PractitionerID != nil {
		q = q.Where("practitioner_id = ?", *f.PractitionerID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	var out []models.Booking
	if err := q.
		Order("booking_date ASC").
		Order("booking_time ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, httperr.FromDB(err)
	}
	return out, nil
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func (r *BookingGormRepository) SaveStatus(
	ctx context.Context,
	b *models.Booking,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{ID: b.ID}).
		Select("status", "started_at", "ended_at", "actual_duration_minutes").
		Updates(map[string]any{
			"status":                  b.Status,
			"started_at":              b.StartedAt,
			"ended_at":                b.EndedAt,
			"actual_duration_minutes": b.ActualDurationMinutes,
		})
	if res.Error != nil {
		return slotError(res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("not_found", "Booking not found.")
	}
	return nil
}

func (r *BookingGormRepository) DeleteBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, bool, error) {

	var deleted models.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&deleted, id).Error; err != nil {
			return err
		}
		// service_lines and payments follow through ON DELETE CASCADE.
		return tx.Delete(&models.Booking{}, id).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, httperr.FromDB(err)
	}
	return &deleted, true, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
