package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// schemaStatements run after AutoMigrate on every start; all are idempotent.
var schemaStatements = []string{
	// At most one occupying booking per practitioner slot.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_active_slot
		ON bookings (practitioner_id, booking_date, booking_time)
		WHERE status IN ('scheduled', 'in-progress')`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_table_record
		ON audit_logs (table_name, record_id)`,
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Practitioner{},
		&models.Service{},
		&models.Booking{},
		&models.ServiceLine{},
		&models.Payment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range schemaStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("schema statement: %w", err)
		}
	}
	return nil
}
