package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// Logger is the gorm-backed Store.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Write(ctx context.Context, row *models.AuditLog) error {
	return l.db.WithContext(ctx).Create(row).Error
}

func (l *Logger) Query(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	start, end := f.Window()

	q := l.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("created_at >= ? AND created_at < ?", start, end)

	if len(f.ActorIDs) > 0 {
		q = q.Where("actor_id IN ?", f.ActorIDs)
	}
	if len(f.Actions) > 0 {
		actions := make([]string, 0, len(f.Actions))
		for _, a := range f.Actions {
			actions = append(actions, string(a))
		}
		q = q.Where("action IN ?", actions)
	}
	if f.Table != "" {
		q = q.Where("table_name = ?", f.Table)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, httperr.FromDB(err)
	}

	limit, offset := f.Paging()

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, 0, httperr.FromDB(err)
	}
	return logs, total, nil
}

var _ Store = (*Logger)(nil)
