package memory

import (
	"context"
	"sort"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func (s *Store) Write(_ context.Context, row *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row.ID = s.id()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = s.Now()
	}
	s.audit = append(s.audit, *row)
	return nil
}

func (s *Store) Query(_ context.Context, f audit.Filter) ([]models.AuditLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := f.Window()

	var matched []models.AuditLog
	for _, row := range s.audit {
		if row.CreatedAt.Before(start) || !row.CreatedAt.Before(end) {
			continue
		}
		if len(f.ActorIDs) > 0 && (row.ActorID == nil || !containsID(f.ActorIDs, *row.ActorID)) {
			continue
		}
		if len(f.Actions) > 0 && !containsAction(f.Actions, row.Action) {
			continue
		}
		if f.Table != "" && row.Target != f.Table {
			continue
		}
		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	limit, offset := f.Paging()
	if offset >= len(matched) {
		return []models.AuditLog{}, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// Entries returns every stored audit row in insertion order.
func (s *Store) Entries() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.audit...)
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsAction(actions []audit.Action, a string) bool {
	for _, v := range actions {
		if string(v) == a {
			return true
		}
	}
	return false
}

var _ audit.Store = (*Store)(nil)
