package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionLogin  Action = "LOGIN"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin:
		return a, nil
	}
	return "", httperr.ErrValidation("invalid_action", "Unknown audit action: "+s)
}

// Tables named in audit entries.
const (
	TableBookings     = "bookings"
	TableServiceLines = "service_lines"
	TablePayments     = "payments"
	TableClients      = "clients"
	TablePractitioner = "practitioners"
	TableServices     = "services"
	TableUsers        = "users"
)

// Event describes one committed mutation. ActorID 0 means the system.
type Event struct {
	ActorID  uint
	Action   Action
	Table    string
	RecordID uint
	Before   any
	After    any

	// At is when the mutation happened. Recorders stamp it when zero.
	At time.Time
}

// Recorder accepts events without ever failing the caller.
type Recorder interface {
	Record(ev Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(Event) {}

// Entry converts the event into the stored row created at ev.At.
func (ev Event) Entry() (*models.AuditLog, error) {
	before, err := snapshot(ev.Before)
	if err != nil {
		return nil, err
	}
	after, err := snapshot(ev.After)
	if err != nil {
		return nil, err
	}

	row := &models.AuditLog{
		Action:    string(ev.Action),
		Target:    ev.Table,
		OldValues: before,
		NewValues: after,
		CreatedAt: ev.At,
	}
	if ev.ActorID != 0 {
		actor := ev.ActorID
		row.ActorID = &actor
	}
	if ev.RecordID != 0 {
		id := ev.RecordID
		row.RecordID = &id
	}
	return row, nil
}

func snapshot(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Filter selects entries created on calendar days From..To (inclusive)
// in the clinic's local time.
type Filter struct {
	From     time.Time
	To       time.Time
	Location *time.Location
	ActorIDs []uint
	Actions  []Action
	Table    string
	Page     int
	Limit    int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Window returns the [start, end) instants covered by the filter.
func (f Filter) Window() (time.Time, time.Time) {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(f.From.Year(), f.From.Month(), f.From.Day(), 0, 0, 0, 0, loc)
	end := time.Date(f.To.Year(), f.To.Month(), f.To.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return start, end
}

// Paging returns the normalized limit and offset.
func (f Filter) Paging() (int, int) {
	page, limit := f.Page, f.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	return limit, (page - 1) * limit
}

// Store persists and reads audit rows.
type Store interface {
	Write(ctx context.Context, row *models.AuditLog) error
	Query(ctx context.Context, f Filter) ([]models.AuditLog, int64, error)
}
