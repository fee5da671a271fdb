// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same keys, cascades and slot rule as the
// PostgreSQL schema and is used by tests and by `serve --memory`.
package memory

import (
	"sync"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type Store struct {
	mu     sync.Mutex
	nextID uint

	clients       map[uint]models.Client
	practitioners map[uint]models.Practitioner
	services      map[uint]models.Service
	bookings      map[uint]models.Booking
	lines         map[uint]models.ServiceLine
	payments      map[uint]models.Payment
	users         map[uint]models.User
	audit         []models.AuditLog

	// Now stamps created rows.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		clients:       map[uint]models.Client{},
		practitioners: map[uint]models.Practitioner{},
		services:      map[uint]models.Service{},
		bookings:      map[uint]models.Booking{},
		lines:         map[uint]models.ServiceLine{},
		payments:      map[uint]models.Payment{},
		users:         map[uint]models.User{},
		Now:           time.Now,
	}
}

// id must be called with mu held.
func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func notFound(what string) error {
	return httperr.ErrNotFound("not_found", what+" not found.")
}

func invalidReference(constraint string) error {
	return httperr.BusinessError{
		Kind:    httperr.KindValidation,
		Code:    "invalid_reference",
		Message: constraint,
	}
}

func checkViolation(constraint string) error {
	return httperr.BusinessError{
		Kind:    httperr.KindValidation,
		Code:    "check_violation",
		Message: constraint,
	}
}
