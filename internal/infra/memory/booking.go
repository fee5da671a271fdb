package memory

import (
	"context"
	"sort"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func (s *Store) CreateWithServiceLine(
	_ context.Context,
	b *models.Booking,
	line *models.ServiceLine,
	newClient *models.Client,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[b.ClientID]; !ok && newClient == nil {
		return invalidReference("fk_bookings_client")
	}
	if _, ok := s.practitioners[b.PractitionerID]; !ok {
		return invalidReference("fk_bookings_practitioner")
	}
	if _, ok := s.services[line.ServiceID]; !ok {
		return invalidReference("fk_service_lines_service")
	}

	if holder, ok := s.occupant(b); ok {
		return domain.SlotConflict(holder.ID, s.clients[holder.ClientID].FullName())
	}

	now := s.Now()
	if newClient != nil {
		if err := s.insertClient(newClient, now); err != nil {
			return err
		}
		b.ClientID = newClient.ID
	}

	b.ID = s.id()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.bookings[b.ID] = bare(*b)

	line.ID = s.id()
	line.BookingID = b.ID
	line.CreatedAt = now
	s.lines[line.ID] = bareLine(*line)
	return nil
}

// occupant returns another occupying booking on b's slot. mu must be held.
func (s *Store) occupant(b *models.Booking) (models.Booking, bool) {
	for _, other := range s.bookings {
		if other.ID == b.ID {
			continue
		}
		if other.PractitionerID == b.PractitionerID &&
			other.BookingDate.Equal(b.BookingDate) &&
			other.BookingTime == b.BookingTime &&
			domain.Status(other.Status).IsOccupying() {
			return other, true
		}
	}
	return models.Booking{}, false
}

func (s *Store) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, notFound("Booking")
	}
	out := s.hydrate(b)
	return &out, nil
}

// hydrate fills the preloaded associations. mu must be held.
func (s *Store) hydrate(b models.Booking) models.Booking {
	b.Client = s.clients[b.ClientID]
	b.Practitioner = s.practitioners[b.PractitionerID]
	b.Service = s.services[b.ServiceID]
	return b
}

func (s *Store) ListBookings(_ context.Context, f domain.ListFilter) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.BookingDate.Before(f.From) || b.BookingDate.After(f.To) {
			continue
		}
		if f.PractitionerID != nil && b.PractitionerID != *f.PractitionerID {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, b.Status) {
			continue
		}
		if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
			continue
		}
		out = append(out, s.hydrate(b))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.BookingDate.Equal(b.BookingDate) {
			return a.BookingDate.Before(b.BookingDate)
		}
		if a.BookingTime != b.BookingTime {
			return a.BookingTime < b.BookingTime
		}
		return a.ID < b.ID
	})
	return out, nil
}

func hasStatus(statuses []domain.Status, s string) bool {
	for _, st := range statuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

func (s *Store) SaveStatus(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.bookings[b.ID]
	if !ok {
		return notFound("Booking")
	}

	if domain.Status(b.Status).IsOccupying() {
		if _, taken := s.occupant(&cur); taken {
			return httperr.ErrConflict(domain.CodeTimeConflict, "Practitioner is already booked at this time.")
		}
	}

	cur.Status = b.Status
	cur.StartedAt = b.StartedAt
	cur.EndedAt = b.EndedAt
	cur.ActualDurationMinutes = b.ActualDurationMinutes
	cur.UpdatedAt = s.Now()
	s.bookings[b.ID] = cur
	return nil
}

func (s *Store) DeleteBooking(_ context.Context, id uint) (*models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, false, nil
	}

	for lineID, l := range s.lines {
		if l.BookingID == id {
			s.dropLine(lineID)
		}
	}
	delete(s.bookings, id)
	return &b, true, nil
}

func bare(b models.Booking) models.Booking {
	b.Client = models.Client{}
	b.Practitioner = models.Practitioner{}
	b.Service = models.Service{}
	b.ServiceLines = nil
	return b
}

var _ domain.Repository = (*Store)(nil)
