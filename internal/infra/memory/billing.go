package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func (s *Store) AttachLine(_ context.Context, line *models.ServiceLine) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[line.BookingID]; !ok {
		return false, invalidReference("fk_bookings_service_lines")
	}
	if _, ok := s.services[line.ServiceID]; !ok {
		return false, invalidReference("fk_service_lines_service")
	}
	for _, l := range s.lines {
		if l.BookingID == line.BookingID && l.ServiceID == line.ServiceID {
			return false, nil
		}
	}

	line.ID = s.id()
	line.CreatedAt = s.Now()
	s.lines[line.ID] = bareLine(*line)
	return true, nil
}

func (s *Store) DetachLine(_ context.Context, bookingID, serviceID uint) (*models.ServiceLine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.lines {
		if l.BookingID != bookingID || l.ServiceID != serviceID {
			continue
		}
		l.Payments = s.linePayments(id)
		s.dropLine(id)
		return &l, true, nil
	}
	return nil, false, nil
}

// linePayments returns the payments of a line ordered by id. mu must be held.
func (s *Store) linePayments(lineID uint) []models.Payment {
	var out []models.Payment
	for _, p := range s.payments {
		if p.ServiceLineID == lineID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// dropLine deletes a line and its payments. mu must be held.
func (s *Store) dropLine(lineID uint) {
	for id, p := range s.payments {
		if p.ServiceLineID == lineID {
			delete(s.payments, id)
		}
	}
	delete(s.lines, lineID)
}

func (s *Store) GetLine(_ context.Context, id uint) (*models.ServiceLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[id]
	if !ok {
		return nil, notFound("Service line")
	}
	return &l, nil
}

func (s *Store) UpdateLinePrice(_ context.Context, id uint, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[id]
	if !ok {
		return notFound("Service line")
	}
	l.Price = price
	s.lines[id] = l
	return nil
}

func (s *Store) ListLines(_ context.Context, bookingID uint) ([]domain.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookingLines(bookingID), nil
}

// bookingLines must be called with mu held.
func (s *Store) bookingLines(bookingID uint) []domain.Line {
	var out []domain.Line
	for _, l := range s.lines {
		if l.BookingID != bookingID {
			continue
		}
		svc := s.services[l.ServiceID]
		paid := decimal.Zero
		for _, p := range s.linePayments(l.ID) {
			paid = paid.Add(p.Amount)
		}
		out = append(out, domain.Line{
			ID:           l.ID,
			BookingID:    l.BookingID,
			ServiceID:    l.ServiceID,
			ServiceName:  svc.Name,
			CatalogPrice: svc.Price,
			Price:        l.Price,
			Paid:         paid,
			CreatedAt:    l.CreatedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceName != out[j].ServiceName {
			return out[i].ServiceName < out[j].ServiceName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) TotalCost(_ context.Context, bookingID uint) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookingCost(bookingID), nil
}

// bookingCost must be called with mu held.
func (s *Store) bookingCost(bookingID uint) decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		if l.BookingID == bookingID {
			total = total.Add(l.Price)
		}
	}
	return total
}

func (s *Store) AddPayments(_ context.Context, payments []*models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertPayments(payments)
}

// insertPayments is all-or-nothing. mu must be held.
func (s *Store) insertPayments(payments []*models.Payment) error {
	for _, p := range payments {
		if _, ok := s.lines[p.ServiceLineID]; !ok {
			return invalidReference("fk_service_lines_payments")
		}
		if !p.Amount.IsPositive() {
			return checkViolation("chk_payments_amount")
		}
	}
	for _, p := range payments {
		p.ID = s.id()
		s.payments[p.ID] = *p
	}
	return nil
}

func (s *Store) DeletePayment(_ context.Context, id uint) (*models.Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, false, nil
	}
	delete(s.payments, id)
	return &p, true, nil
}

// bookingPayments must be called with mu held.
func (s *Store) bookingPayments(bookingID uint) []models.Payment {
	var out []models.Payment
	for _, p := range s.payments {
		if l, ok := s.lines[p.ServiceLineID]; ok && l.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) TotalPaid(_ context.Context, bookingID uint) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookingPaid(bookingID), nil
}

// bookingPaid must be called with mu held.
func (s *Store) bookingPaid(bookingID uint) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.bookingPayments(bookingID) {
		total = total.Add(p.Amount)
	}
	return total
}

func (s *Store) RecordPayments(
	_ context.Context,
	bookingID uint,
	plan domain.PaymentPlan,
) ([]*models.Payment, domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[bookingID]; !ok {
		return nil, domain.Position{}, notFound("Booking")
	}

	before := domain.NewPosition(s.bookingPaid(bookingID), s.bookingCost(bookingID))
	payments, err := plan(s.bookingLines(bookingID), before)
	if err != nil {
		return nil, domain.Position{}, err
	}
	if err := s.insertPayments(payments); err != nil {
		return nil, domain.Position{}, err
	}
	return payments, s.cacheStatus(bookingID), nil
}

func (s *Store) SummaryByMethod(_ context.Context, bookingID uint) ([]domain.MethodTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := map[string]decimal.Decimal{}
	for _, p := range s.bookingPayments(bookingID) {
		sums[p.Method] = sums[p.Method].Add(p.Amount)
	}

	out := make([]domain.MethodTotal, 0, len(sums))
	for m, total := range sums {
		out = append(out, domain.MethodTotal{Method: domain.Method(m), Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out, nil
}

func (s *Store) RefreshPaymentStatus(_ context.Context, bookingID uint) (domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[bookingID]; !ok {
		return domain.Position{}, notFound("Booking")
	}
	return s.cacheStatus(bookingID), nil
}

// cacheStatus recomputes and stores the booking's payment status. mu must be
// held and the booking must exist.
func (s *Store) cacheStatus(bookingID uint) domain.Position {
	pos := domain.NewPosition(s.bookingPaid(bookingID), s.bookingCost(bookingID))
	b := s.bookings[bookingID]
	b.PaymentStatus = string(pos.Status)
	s.bookings[bookingID] = b
	return pos
}

func bareLine(l models.ServiceLine) models.ServiceLine {
	l.Service = models.Service{}
	l.Payments = nil
	return l
}

var _ domain.Repository = (*Store)(nil)
