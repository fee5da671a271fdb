package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// --------------------------------------------------
// Clients
// --------------------------------------------------

func (s *Store) CreateClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertClient(c, s.Now())
}

// insertClient enforces the unique phone. mu must be held.
func (s *Store) insertClient(c *models.Client, now time.Time) error {
	for _, other := range s.clients {
		if other.Phone == c.Phone {
			return client.DuplicatePhone(c.Phone)
		}
	}

	c.ID = s.id()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.clients[c.ID] = *c
	return nil
}

func (s *Store) GetClient(_ context.Context, id uint) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, notFound("Client")
	}
	return &c, nil
}

func (s *Store) FindClientByPhone(_ context.Context, phone string) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.Phone == phone {
			return &c, nil
		}
	}
	return nil, notFound("Client")
}

func (s *Store) SearchClients(_ context.Context, query string, limit int) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)

	var out []models.Client
	for _, c := range s.clients {
		if strings.Contains(strings.ToLower(c.FirstName), q) ||
			strings.Contains(strings.ToLower(c.LastName), q) ||
			strings.Contains(c.Phone, query) {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SetClientActive(_ context.Context, id uint, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return notFound("Client")
	}
	c.Active = active
	c.UpdatedAt = s.Now()
	s.clients[id] = c
	return nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (s *Store) CreatePractitioner(_ context.Context, p *models.Practitioner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	p.ID = s.id()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.practitioners[p.ID] = *p
	return nil
}

func (s *Store) GetPractitioner(_ context.Context, id uint) (*models.Practitioner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.practitioners[id]
	if !ok {
		return nil, notFound("Practitioner")
	}
	return &p, nil
}

func (s *Store) ListPractitioners(_ context.Context) ([]models.Practitioner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Practitioner
	for _, p := range s.practitioners {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (s *Store) CreateService(_ context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.practitioners[svc.PractitionerID]; !ok {
		return invalidReference("fk_services_practitioner")
	}
	now := s.Now()
	svc.ID = s.id()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	svc.Practitioner = models.Practitioner{}
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) GetService(_ context.Context, id uint) (*models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, notFound("Service")
	}
	return &svc, nil
}

func (s *Store) ListServices(_ context.Context, practitionerID *uint) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Service
	for _, svc := range s.services {
		if !svc.Active {
			continue
		}
		if practitionerID != nil && svc.PractitionerID != *practitionerID {
			continue
		}
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.users {
		if other.Username == u.Username {
			return httperr.ErrConflict("duplicate", "idx_users_username")
		}
	}
	now := s.Now()
	u.ID = s.id()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("User")
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, notFound("User")
}

func (s *Store) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return notFound("User")
	}
	u.LastLogin = &at
	s.users[id] = u
	return nil
}

var (
	_ client.Repository  = (*Store)(nil)
	_ catalog.Repository = (*Store)(nil)
	_ user.Repository    = (*Store)(nil)
)
