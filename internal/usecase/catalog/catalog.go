package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// Service groups the catalog operations. The catalog is read-mostly, so one
// type carries both the writes and the lookups.
type Service struct {
	repo  domain.Repository
	audit audit.Recorder
	log   *zap.Logger
}

func NewService(repo domain.Repository, rec audit.Recorder, log *zap.Logger) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, audit: rec, log: log}
}

func notFoundAs(err error, code, message string) error {
	if httperr.IsKind(err, httperr.KindNotFound) {
		return httperr.ErrNotFound(code, message)
	}
	return err
}

func (s *Service) CreatePractitioner(ctx context.Context, actorID uint, in domain.PractitionerInput) (*models.Practitioner, error) {
	p, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreatePractitioner(ctx, p); err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionCreate,
		Table:    audit.TablePractitioner,
		RecordID: p.ID,
		After:    p,
	})
	s.log.Info("practitioner created", zap.Uint("practitioner_id", p.ID))
	return p, nil
}

func (s *Service) GetPractitioner(ctx context.Context, id uint) (*models.Practitioner, error) {
	p, err := s.repo.GetPractitioner(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "practitioner_not_found", "Practitioner not found.")
	}
	return p, nil
}

func (s *Service) ListPractitioners(ctx context.Context) ([]models.Practitioner, error) {
	out, err := s.repo.ListPractitioners(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Practitioner{}
	}
	return out, nil
}

// CreateService requires an active owning practitioner.
func (s *Service) CreateService(ctx context.Context, actorID uint, in domain.ServiceInput) (*models.Service, error) {
	svc, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	p, err := s.GetPractitioner(ctx, svc.PractitionerID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, httperr.ErrValidation("practitioner_inactive", "Practitioner is deactivated.")
	}

	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionCreate,
		Table:    audit.TableServices,
		RecordID: svc.ID,
		After: map[string]any{
			"id":               svc.ID,
			"practitioner_id":  svc.PractitionerID,
			"name":             svc.Name,
			"price":            svc.Price.StringFixed(2),
			"duration_minutes": svc.DurationMinutes,
		},
	})
	s.log.Info("service created",
		zap.Uint("service_id", svc.ID),
		zap.Uint("practitioner_id", svc.PractitionerID),
		zap.String("price", svc.Price.StringFixed(2)),
	)
	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id uint) (*models.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "service_not_found", "Service not found.")
	}
	return svc, nil
}

func (s *Service) ListServices(ctx context.Context, practitionerID *uint) ([]models.Service, error) {
	out, err := s.repo.ListServices(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Service{}
	}
	return out, nil
}
