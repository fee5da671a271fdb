package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const searchLimit = 10

// Deps are the collaborators of the client registry use cases.
// Log may be nil.
type Deps struct {
	Clients domain.Repository
	Audit   audit.Recorder
	Clock   timezone.Clock
	Log     *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d Deps) recorder() audit.Recorder {
	if d.Audit == nil {
		return audit.Nop{}
	}
	return d.Audit
}

func snapshot(c *models.Client) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"birth_date": c.BirthDate,
		"phone":      c.Phone,
		"email":      c.Email,
		"active":     c.Active,
	}
}

func notFound(err error) error {
	if httperr.IsKind(err, httperr.KindNotFound) {
		return httperr.ErrNotFound("client_not_found", "Client not found.")
	}
	return err
}

type RegisterClient struct {
	deps Deps
}

func NewRegisterClient(deps Deps) *RegisterClient {
	return &RegisterClient{deps: deps}
}

func (uc *RegisterClient) Execute(ctx context.Context, actorID uint, in domain.Input) (*models.Client, error) {
	c, err := in.Normalize(timezone.Today(uc.deps.Clock))
	if err != nil {
		return nil, err
	}

	if err := uc.deps.Clients.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	uc.deps.recorder().Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionCreate,
		Table:    audit.TableClients,
		RecordID: c.ID,
		After:    snapshot(c),
	})
	uc.deps.logger().Info("client registered",
		zap.Uint("client_id", c.ID),
		zap.Uint("actor_id", actorID),
	)
	return c, nil
}

// DeactivateClient is the only removal offered; bookings keep referencing
// the row.
type DeactivateClient struct {
	deps Deps
}

func NewDeactivateClient(deps Deps) *DeactivateClient {
	return &DeactivateClient{deps: deps}
}

func (uc *DeactivateClient) Execute(ctx context.Context, actorID, id uint) (*models.Client, error) {
	before, err := uc.deps.Clients.GetClient(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !before.Active {
		return before, nil
	}

	if err := uc.deps.Clients.SetClientActive(ctx, id, false); err != nil {
		return nil, notFound(err)
	}
	after := *before
	after.Active = false

	uc.deps.recorder().Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionUpdate,
		Table:    audit.TableClients,
		RecordID: id,
		Before:   snapshot(before),
		After:    snapshot(&after),
	})
	uc.deps.logger().Info("client deactivated", zap.Uint("client_id", id))
	return &after, nil
}

// Lookup groups the read-only registry queries.
type Lookup struct {
	deps Deps
}

func NewLookup(deps Deps) *Lookup {
	return &Lookup{deps: deps}
}

func (uc *Lookup) Get(ctx context.Context, id uint) (*models.Client, error) {
	c, err := uc.deps.Clients.GetClient(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// FindByPhone accepts any spelling of the phone that normalizes.
func (uc *Lookup) FindByPhone(ctx context.Context, phone string) (*models.Client, error) {
	normalized, err := validators.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	c, err := uc.deps.Clients.FindClientByPhone(ctx, normalized)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (uc *Lookup) Search(ctx context.Context, query string) ([]models.Client, error) {
	q, err := validators.ValidateSearchQuery(query)
	if err != nil {
		return nil, err
	}
	out, err := uc.deps.Clients.SearchClients(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Client{}
	}
	return out, nil
}
