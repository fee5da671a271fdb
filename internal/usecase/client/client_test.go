package client

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

type recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorder) Record(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func newDeps() (Deps, *recorder) {
	rec := &recorder{}
	return Deps{
		Clients: memory.New(),
		Audit:   rec,
		Clock:   timezone.FixedClock{At: time.Date(2025, 3, 1, 9, 0, 0, 0, timezone.Location(6))},
	}, rec
}

func TestRegisterClient(t *testing.T) {
	ctx := context.Background()
	deps, rec := newDeps()
	uc := NewRegisterClient(deps)

	c, err := uc.Execute(ctx, 7, domain.Input{FirstName: "Aliya", LastName: "Tekeyeva", Phone: "8 701 123 45 67"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "+77011234567", c.Phone)

	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.ActionCreate, rec.events[0].Action)
	assert.Equal(t, audit.TableClients, rec.events[0].Table)
	assert.Equal(t, uint(7), rec.events[0].ActorID)

	_, err = uc.Execute(ctx, 7, domain.Input{FirstName: "Other", Phone: "+7 (701) 123-45-67"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeDuplicatePhone))
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))
	assert.Len(t, rec.events, 1)
}

func TestRegisterClient_ValidationWritesNothing(t *testing.T) {
	ctx := context.Background()
	deps, rec := newDeps()

	_, err := NewRegisterClient(deps).Execute(ctx, 1, domain.Input{})
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))
	assert.Empty(t, rec.events)

	found, err := NewLookup(deps).Search(ctx, "Al")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDeactivateClient(t *testing.T) {
	ctx := context.Background()
	deps, rec := newDeps()

	c, err := NewRegisterClient(deps).Execute(ctx, 1, domain.Input{FirstName: "Aliya", Phone: "+77011234567"})
	require.NoError(t, err)

	uc := NewDeactivateClient(deps)
	out, err := uc.Execute(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.False(t, out.Active)
	require.Len(t, rec.events, 2)
	assert.Equal(t, audit.ActionUpdate, rec.events[1].Action)
	assert.Equal(t, true, rec.events[1].Before.(map[string]any)["active"])

	// already inactive: no second audit entry
	_, err = uc.Execute(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Len(t, rec.events, 2)

	_, err = uc.Execute(ctx, 1, 999)
	assert.True(t, httperr.IsBusiness(err, "client_not_found"))
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	deps, _ := newDeps()
	reg := NewRegisterClient(deps)
	lookup := NewLookup(deps)

	for i, name := range []string{"Aliya", "Alibek", "Dana"} {
		_, err := reg.Execute(ctx, 1, domain.Input{FirstName: name, LastName: "Nurova", Phone: fmt.Sprintf("+7701000000%d", i)})
		require.NoError(t, err)
	}

	c, err := lookup.FindByPhone(ctx, "8 701 000 00 02")
	require.NoError(t, err)
	assert.Equal(t, "Dana", c.FirstName)

	got, err := lookup.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Phone, got.Phone)

	_, err = lookup.FindByPhone(ctx, "+77019999999")
	assert.True(t, httperr.IsBusiness(err, "client_not_found"))
	_, err = lookup.FindByPhone(ctx, "123")
	assert.True(t, httperr.IsBusiness(err, "invalid_phone"))

	found, err := lookup.Search(ctx, "ali")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = lookup.Search(ctx, "+770100")
	require.NoError(t, err)
	assert.Len(t, found, 3)

	_, err = lookup.Search(ctx, "a")
	assert.True(t, httperr.IsBusiness(err, "query_too_short"))
	_, err = lookup.Search(ctx, "x; DROP TABLE clients")
	assert.True(t, httperr.IsBusiness(err, "unsafe_query"))
}
