package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/idempotency"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
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

func (r *recorder) all() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}

type stepClock struct{ at time.Time }

func (c *stepClock) Now() time.Time { return c.at }

var (
	clinic  = timezone.Location(6)
	visitOn = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	store        *memory.Store
	audit        *recorder
	clock        *stepClock
	deps         Deps
	aliya        models.Client
	bob          models.Client
	practitioner models.Practitioner
	consultation models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store: memory.New(),
		audit: &recorder{},
		clock: &stepClock{at: time.Date(2025, 3, 1, 9, 0, 0, 0, clinic)},
	}

	f.aliya = models.Client{FirstName: "Aliya", LastName: "Tekeyeva", Phone: "+77011234567", Active: true}
	require.NoError(t, f.store.CreateClient(ctx, &f.aliya))
	f.bob = models.Client{FirstName: "Bob", LastName: "Marley", Phone: "+77019876543", Active: true}
	require.NoError(t, f.store.CreateClient(ctx, &f.bob))

	f.practitioner = models.Practitioner{FirstName: "John", LastName: "Smith", Specialization: "therapist", Active: true}
	require.NoError(t, f.store.CreatePractitioner(ctx, &f.practitioner))

	f.consultation = models.Service{
		PractitionerID: f.practitioner.ID,
		Name:           "Consultation",
		Price:          decimal.NewFromInt(5000),
		Active:         true,
	}
	require.NoError(t, f.store.CreateService(ctx, &f.consultation))

	f.deps = Deps{
		Bookings: f.store,
		Clients:  f.store,
		Catalog:  f.store,
		Audit:    f.audit,
		Clock:    f.clock,
	}
	return f
}

func (f *fixture) input(clientID uint, hhmm string) CreateBookingInput {
	return CreateBookingInput{
		ActorID:        1,
		ClientID:       clientID,
		PractitionerID: f.practitioner.ID,
		ServiceID:      f.consultation.ID,
		Date:           visitOn,
		Time:           hhmm,
	}
}

func (f *fixture) create(t *testing.T, clientID uint, hhmm string) *models.Booking {
	t.Helper()
	b, err := NewCreateBooking(f.deps, DefaultPolicy()).Execute(context.Background(), f.input(clientID, hhmm))
	require.NoError(t, err)
	return b
}

func TestCreateBooking_ScenarioWithConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewCreateBooking(f.deps, DefaultPolicy())

	b, err := uc.Execute(ctx, f.input(f.aliya.ID, "10:00"))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusScheduled), b.Status)
	assert.Equal(t, "10:00:00", b.BookingTime)
	assert.Equal(t, DefaultSource, b.Source)
	assert.Equal(t, "unpaid", b.PaymentStatus)

	lines, err := f.store.ListLines(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Price.Equal(decimal.NewFromInt(5000)))

	total, err := f.store.TotalCost(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "5000.00", total.StringFixed(2))

	_, err = uc.Execute(ctx, f.input(f.bob.ID, "10:00"))
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))
	assert.True(t, httperr.IsBusiness(err, domain.CodeTimeConflict))
	assert.Contains(t, err.Error(), "Aliya Tekeyeva")

	events := f.audit.all()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionCreate, events[0].Action)
	assert.Equal(t, audit.TableBookings, events[0].Table)
	assert.Equal(t, b.ID, events[0].RecordID)
}

func TestCreateBooking_ValidationBeforeAnyWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewCreateBooking(f.deps, DefaultPolicy())

	in := f.input(0, "10:00")
	in.NewClient = &client.Input{}

	_, err := uc.Execute(ctx, in)
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))
	assert.Empty(t, f.audit.all())

	found, err := f.store.SearchClients(ctx, "", 100)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestCreateBooking_InputRules(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.deps, DefaultPolicy())

	cases := map[string]struct {
		mutate func(*CreateBookingInput)
		code   string
	}{
		"past date":      {func(in *CreateBookingInput) { in.Date = time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC) }, "date_in_past"},
		"beyond horizon": {func(in *CreateBookingInput) { in.Date = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }, "date_too_far"},
		"bad time":       {func(in *CreateBookingInput) { in.Time = "25:00" }, "invalid_time"},
		"off grid":       {func(in *CreateBookingInput) { in.Time = "10:07" }, "off_slot_grid"},
		"script notes":   {func(in *CreateBookingInput) { in.Notes = "<script>alert(1)</script>" }, "unsafe_notes"},
		"no client":      {func(in *CreateBookingInput) { in.ClientID = 0 }, "client_required"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := f.input(f.aliya.ID, "10:00")
			tc.mutate(&in)
			_, err := uc.Execute(context.Background(), in)
			assert.True(t, httperr.IsBusiness(err, tc.code), "%v", err)
		})
	}
	assert.Empty(t, f.audit.all())
}

func TestCreateBooking_HistoricalImportLiftsWindowAndGrid(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.deps, DefaultPolicy())

	in := f.input(f.aliya.ID, "09:07")
	in.Date = time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)
	in.HistoricalImport = true

	b, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "09:07:00", b.BookingTime)
}

func TestCreateBooking_LookupErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewCreateBooking(f.deps, DefaultPolicy())

	in := f.input(999, "10:00")
	_, err := uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "client_not_found"))
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	require.NoError(t, f.store.SetClientActive(ctx, f.bob.ID, false))
	_, err = uc.Execute(ctx, f.input(f.bob.ID, "10:00"))
	assert.True(t, httperr.IsBusiness(err, "client_inactive"))

	in = f.input(f.aliya.ID, "10:00")
	in.ServiceID = 999
	_, err = uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))
}

func TestCreateBooking_NewClientMatchedByPhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewCreateBooking(f.deps, DefaultPolicy())

	in := f.input(0, "11:00")
	in.NewClient = &client.Input{FirstName: "Aliya", Phone: "8 701 123 45 67"}
	b, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, f.aliya.ID, b.ClientID)

	in = f.input(0, "11:15")
	in.NewClient = &client.Input{FirstName: "Dana", LastName: "Ospanova", Phone: "+77770001122"}
	b, err = uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, f.aliya.ID, b.ClientID)
	assert.Equal(t, "Dana Ospanova", b.Client.FullName())

	var tables []string
	for _, ev := range f.audit.all() {
		tables = append(tables, ev.Table)
	}
	assert.Equal(t, []string{"bookings", "clients", "bookings"}, tables)
}

func TestCreateBooking_NewClientRolledBackOnConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, f.aliya.ID, "10:00")
	before := len(f.audit.all())

	in := f.input(0, "10:00")
	in.NewClient = &client.Input{FirstName: "Dana", LastName: "Ospanova", Phone: "+77770001122"}
	_, err := NewCreateBooking(f.deps, DefaultPolicy()).Execute(ctx, in)
	require.True(t, httperr.IsBusiness(err, domain.CodeTimeConflict))

	_, err = f.store.FindClientByPhone(ctx, "+77770001122")
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
	assert.Len(t, f.audit.all(), before)

	in.Time = "10:15"
	b, err := NewCreateBooking(f.deps, DefaultPolicy()).Execute(ctx, in)
	require.NoError(t, err)
	dana, err := f.store.FindClientByPhone(ctx, "+77770001122")
	require.NoError(t, err)
	assert.Equal(t, dana.ID, b.ClientID)
}

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.deps, DefaultPolicy())

	const n = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), f.input(f.aliya.ID, "14:30"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case httperr.IsBusiness(err, domain.CodeTimeConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestCreateBooking_IdempotentReplay(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture(t)
	f.deps.Guard = idempotency.New(rdb, time.Minute, nil)
	uc := NewCreateBooking(f.deps, DefaultPolicy())

	in := f.input(f.aliya.ID, "12:00")
	in.IdempotencyKey = "form-123"

	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := f.store.ListBookings(context.Background(), domain.ListFilter{From: visitOn, To: visitOn})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// the slot key is released after a keyless create
	plain := f.input(f.bob.ID, "12:15")
	_, err = uc.Execute(context.Background(), plain)
	require.NoError(t, err)
	assert.False(t, mr.Exists("clinic:idem:"+idempotency.SlotKey(f.practitioner.ID, visitOn, "12:15:00")))
}

func TestStatusChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t, f.aliya.ID, "10:00")

	started, err := NewStartBooking(f.deps).Execute(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusInProgress), started.Status)
	require.NotNil(t, started.StartedAt)

	f.clock.at = f.clock.at.Add(42*time.Minute + 30*time.Second)
	done, err := NewFinishBooking(f.deps).Execute(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), done.Status)
	require.NotNil(t, done.ActualDurationMinutes)
	assert.Equal(t, 42, *done.ActualDurationMinutes)

	_, err = NewCancelBooking(f.deps).Execute(ctx, 1, b.ID)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	stored, err := f.store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), stored.Status)

	var updates int
	for _, ev := range f.audit.all() {
		if ev.Action == audit.ActionUpdate {
			updates++
		}
	}
	assert.Equal(t, 2, updates)
}

func TestUpdateStatus_Override(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t, f.aliya.ID, "10:00")
	uc := NewUpdateBookingStatus(f.deps)

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, clinic)
	end := start.Add(42 * time.Minute)

	got, err := uc.Execute(ctx, UpdateStatusInput{
		ActorID: 1, BookingID: b.ID, Status: "completed",
		StartedAt: &start, EndedAt: &end,
	})
	require.NoError(t, err)
	require.NotNil(t, got.ActualDurationMinutes)
	assert.Equal(t, 42, *got.ActualDurationMinutes)

	_, err = uc.Execute(ctx, UpdateStatusInput{BookingID: b.ID, Status: "done"})
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))

	_, err = uc.Execute(ctx, UpdateStatusInput{BookingID: 999, Status: "cancelled"})
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))

	events := f.audit.all()
	last := events[len(events)-1]
	assert.Equal(t, audit.ActionUpdate, last.Action)
	assert.Equal(t, "scheduled", last.Before.(map[string]any)["status"])
	assert.Equal(t, "completed", last.After.(map[string]any)["status"])
}

func TestUpdateStatus_EndBeforeStoredStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t, f.aliya.ID, "10:00")

	started, err := NewStartBooking(f.deps).Execute(ctx, 1, b.ID)
	require.NoError(t, err)
	events := len(f.audit.all())

	early := started.StartedAt.Add(-10 * time.Minute)
	_, err = NewUpdateBookingStatus(f.deps).Execute(ctx, UpdateStatusInput{
		ActorID: 1, BookingID: b.ID, Status: "completed", EndedAt: &early,
	})
	assert.True(t, httperr.IsBusiness(err, domain.CodeInvalidInterval))

	stored, err := f.store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusInProgress), stored.Status)
	assert.Nil(t, stored.EndedAt)
	assert.Nil(t, stored.ActualDurationMinutes)
	assert.Len(t, f.audit.all(), events)
}

func TestCancelFreesSlotAndReoccupyConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.create(t, f.aliya.ID, "10:00")

	_, err := NewCancelBooking(f.deps).Execute(ctx, 1, first.ID)
	require.NoError(t, err)

	f.create(t, f.bob.ID, "10:00")

	_, err = NewUpdateBookingStatus(f.deps).Execute(ctx, UpdateStatusInput{BookingID: first.ID, Status: "scheduled"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeTimeConflict))
}

func TestDeleteBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t, f.aliya.ID, "10:00")
	uc := NewDeleteBooking(f.deps)

	ok, err := uc.Execute(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.Execute(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	total, err := f.store.TotalCost(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	events := f.audit.all()
	assert.Equal(t, audit.ActionDelete, events[len(events)-1].Action)
	assert.Len(t, events, 2)
}

func TestListBookingsByDateRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i, hhmm := range []string{"15:00", "09:00", "12:30"} {
		in := f.input(f.aliya.ID, hhmm)
		in.Date = visitOn.AddDate(0, 0, i%2)
		_, err := NewCreateBooking(f.deps, DefaultPolicy()).Execute(ctx, in)
		require.NoError(t, err, fmt.Sprint(i))
	}

	uc := NewListBookingsByDateRange(f.store)

	day, err := uc.Execute(ctx, ListInput{From: visitOn, To: visitOn})
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "12:30:00", day[0].Time)
	assert.Equal(t, "15:00:00", day[1].Time)
	assert.Equal(t, "Aliya Tekeyeva", day[0].ClientName)
	assert.Equal(t, "John Smith", day[0].PractitionerName)

	both, err := uc.Execute(ctx, ListInput{From: visitOn, To: visitOn.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, both, 3)

	other := uint(999)
	none, err := uc.Execute(ctx, ListInput{From: visitOn, To: visitOn, PractitionerID: &other})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = uc.Execute(ctx, ListInput{From: visitOn, To: visitOn.AddDate(0, 0, -1)})
	assert.True(t, httperr.IsBusiness(err, "invalid_date_range"))
}
