package booking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/idempotency"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const DefaultSource = "returning_visit"

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ActorID uint

	// Either an existing client, or a new one registered (or matched by
	// phone) on the fly.
	ClientID  uint
	NewClient *client.Input

	PractitionerID uint
	ServiceID      uint

	Date time.Time // calendar date, see timezone.Date
	Time string    // HH:MM or HH:MM:SS

	Notes  string
	Source string

	// HistoricalImport lifts the date window and the slot grid.
	HistoricalImport bool

	IdempotencyKey string
}

type Policy struct {
	SlotMinutes int
	HorizonDays int
}

func DefaultPolicy() Policy {
	return Policy{SlotMinutes: 15, HorizonDays: 365}
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	deps   Deps
	policy Policy
}

func NewCreateBooking(deps Deps, policy Policy) *CreateBooking {
	return &CreateBooking{deps: deps, policy: policy}
}

type validated struct {
	hms       string
	notes     string
	source    string
	newClient *models.Client
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	ctx, span := tracer.Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("clinic.practitioner_id", int64(in.PractitionerID)),
		attribute.String("clinic.booking_date", in.Date.Format(timezone.DateLayout)),
		attribute.String("clinic.booking_time", in.Time),
	)

	b, err := uc.execute(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(httperr.KindOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.Int64("clinic.booking_id", int64(b.ID)))
	return b, nil
}

func (uc *CreateBooking) execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// 1. Input (no store access)
	// --------------------------------------------------
	v, err := uc.validate(in)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Practitioner / service / client
	// --------------------------------------------------
	practitioner, err := uc.deps.Catalog.GetPractitioner(ctx, in.PractitionerID)
	if err != nil {
		return nil, notFoundAs(err, "practitioner_not_found", "Practitioner not found.")
	}
	if !practitioner.Active {
		return nil, httperr.ErrValidation("practitioner_inactive", "Practitioner is not active.")
	}

	service, err := uc.deps.Catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, notFoundAs(err, "service_not_found", "Service not found.")
	}
	if !service.Active {
		return nil, httperr.ErrValidation("service_inactive", "Service is not active.")
	}

	cl, register, err := uc.resolveClient(ctx, in, v.newClient)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. In-flight marker
	// --------------------------------------------------
	key := in.IdempotencyKey
	if key == "" {
		key = idempotency.SlotKey(in.PractitionerID, in.Date, v.hms)
	}

	replayID, err := uc.deps.Guard.Begin(ctx, key)
	if err != nil {
		return nil, err
	}
	if replayID != 0 {
		uc.deps.logger().Info("booking replayed",
			zap.String("idempotency_key", key),
			zap.Uint("booking_id", replayID),
		)
		return uc.deps.Bookings.GetBooking(ctx, replayID)
	}

	// --------------------------------------------------
	// 4. Conflict-checked insert of booking + first line
	// --------------------------------------------------
	// A client unknown by phone is inserted with the booking, so a taken
	// slot leaves no client behind.
	var newClient *models.Client
	if register {
		newClient = cl
	}

	b := &models.Booking{
		ClientID:       cl.ID,
		PractitionerID: practitioner.ID,
		ServiceID:      service.ID,
		BookingDate:    timezone.Date(in.Date),
		BookingTime:    v.hms,
		Status:         string(domain.InitialStatus()),
		PaymentStatus:  string(billing.PaymentUnpaid),
		Notes:          v.notes,
		Source:         v.source,
	}
	line := &models.ServiceLine{
		ServiceID: service.ID,
		Price:     service.Price,
	}

	if err := uc.deps.Bookings.CreateWithServiceLine(ctx, b, line, newClient); err != nil {
		uc.deps.Guard.Abort(ctx, key)
		if httperr.IsBusiness(err, domain.CodeTimeConflict) {
			uc.deps.Metrics.BookingConflict()
		}
		return nil, err
	}

	if in.IdempotencyKey != "" {
		uc.deps.Guard.Complete(ctx, key, b.ID)
	} else {
		uc.deps.Guard.Abort(ctx, key)
	}

	b.Client = *cl
	b.Practitioner = *practitioner
	b.Service = *service

	// --------------------------------------------------
	// 5. Audit
	// --------------------------------------------------
	if newClient != nil {
		uc.deps.recorder().Record(audit.Event{
			ActorID:  in.ActorID,
			Action:   audit.ActionCreate,
			Table:    audit.TableClients,
			RecordID: newClient.ID,
			After:    newClient,
		})
	}
	uc.deps.recorder().Record(audit.Event{
		ActorID:  in.ActorID,
		Action:   audit.ActionCreate,
		Table:    audit.TableBookings,
		RecordID: b.ID,
		After:    snapshot(b),
	})
	uc.deps.Metrics.BookingCreated(b.Source)
	uc.deps.logger().Info("booking created",
		zap.Uint("booking_id", b.ID),
		zap.Uint("practitioner_id", b.PractitionerID),
		zap.Uint("client_id", b.ClientID),
		zap.String("date", b.BookingDate.Format(timezone.DateLayout)),
		zap.String("time", b.BookingTime),
		zap.Uint("service_line_id", line.ID),
	)

	return b, nil
}

func (uc *CreateBooking) validate(in CreateBookingInput) (validated, error) {
	var v validated

	if in.NewClient == nil && in.ClientID == 0 {
		return v, httperr.ErrValidation("client_required", "Client is required.")
	}
	if in.NewClient != nil {
		c, err := in.NewClient.Normalize(timezone.Today(uc.deps.Clock))
		if err != nil {
			return v, err
		}
		v.newClient = c
	}
	if in.PractitionerID == 0 {
		return v, httperr.ErrValidation("practitioner_required", "Practitioner is required.")
	}
	if in.ServiceID == 0 {
		return v, httperr.ErrValidation("service_required", "Service is required.")
	}

	if in.Date.IsZero() {
		return v, httperr.ErrValidation("date_required", "Booking date is required.")
	}
	if !in.HistoricalImport {
		today := timezone.Today(uc.deps.Clock)
		if err := validators.ValidateBookingDate(timezone.Date(in.Date), today, uc.policy.HorizonDays); err != nil {
			return v, err
		}
	}

	hms, err := validators.ParseTimeOfDay(in.Time)
	if err != nil {
		return v, err
	}
	if !in.HistoricalImport && !validators.OnSlotGrid(hms, uc.policy.SlotMinutes) {
		return v, httperr.ErrValidation("off_slot_grid", "Time must fall on the booking grid.")
	}
	v.hms = hms

	if v.notes, err = validators.ValidateNotes(in.Notes); err != nil {
		return v, err
	}
	if v.source, err = validators.ValidateSource(in.Source, DefaultSource); err != nil {
		return v, err
	}
	return v, nil
}

// resolveClient loads the existing client, or matches the new one by phone.
// register is true when fresh is unknown and must be inserted with the
// booking.
func (uc *CreateBooking) resolveClient(
	ctx context.Context,
	in CreateBookingInput,
	fresh *models.Client,
) (cl *models.Client, register bool, err error) {

	if fresh == nil {
		cl, err := uc.deps.Clients.GetClient(ctx, in.ClientID)
		if err != nil {
			return nil, false, notFoundAs(err, "client_not_found", "Client not found.")
		}
		if !cl.Active {
			return nil, false, httperr.ErrValidation("client_inactive", "Client is deactivated.")
		}
		return cl, false, nil
	}

	cl, err = uc.deps.Clients.FindClientByPhone(ctx, fresh.Phone)
	switch {
	case err == nil:
		if !cl.Active {
			return nil, false, httperr.ErrValidation("client_inactive", "Client is deactivated.")
		}
		return cl, false, nil
	case !httperr.IsKind(err, httperr.KindNotFound):
		return nil, false, err
	}
	return fresh, true, nil
}

// notFoundAs renames a store not-found error; other errors pass through.
func notFoundAs(err error, code, message string) error {
	if httperr.IsKind(err, httperr.KindNotFound) {
		return httperr.ErrNotFound(code, message)
	}
	return err
}
