package booking

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/idempotency"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

var tracer = otel.Tracer("clinic.usecase.booking")

// Deps are the collaborators shared by the booking use cases.
// Guard, Log and Metrics may be nil.
type Deps struct {
	Bookings domain.Repository
	Clients  client.Repository
	Catalog  catalog.Repository
	Guard    *idempotency.Guard
	Audit    audit.Recorder
	Clock    timezone.Clock
	Log      *zap.Logger
	Metrics  *metrics.Metrics
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

// snapshot is the audit view of a booking row.
func snapshot(b *models.Booking) map[string]any {
	return map[string]any{
		"id":                      b.ID,
		"client_id":               b.ClientID,
		"practitioner_id":         b.PractitionerID,
		"service_id":              b.ServiceID,
		"booking_date":            b.BookingDate.Format(timezone.DateLayout),
		"booking_time":            b.BookingTime,
		"status":                  b.Status,
		"payment_status":          b.PaymentStatus,
		"notes":                   b.Notes,
		"source":                  b.Source,
		"started_at":              b.StartedAt,
		"ended_at":                b.EndedAt,
		"actual_duration_minutes": b.ActualDurationMinutes,
	}
}
