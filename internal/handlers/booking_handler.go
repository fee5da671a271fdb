package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	ucBooking "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create       *ucBooking.CreateBooking
	updateStatus *ucBooking.UpdateBookingStatus
	start        *ucBooking.TransitionBooking
	finish       *ucBooking.TransitionBooking
	noShow       *ucBooking.TransitionBooking
	cancel       *ucBooking.TransitionBooking
	remove       *ucBooking.DeleteBooking
	list         *ucBooking.ListBookingsByDateRange
	get          *ucBooking.GetBooking
}

func NewBookingHandler(deps ucBooking.Deps, policy ucBooking.Policy) *BookingHandler {
	return &BookingHandler{
		create:       ucBooking.NewCreateBooking(deps, policy),
		updateStatus: ucBooking.NewUpdateBookingStatus(deps),
		start:        ucBooking.NewStartBooking(deps),
		finish:       ucBooking.NewFinishBooking(deps),
		noShow:       ucBooking.NewMarkNoShow(deps),
		cancel:       ucBooking.NewCancelBooking(deps),
		remove:       ucBooking.NewDeleteBooking(deps),
		list:         ucBooking.NewListBookingsByDateRange(deps.Bookings),
		get:          ucBooking.NewGetBooking(deps.Bookings),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type NewClientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

func (r NewClientRequest) input(c *gin.Context) (client.Input, bool) {
	in := client.Input{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Email:     r.Email,
	}
	if r.BirthDate != "" {
		d, ok := parseDate(c, "birth_date", r.BirthDate)
		if !ok {
			return in, false
		}
		in.BirthDate = &d
	}
	return in, true
}

type CreateBookingRequest struct {
	ClientID         uint              `json:"client_id"`
	Client           *NewClientRequest `json:"client"`
	PractitionerID   uint              `json:"practitioner_id"`
	ServiceID        uint              `json:"service_id"`
	Date             string            `json:"date" binding:"required"`
	Time             string            `json:"time" binding:"required"`
	Notes            string            `json:"notes"`
	Source           string            `json:"source"`
	HistoricalImport bool              `json:"historical_import"`
}

type UpdateStatusRequest struct {
	Status    string     `json:"status" binding:"required"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	date, ok := parseDate(c, "date", req.Date)
	if !ok {
		return
	}

	in := ucBooking.CreateBookingInput{
		ActorID:          middleware.ActorID(c),
		ClientID:         req.ClientID,
		PractitionerID:   req.PractitionerID,
		ServiceID:        req.ServiceID,
		Date:             date,
		Time:             req.Time,
		Notes:            req.Notes,
		Source:           req.Source,
		HistoricalImport: req.HistoricalImport,
		IdempotencyKey:   strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	}
	if req.Client != nil {
		nc, ok := req.Client.input(c)
		if !ok {
			return
		}
		in.NewClient = &nc
	}

	b, err := h.create.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, b)
}

// ======================================================
// READ
// ======================================================

// List serves GET /bookings?from=&to=. A missing "to" means the single day
// "from".
func (h *BookingHandler) List(c *gin.Context) {
	fromRaw := c.Query("from")
	if fromRaw == "" {
		fromRaw = c.Query("date")
	}
	if fromRaw == "" {
		httperr.BadRequest(c, "date_range_required", "Query parameter from is required.")
		return
	}
	from, ok := parseDate(c, "from", fromRaw)
	if !ok {
		return
	}
	to := from
	if raw := c.Query("to"); raw != "" {
		if to, ok = parseDate(c, "to", raw); !ok {
			return
		}
	}
	practitionerID, ok := queryID(c, "practitioner_id")
	if !ok {
		return
	}

	in := ucBooking.ListInput{
		From:           from,
		To:             to,
		PractitionerID: practitionerID,
		PaymentStatus:  c.Query("payment_status"),
	}
	if raw := c.Query("status"); raw != "" {
		in.Statuses = strings.Split(raw, ",")
	}

	out, err := h.list.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, b)
}

// ======================================================
// STATUS
// ======================================================

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.updateStatus.Execute(c.Request.Context(), ucBooking.UpdateStatusInput{
		ActorID:   middleware.ActorID(c),
		BookingID: id,
		Status:    req.Status,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BookingHandler) Start(c *gin.Context)      { h.transition(c, h.start) }
func (h *BookingHandler) Finish(c *gin.Context)     { h.transition(c, h.finish) }
func (h *BookingHandler) MarkNoShow(c *gin.Context) { h.transition(c, h.noShow) }
func (h *BookingHandler) Cancel(c *gin.Context)     { h.transition(c, h.cancel) }

func (h *BookingHandler) transition(c *gin.Context, uc *ucBooking.TransitionBooking) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := uc.Execute(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, b)
}

// ======================================================
// DELETE
// ======================================================

func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.remove.Execute(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if !deleted {
		httperr.Write(c, http.StatusNotFound, "booking_not_found", "Booking not found.")
		return
	}
	c.Status(http.StatusNoContent)
}
