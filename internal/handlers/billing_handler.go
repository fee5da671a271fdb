package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	ucBilling "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/billing"
)

type BillingHandler struct {
	attach    *ucBilling.AttachService
	detach    *ucBilling.DetachService
	reprice   *ucBilling.RepriceServiceLine
	lines     *ucBilling.ListServiceLines
	pay       *ucBilling.AddPayment
	unpay     *ucBilling.DeletePayment
	summarize *ucBilling.SummarizePayments
	checkout  *ucBilling.Checkout
}

func NewBillingHandler(deps ucBilling.Deps) *BillingHandler {
	return &BillingHandler{
		attach:    ucBilling.NewAttachService(deps),
		detach:    ucBilling.NewDetachService(deps),
		reprice:   ucBilling.NewRepriceServiceLine(deps),
		lines:     ucBilling.NewListServiceLines(deps),
		pay:       ucBilling.NewAddPayment(deps),
		unpay:     ucBilling.NewDeletePayment(deps),
		summarize: ucBilling.NewSummarizePayments(deps),
		checkout:  ucBilling.NewCheckout(deps),
	}
}

type AttachServiceRequest struct {
	ServiceID uint             `json:"service_id" binding:"required"`
	Price     *decimal.Decimal `json:"price"`
}

type RepriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

type AddPaymentRequest struct {
	Method string          `json:"method" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

type CheckoutRequest struct {
	Tenders []struct {
		Method string          `json:"method"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"tenders"`
	AllowOverpayment bool   `json:"allow_overpayment"`
	Note             string `json:"note"`
}

// ======================================================
// SERVICE-LINES
// ======================================================

func (h *BillingHandler) ListServices(c *gin.Context) {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.lines.Execute(c.Request.Context(), bookingID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}

// AttachService answers 201 when the line is added and 200 when the
// booking already had the service.
func (h *BillingHandler) AttachService(c *gin.Context) {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AttachServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	added, err := h.attach.Execute(c.Request.Context(), ucBilling.AttachServiceInput{
		ActorID:   middleware.ActorID(c),
		BookingID: bookingID,
		ServiceID: req.ServiceID,
		Price:     req.Price,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"added": added})
}

func (h *BillingHandler) DetachService(c *gin.Context) {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return
	}
	serviceID, ok := paramID(c, "service_id")
	if !ok {
		return
	}

	removed, err := h.detach.Execute(c.Request.Context(), middleware.ActorID(c), bookingID, serviceID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if !removed {
		httperr.Write(c, http.StatusNotFound, "service_line_not_found", "Booking has no such service.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BillingHandler) Reprice(c *gin.Context) {
	lineID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RepriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	line, err := h.reprice.Execute(c.Request.Context(), middleware.ActorID(c), lineID, req.Price)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, line)
}

// ======================================================
// PAYMENTS
// ======================================================

func (h *BillingHandler) AddPayment(c *gin.Context) {
	lineID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, bal, err := h.pay.Execute(c.Request.Context(), ucBilling.AddPaymentInput{
		ActorID:       middleware.ActorID(c),
		ServiceLineID: lineID,
		Method:        req.Method,
		Amount:        req.Amount,
		Note:          req.Note,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, gin.H{"payment": p, "balance": bal})
}

func (h *BillingHandler) DeletePayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.unpay.Execute(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if !deleted {
		httperr.Write(c, http.StatusNotFound, "payment_not_found", "Payment not found.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BillingHandler) Summary(c *gin.Context) {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.summarize.Execute(c.Request.Context(), bookingID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	in := ucBilling.CheckoutInput{
		ActorID:          middleware.ActorID(c),
		BookingID:        bookingID,
		AllowOverpayment: req.AllowOverpayment,
		Note:             req.Note,
	}
	for _, t := range req.Tenders {
		in.Tenders = append(in.Tenders, domain.Tender{Method: domain.Method(t.Method), Amount: t.Amount})
	}

	res, err := h.checkout.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, res)
}
