package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	ucCatalog "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/catalog"
)

type CatalogHandler struct {
	catalog *ucCatalog.Service
}

func NewCatalogHandler(svc *ucCatalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	PractitionerID  uint            `json:"practitioner_id" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
}

// --------- Handlers ---------

func (h *CatalogHandler) ListPractitioners(c *gin.Context) {
	out, err := h.catalog.ListPractitioners(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *CatalogHandler) CreatePractitioner(c *gin.Context) {
	var req catalog.PractitionerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.catalog.CreatePractitioner(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, p)
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	practitionerID, ok := queryID(c, "practitioner_id")
	if !ok {
		return
	}
	out, err := h.catalog.ListServices(c.Request.Context(), practitionerID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	svc, err := h.catalog.GetService(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, svc)
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	svc, err := h.catalog.CreateService(c.Request.Context(), middleware.ActorID(c), catalog.ServiceInput{
		PractitionerID:  req.PractitionerID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, svc)
}
