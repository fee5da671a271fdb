package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	ucClient "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/client"
)

type ClientHandler struct {
	register   *ucClient.RegisterClient
	deactivate *ucClient.DeactivateClient
	lookup     *ucClient.Lookup
}

func NewClientHandler(deps ucClient.Deps) *ClientHandler {
	return &ClientHandler{
		register:   ucClient.NewRegisterClient(deps),
		deactivate: ucClient.NewDeactivateClient(deps),
		lookup:     ucClient.NewLookup(deps),
	}
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req NewClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	created, err := h.register.Execute(c.Request.Context(), middleware.ActorID(c), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, created)
}

// ======================================================
// LIST CLIENTS
// ======================================================

// List serves ?phone= as an exact lookup and ?query= as a search.
func (h *ClientHandler) List(c *gin.Context) {
	if phone := strings.TrimSpace(c.Query("phone")); phone != "" {
		found, err := h.lookup.FindByPhone(c.Request.Context(), phone)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		httpresp.List(c, []models.Client{*found})
		return
	}

	clients, err := h.lookup.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, clients)
}

func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	found, err := h.lookup.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, found)
}

func (h *ClientHandler) Deactivate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.deactivate.Execute(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}
