package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const defaultAuditDays = 30

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	store audit.Store
	clock timezone.Clock
}

func NewAuditLogsHandler(store audit.Store, clock timezone.Clock) *AuditLogsHandler {
	return &AuditLogsHandler{store: store, clock: clock}
}

// List serves GET /audit-logs. Without from/to it covers the last 30 days.
// actor_id and action accept comma-separated lists.
func (h *AuditLogsHandler) List(c *gin.Context) {
	now := h.clock.Now()
	today := timezone.Date(now)

	f := audit.Filter{
		From:     today.AddDate(0, 0, -defaultAuditDays),
		To:       today,
		Location: now.Location(),
		Table:    c.Query("table"),
	}

	var ok bool
	if raw := c.Query("from"); raw != "" {
		if f.From, ok = parseDate(c, "from", raw); !ok {
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if f.To, ok = parseDate(c, "to", raw); !ok {
			return
		}
	}
	if f.To.Before(f.From) {
		httperr.BadRequest(c, "invalid_date_range", "End date is before start date.")
		return
	}

	// --------------------------------------------------
	// Optional filters
	// --------------------------------------------------

	for _, raw := range splitList(c.Query("actor_id")) {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_actor_id", "Invalid actor_id.")
			return
		}
		f.ActorIDs = append(f.ActorIDs, uint(id))
	}
	for _, raw := range splitList(c.Query("action")) {
		a, err := audit.ParseAction(strings.ToUpper(raw))
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		f.Actions = append(f.Actions, a)
	}

	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	limit, offset := f.Paging()

	logs, total, err := h.store.Query(c.Request.Context(), f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(200, gin.H{
		"page":  offset/limit + 1,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
