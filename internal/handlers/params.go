package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// paramID reads a positive numeric path parameter. On failure it writes the
// 400 response and reports false.
func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return uint(n), true
}

// queryID reads an optional numeric query parameter.
func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return nil, false
	}
	id := uint(n)
	return &id, true
}

// parseDate reads a YYYY-MM-DD calendar date.
func parseDate(c *gin.Context, field, raw string) (time.Time, bool) {
	d, err := timezone.ParseDate(raw)
	if err != nil {
		httperr.BadRequest(c, "invalid_"+field, "Use YYYY-MM-DD for "+field+".")
		return time.Time{}, false
	}
	return d, true
}

func bindError(c *gin.Context, err error) {
	c.JSON(400, httperr.HTTPError{
		Code:    "invalid_request",
		Message: "Invalid request body.",
		Details: map[string]any{"reason": err.Error()},
	})
}
