package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
)

type MeHandler struct {
	users user.Repository
}

func NewMeHandler(users user.Repository) *MeHandler {
	return &MeHandler{users: users}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := middleware.ActorID(c)
	if userID == 0 {
		httperr.Unauthorized(c, "user_not_in_context", "Not authenticated.")
		return
	}

	u, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			httperr.Unauthorized(c, "user_not_found", "User no longer exists.")
			return
		}
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":           u.ID,
			"username":     u.Username,
			"name":         u.Name,
			"access_level": u.AccessLevel,
			"last_login":   u.LastLogin,
		},
	})
}
