package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	ucAuth "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/auth"
)

type AuthHandler struct {
	login *ucAuth.Login
}

func NewAuthHandler(login *ucAuth.Login) *AuthHandler {
	return &AuthHandler{login: login}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.login.Execute(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if httperr.IsBusiness(err, ucAuth.CodeInvalidCredentials) {
			httperr.Unauthorized(c, ucAuth.CodeInvalidCredentials, "Invalid username or password.")
			return
		}
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":           res.User.ID,
			"username":     res.User.Username,
			"name":         res.User.Name,
			"access_level": res.User.AccessLevel,
		},
		"token": res.Token,
	})
}
