package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/cert-registry-api/internal/models"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
	"github.com/avolkov/cert-registry-api/pkg/response"
)

// AuthHandler exposes login and the directory picker.
type AuthHandler struct {
	auth     AuthService
	profiles ProfileService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth AuthService, profiles ProfileService) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles}
}

// Login godoc
// @Summary Issue an access token for a directory identity
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Selected user"
// @Success 200 {object} response.Envelope{data=models.LoginResponse}
// @Failure 404 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user_id is required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// LoginUsers godoc
// @Summary List directory users grouped by role for the login picker
// @Tags auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/users [get]
func (h *AuthHandler) LoginUsers(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.profiles.GroupedForLogin())
}
