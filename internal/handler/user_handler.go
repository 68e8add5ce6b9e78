package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/cert-registry-api/pkg/response"
)

// UserHandler serves directory users with their profile overlays applied.
type UserHandler struct {
	profiles ProfileService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(profiles ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// List godoc
// @Summary List all users for examiner and manager selection
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.DisplayUser}
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.profiles.ListDisplayUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}
