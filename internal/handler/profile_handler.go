package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/cert-registry-api/internal/models"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
	"github.com/avolkov/cert-registry-api/pkg/response"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	profiles ProfileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me godoc
// @Summary Get the authenticated user's merged profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.DisplayUser}
// @Router /profile/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewer)
}

// Update godoc
// @Summary Replace the authenticated user's profile overlay
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ProfileUpdateRequest true "Profile fields"
// @Success 200 {object} response.Envelope{data=models.DisplayUser}
// @Failure 400 {object} response.Envelope
// @Router /profile/me [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	updated, err := h.profiles.Save(c.Request.Context(), viewer, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}
