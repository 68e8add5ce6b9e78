package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/cert-registry-api/internal/middleware"
	"github.com/avolkov/cert-registry-api/internal/models"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
)

// currentViewer pulls the authenticated user out of the gin context.
func currentViewer(c *gin.Context) (models.DisplayUser, error) {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return models.DisplayUser{}, appErrors.ErrUnauthorized
	}
	return viewer, nil
}

// certificateID parses the :id path parameter.
func certificateID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid certificate id")
	}
	return id, nil
}
