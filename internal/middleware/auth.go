package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/cert-registry-api/internal/models"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
	"github.com/avolkov/cert-registry-api/pkg/response"
)

// ContextViewerKey holds the authenticated viewer in the request context.
const ContextViewerKey = "viewer"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// ViewerResolver merges a directory user with its profile overlay.
type ViewerResolver interface {
	Resolve(ctx context.Context, userID int) (*models.DisplayUser, error)
}

// Auth validates the bearer token and resolves the authenticated user,
// profile overlay included, into the request context.
func Auth(auth TokenValidator, profiles ViewerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		viewer, err := profiles.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "unknown user"))
			c.Abort()
			return
		}

		c.Set(ContextViewerKey, *viewer)
		c.Next()
	}
}

// Viewer extracts the authenticated user placed by Auth.
func Viewer(c *gin.Context) (models.DisplayUser, bool) {
	value, ok := c.Get(ContextViewerKey)
	if !ok {
		return models.DisplayUser{}, false
	}
	viewer, ok := value.(models.DisplayUser)
	return viewer, ok
}

// RequireRoles rejects requests whose viewer has none of the given roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		viewer, ok := Viewer(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allowed[viewer.Role] {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}
