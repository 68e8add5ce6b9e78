package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avolkov/cert-registry-api/internal/directory"
	"github.com/avolkov/cert-registry-api/internal/models"
	"github.com/avolkov/cert-registry-api/pkg/config"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
)

// AuthService exchanges a directory identity for a signed access token. There
// is no password: the directory decides who exists and the token carries the
// chosen identity.
type AuthService struct {
	dir      *directory.Directory
	profiles ProfileStore
	jwtCfg   config.JWTConfig
}

// NewAuthService constructs an AuthService.
func NewAuthService(dir *directory.Directory, profiles ProfileStore, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{dir: dir, profiles: profiles, jwtCfg: jwtCfg}
}

// Login resolves the user, layers the profile overlay and issues a JWT.
func (s *AuthService) Login(ctx context.Context, userID int) (*models.LoginResponse, error) {
	user := s.dir.Get(userID)
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load profile")
	}
	display := models.MergeProfile(*user, profile)

	issuedAt := time.Now().UTC()
	claims := models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.jwtCfg.Expiration)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtCfg.Expiration.Seconds()),
		User:        display,
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if s.dir.Get(claims.UserID) == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown user")
	}
	return claims, nil
}
