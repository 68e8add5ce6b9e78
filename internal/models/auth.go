package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest selects a directory identity. The directory is the source of
// truth for who exists; no credential check happens beyond membership.
type LoginRequest struct {
	UserID int `json:"user_id" validate:"required"`
}

// LoginResponse returns the issued token and the resolved user.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	User        DisplayUser `json:"user"`
	IssuedAt    time.Time   `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID int      `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
