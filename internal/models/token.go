package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UsedToken records a consumed password-reset token so it cannot be replayed.
type UsedToken struct {
	Token     string    `db:"token" json:"token"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID  string   `json:"user_id"`
	Email   string   `json:"email"`
	Role    UserRole `json:"role"`
	Purpose string   `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// TokenPurposePasswordReset marks tokens minted by the forgot-password flow.
const TokenPurposePasswordReset = "password_reset"
