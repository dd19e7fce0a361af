package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a session token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
}

// ResetClaims represents the claims in a password reset token.
// PasswordFingerprint ties the token to the password it replaces so it works once.
type ResetClaims struct {
	jwt.RegisteredClaims
	PasswordFingerprint string `json:"pwf"`
}
