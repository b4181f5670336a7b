package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT claims of a dispatcher session
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	OrgID    string `json:"organization_id"`

	jwt.RegisteredClaims
}
