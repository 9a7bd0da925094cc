package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access-token payload issued by the hosted auth provider. The
// application role travels in the user_role claim.
type JWTClaims struct {
	Email string   `json:"email"`
	Role  UserRole `json:"user_role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *JWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
