package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the identity payload issued by the auth provider.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TeacherID returns the scoping key for the caller, preferring user_id over sub.
func (c *JWTClaims) TeacherID() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}
