package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claims structure issued by the console's identity
// provider. Tokens are verified against the provider's JWKS endpoint.
type Claims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the actor identifier recorded in execution history.
func (c *Claims) GetUserID() string {
	return c.Subject
}
