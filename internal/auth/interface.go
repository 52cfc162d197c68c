package auth

import "auditcore/internal/domain/models"

// JWTVerifier validates bearer tokens for the console. The middleware stays
// agnostic to where the keys come from.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
