package ports

import (
	"time"

	"github.com/userhub/identity-api/internal/core/domain"
)

// PasswordHasher is a one-way, salted, deliberately slow hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. Any internal failure is a mismatch.
	Verify(plaintext, hash string) bool
}

// TokenCodec issues and verifies signed, self-contained bearer tokens.
type TokenCodec interface {
	Issue(claims domain.Claims, lifetime time.Duration) (string, error)
	Verify(token string) (domain.Claims, error)
}
