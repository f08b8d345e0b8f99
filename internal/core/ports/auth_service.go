package ports

import (
	"context"

	"github.com/userhub/identity-api/internal/core/domain"
)

// AuthService verifies credentials and issues tokens.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (string, domain.Claims, error)
}

// LoginLimiter throttles repeated failed logins per (username, client address).
type LoginLimiter interface {
	Allow(ctx context.Context, username, clientIP string) (bool, error)
	Failure(ctx context.Context, username, clientIP string) error
	Success(ctx context.Context, username, clientIP string) error
}
