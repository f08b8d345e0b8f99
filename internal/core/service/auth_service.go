package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/ports"
)

// dummyPassword feeds the hasher when the username is unknown so that the
// response time does not reveal whether an account exists.
const dummyPassword = "dummy-password-for-timing"

// AuthService implements login: credential verification plus token issuance.
type AuthService struct {
	store    ports.CredentialStore
	hasher   ports.PasswordHasher
	codec    ports.TokenCodec
	tokenTTL time.Duration
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	codec ports.TokenCodec,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{store: store, hasher: hasher, codec: codec, tokenTTL: tokenTTL, log: log}
}

// Authenticate verifies username/password and returns a signed token with the
// identity's current claim snapshot. Unknown user, wrong password and inactive
// account all fail with the same domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, domain.Claims, error) {
	if username == "" || password == "" {
		return "", domain.Claims{}, domain.ErrInvalidCredentials
	}

	identity, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("credential lookup failed")
		return "", domain.Claims{}, fmt.Errorf("authenticate: %w", domain.ErrInternal)
	}

	hash := s.fallbackHash()
	if identity != nil {
		hash = identity.PasswordHash
	}
	// Always pay for one verification before looking at existence or activation.
	matched := s.hasher.Verify(password, hash)

	if identity == nil || !matched || !identity.Active {
		s.log.Info().Str("username", username).Msg("authentication rejected")
		return "", domain.Claims{}, domain.ErrInvalidCredentials
	}

	claims := domain.ClaimsFor(identity)
	token, err := s.codec.Issue(claims, s.tokenTTL)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("token issuance failed")
		return "", domain.Claims{}, fmt.Errorf("authenticate: %w", domain.ErrInternal)
	}

	s.log.Info().Str("username", username).Str("role", claims.Role.String()).Msg("user authenticated")
	return token, claims, nil
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare timing-equalisation hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
