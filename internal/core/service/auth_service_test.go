package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/identity-api/internal/core/domain"
)

type stubCodec struct {
	lifetime time.Duration
	err      error
}

func (c *stubCodec) Issue(claims domain.Claims, lifetime time.Duration) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.lifetime = lifetime
	return "token-for-" + claims.Subject, nil
}

func (c *stubCodec) Verify(string) (domain.Claims, error) {
	return domain.Claims{}, domain.ErrInvalidToken
}

func seededAlice(active bool) *domain.Identity {
	return &domain.Identity{
		ID:           "id-alice",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:Secret#123",
		Role:         domain.RoleUser,
		Active:       active,
		FirstName:    "Alice",
		LastName:     "Liddell",
		Birthdate:    time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Country:      domain.Country{Name: "Greece", ISO: "GR"},
	}
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	store := newStubStore(seededAlice(true))
	codec := &stubCodec{}
	svc := NewAuthService(store, &plainHasher{}, codec, 30*time.Minute, zerolog.Nop())

	token, claims, err := svc.Authenticate(context.Background(), "alice", "Secret#123")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if token != "token-for-alice" {
		t.Fatalf("unexpected token: %q", token)
	}
	if claims.Subject != "alice" || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.CountryName != "Greece" || claims.Birthdate != "1990-05-17" || claims.FirstName != "Alice" {
		t.Fatalf("profile snapshot missing from claims: %+v", claims)
	}
	if codec.lifetime != 30*time.Minute {
		t.Fatalf("expected configured lifetime, got %s", codec.lifetime)
	}
}

func TestAuthService_Authenticate_DefaultLifetime(t *testing.T) {
	codec := &stubCodec{}
	svc := NewAuthService(newStubStore(seededAlice(true)), &plainHasher{}, codec, 0, zerolog.Nop())

	if _, _, err := svc.Authenticate(context.Background(), "alice", "Secret#123"); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if codec.lifetime != time.Hour {
		t.Fatalf("expected 1h default lifetime, got %s", codec.lifetime)
	}
}

func TestAuthService_Authenticate_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		active   bool
		username string
		password string
	}{
		{name: "wrong password", active: true, username: "alice", password: "Wrong#123"},
		{name: "unknown user", active: true, username: "mallory", password: "Secret#123"},
		{name: "inactive account", active: false, username: "alice", password: "Secret#123"},
		{name: "empty username", active: true, username: "", password: "Secret#123"},
		{name: "empty password", active: true, username: "alice", password: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewAuthService(newStubStore(seededAlice(tc.active)), &plainHasher{}, &stubCodec{}, time.Hour, zerolog.Nop())

			token, _, err := svc.Authenticate(context.Background(), tc.username, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if !errors.Is(err, domain.ErrNotAuthorized) {
				t.Fatalf("expected NotAuthorized kind, got %v", err)
			}
			if token != "" {
				t.Fatalf("expected no token, got %q", token)
			}
		})
	}
}

func TestAuthService_Authenticate_UnknownUserStillVerifies(t *testing.T) {
	hasher := &plainHasher{}
	svc := NewAuthService(newStubStore(), hasher, &stubCodec{}, time.Hour, zerolog.Nop())

	if _, _, err := svc.Authenticate(context.Background(), "ghost", "Secret#123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if hasher.verifies != 1 {
		t.Fatalf("expected one password verification for unknown user, got %d", hasher.verifies)
	}
}

func TestAuthService_Authenticate_StoreFailure(t *testing.T) {
	store := newStubStore(seededAlice(true))
	store.err = errStoreDown
	svc := NewAuthService(store, &plainHasher{}, &stubCodec{}, time.Hour, zerolog.Nop())

	_, _, err := svc.Authenticate(context.Background(), "alice", "Secret#123")
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if errors.Is(err, errStoreDown) {
		t.Fatalf("store error leaked to caller: %v", err)
	}
}

func TestAuthService_Authenticate_IssueFailure(t *testing.T) {
	svc := NewAuthService(newStubStore(seededAlice(true)), &plainHasher{}, &stubCodec{err: errors.New("boom")}, time.Hour, zerolog.Nop())

	if _, _, err := svc.Authenticate(context.Background(), "alice", "Secret#123"); !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}
