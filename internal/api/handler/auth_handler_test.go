package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/identity-api/internal/api/middleware"
	"github.com/userhub/identity-api/internal/core/domain"
)

type stubAuthService struct {
	authenticateFn func(ctx context.Context, username, password string) (string, domain.Claims, error)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (string, domain.Claims, error) {
	return s.authenticateFn(ctx, username, password)
}

type stubLimiter struct {
	allowed   bool
	allowErr  error
	failures  int
	successes int
}

func (l *stubLimiter) Allow(context.Context, string, string) (bool, error) {
	return l.allowed, l.allowErr
}

func (l *stubLimiter) Failure(context.Context, string, string) error {
	l.failures++
	return nil
}

func (l *stubLimiter) Success(context.Context, string, string) error {
	l.successes++
	return nil
}

func aliceClaims() domain.Claims {
	return domain.Claims{
		Subject:     "alice",
		Role:        domain.RoleUser,
		FirstName:   "Alice",
		LastName:    "Liddell",
		Email:       "alice@example.com",
		Birthdate:   "1990-05-17",
		CountryName: "Greece",
	}
}

func loginContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(ctx context.Context, username, password string) (string, domain.Claims, error) {
			if username != "alice" || password != "Secret#123" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "token123", aliceClaims(), nil
		},
	}
	limiter := &stubLimiter{allowed: true}
	handler := NewAuthHandler(stub, limiter, zerolog.Nop())

	c, rec := loginContext(`{"username":"alice","password":"Secret#123"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["firstname"] != "Alice" || resp["email"] != "alice@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["dateOfBirth"] != "1990-05-17" || resp["countryName"] != "Greece" {
		t.Fatalf("unexpected profile payload: %+v", resp)
	}
	if limiter.successes != 1 || limiter.failures != 0 {
		t.Fatalf("unexpected limiter calls: %+v", limiter)
	}
}

func TestAuthHandler_Login_InvalidCredentialsCountsFailure(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (string, domain.Claims, error) {
			return "", domain.Claims{}, domain.ErrInvalidCredentials
		},
	}
	limiter := &stubLimiter{allowed: true}
	handler := NewAuthHandler(stub, limiter, zerolog.Nop())

	c, _ := loginContext(`{"username":"alice","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if limiter.failures != 1 {
		t.Fatalf("expected one recorded failure, got %d", limiter.failures)
	}
}

func TestAuthHandler_Login_Throttled(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (string, domain.Claims, error) {
			t.Fatalf("should not be called")
			return "", domain.Claims{}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubLimiter{allowed: false}, zerolog.Nop())

	c, _ := loginContext(`{"username":"alice","password":"Secret#123"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAuthHandler_Login_LimiterFailsOpen(t *testing.T) {
	called := false
	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (string, domain.Claims, error) {
			called = true
			return "token123", aliceClaims(), nil
		},
	}
	handler := NewAuthHandler(stub, &stubLimiter{allowErr: errors.New("redis down")}, zerolog.Nop())

	c, rec := loginContext(`{"username":"alice","password":"Secret#123"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected login to proceed when limiter is unavailable")
	}
}

func TestAuthHandler_Login_WithoutLimiter(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (string, domain.Claims, error) {
			return "", domain.Claims{}, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, nil, zerolog.Nop())

	c, _ := loginContext(`{"username":"alice","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (string, domain.Claims, error) {
			t.Fatalf("should not be called")
			return "", domain.Claims{}, nil
		},
	}
	handler := NewAuthHandler(stub, nil, zerolog.Nop())

	c, _ := loginContext("{")
	err := handler.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, nil, zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	claims := aliceClaims()
	claims.IssuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	claims.ExpiresAt = claims.IssuedAt.Add(time.Hour)
	c.Set(middleware.ClaimsKey, claims)

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Username != "alice" || resp.Role != domain.RoleUser || resp.ExpiresAt != "2026-03-01T13:00:00Z" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_WithoutClaims(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, nil, zerolog.Nop())

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), httptest.NewRecorder())

	err := handler.Me(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
