package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/infrastructure/security"
)

func newCodec(t *testing.T) *security.JWTCodec {
	t.Helper()
	codec, err := security.NewJWTCodec("secret")
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	return codec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	codec := newCodec(t)
	signed, err := codec.Issue(domain.Claims{Subject: "alice", Role: domain.RoleAdmin, CountryName: "Greece"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(codec)
	handler := mw(func(c echo.Context) error {
		called = true
		claims, ok := ClaimsFrom(c)
		if !ok {
			t.Fatalf("claims not set")
		}
		if claims.Subject != "alice" || claims.Role != domain.RoleAdmin || claims.CountryName != "Greece" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		if c.Get("username") != "alice" {
			t.Fatalf("username not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	other, err := security.NewJWTCodec("another-secret")
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	foreign, err := other.Issue(domain.Claims{Subject: "alice", Role: domain.RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	cases := map[string]string{
		"missing header":      "",
		"wrong scheme":        "Token abc",
		"empty bearer":        "Bearer ",
		"garbage token":       "Bearer not-a-token",
		"foreign signing key": "Bearer " + foreign,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Auth(newCodec(t))(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
