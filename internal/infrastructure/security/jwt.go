package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userhub/identity-api/internal/core/domain"
)

// tokenClaims is the wire shape of the token payload.
type tokenClaims struct {
	Role        string `json:"role"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Email       string `json:"email"`
	Birthdate   string `json:"birthdate"`
	CountryName string `json:"countryName"`
	jwt.RegisteredClaims
}

// JWTCodec implements ports.TokenCodec with HS256-signed JWTs.
// The key is fixed at construction; rotating it invalidates every outstanding token.
type JWTCodec struct {
	key    []byte
	leeway time.Duration
	now    func() time.Time
}

// JWTOption customises a JWTCodec.
type JWTOption func(*JWTCodec)

// WithLeeway tolerates clock skew on exp/iat checks. Zero by default.
func WithLeeway(d time.Duration) JWTOption {
	return func(c *JWTCodec) {
		if d > 0 {
			c.leeway = d
		}
	}
}

// WithClock injects the time source (tests).
func WithClock(now func() time.Time) JWTOption {
	return func(c *JWTCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewJWTCodec builds a codec signing with secret. An empty secret is rejected.
func NewJWTCodec(secret string, opts ...JWTOption) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt codec: empty signing secret")
	}
	c := &JWTCodec{key: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs claims with iat=now and exp=now+lifetime.
func (c *JWTCodec) Issue(claims domain.Claims, lifetime time.Duration) (string, error) {
	if lifetime <= 0 {
		return "", fmt.Errorf("issue token: non-positive lifetime %s", lifetime)
	}
	now := c.now().UTC().Truncate(time.Second)
	tc := tokenClaims{
		Role:        claims.Role.String(),
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		Email:       claims.Email,
		Birthdate:   claims.Birthdate,
		CountryName: claims.CountryName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the claim snapshot.
func (c *JWTCodec) Verify(token string) (domain.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	role, ok := domain.ParseRole(tc.Role)
	if !ok || tc.Subject == "" {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	out := domain.Claims{
		Subject:     tc.Subject,
		Role:        role,
		FirstName:   tc.FirstName,
		LastName:    tc.LastName,
		Email:       tc.Email,
		Birthdate:   tc.Birthdate,
		CountryName: tc.CountryName,
	}
	if tc.IssuedAt != nil {
		out.IssuedAt = tc.IssuedAt.Time.UTC()
	}
	if tc.ExpiresAt != nil {
		out.ExpiresAt = tc.ExpiresAt.Time.UTC()
	}
	return out, nil
}
