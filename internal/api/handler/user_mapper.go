package handler

import (
	"time"

	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Birthdate:   req.Birthdate,
		CountryName: req.CountryName,
	}
}

func toUpdateInput(req updateRequest) ports.UpdateInput {
	return ports.UpdateInput{
		Password:    req.Password,
		OldPassword: req.OldPassword,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Birthdate:   req.Birthdate,
		CountryName: req.CountryName,
	}
}

// --- Service result → HTTP response ---

func toLoginResponse(token string, c domain.Claims) loginResponse {
	return loginResponse{
		Token:       token,
		Username:    c.Subject,
		Role:        c.Role,
		FirstName:   c.FirstName,
		Email:       c.Email,
		DateOfBirth: c.Birthdate,
		CountryName: c.CountryName,
	}
}

func toMeResponse(c domain.Claims) meResponse {
	return meResponse{
		Username:    c.Subject,
		Role:        c.Role,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		DateOfBirth: c.Birthdate,
		CountryName: c.CountryName,
		IssuedAt:    formatTimestamp(c.IssuedAt),
		ExpiresAt:   formatTimestamp(c.ExpiresAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
