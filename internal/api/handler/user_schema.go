package handler

import "github.com/userhub/identity-api/internal/core/domain"

// --- Request types ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Email       string `json:"email"`
	Birthdate   string `json:"birthdate" example:"1990-05-17"`
	CountryName string `json:"countryName"`
}

type updateRequest struct {
	Password    string `json:"password,omitempty"`
	OldPassword string `json:"oldPassword,omitempty"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Email       string `json:"email"`
	Birthdate   string `json:"birthdate" example:"1990-05-17"`
	CountryName string `json:"countryName"`
}

// --- Response types ---

type loginResponse struct {
	Token       string      `json:"token"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	FirstName   string      `json:"firstname"`
	Email       string      `json:"email"`
	DateOfBirth string      `json:"dateOfBirth"`
	CountryName string      `json:"countryName"`
}

type meResponse struct {
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	FirstName   string      `json:"firstname"`
	LastName    string      `json:"lastname"`
	Email       string      `json:"email"`
	DateOfBirth string      `json:"dateOfBirth"`
	CountryName string      `json:"countryName"`
	IssuedAt    string      `json:"issuedAt"`
	ExpiresAt   string      `json:"expiresAt"`
}

type countryUsersResponse struct {
	Country string            `json:"country"`
	Users   []domain.UserView `json:"users"`
}
