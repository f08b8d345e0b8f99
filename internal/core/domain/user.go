package domain

import (
	"strings"
	"time"
)

// Role is the closed set of authorities an identity can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored or transported role name onto the closed enum.
// Unknown names are rejected rather than defaulted.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// DateLayout is the ISO calendar date format used for birthdates in tokens and payloads.
const DateLayout = "2006-01-02"

// Country is a static reference record resolved by name.
type Country struct {
	Name string `json:"name" bson:"name"`
	ISO  string `json:"iso" bson:"iso"`
}

// Identity is the authoritative account record.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	FirstName    string    `json:"firstname"`
	LastName     string    `json:"lastname"`
	Birthdate    time.Time `json:"birthdate"`
	Country      Country   `json:"country"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// View returns the read-only projection of the identity. The password hash
// never leaves the store boundary.
func (i *Identity) View() UserView {
	return UserView{
		ID:          i.ID,
		Username:    i.Username,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		Email:       i.Email,
		Birthdate:   formatDate(i.Birthdate),
		CountryName: i.Country.Name,
		Role:        i.Role,
		Active:      i.Active,
	}
}

// UserView is what callers outside the core get to see of an identity.
type UserView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Email       string `json:"email"`
	Birthdate   string `json:"birthdate"`
	CountryName string `json:"countryName"`
	Role        Role   `json:"role"`
	Active      bool   `json:"active"`
}

// Page is one ordered slice of the registry.
type Page struct {
	Items      []UserView `json:"items"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	Total      int64      `json:"total"`
	TotalPages int        `json:"total_pages"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
