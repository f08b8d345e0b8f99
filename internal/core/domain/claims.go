package domain

import "time"

// Claims is the identity snapshot carried by a token. It reflects the
// identity at issuance time and is not refreshed when the profile changes.
type Claims struct {
	Subject     string    `json:"sub"`
	Role        Role      `json:"role"`
	FirstName   string    `json:"firstname"`
	LastName    string    `json:"lastname"`
	Email       string    `json:"email"`
	Birthdate   string    `json:"birthdate"`
	CountryName string    `json:"countryName"`
	IssuedAt    time.Time `json:"iat"`
	ExpiresAt   time.Time `json:"exp"`
}

// ClaimsFor builds the claim snapshot for an identity.
func ClaimsFor(i *Identity) Claims {
	return Claims{
		Subject:     i.Username,
		Role:        i.Role,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		Email:       i.Email,
		Birthdate:   formatDate(i.Birthdate),
		CountryName: i.Country.Name,
	}
}
