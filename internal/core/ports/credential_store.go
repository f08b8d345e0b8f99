package ports

import (
	"context"

	"github.com/userhub/identity-api/internal/core/domain"
)

// CredentialStore persists identities. Lookups return (nil, nil) when the
// record does not exist. Create and Save return domain.ErrAlreadyExists when
// a unique index on username or email is violated.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	FindByCountry(ctx context.Context, country domain.Country) ([]*domain.Identity, error)
	// FindAllPaged returns one page ordered by username and the total count.
	FindAllPaged(ctx context.Context, page, size int) ([]*domain.Identity, int64, error)

	Create(ctx context.Context, identity *domain.Identity) error
	// Save writes the profile fields of the record with the same ID: email,
	// password hash, names, birthdate, country and updated-at. Role, activation
	// and username are never touched, so a concurrent SetActive is not undone.
	Save(ctx context.Context, identity *domain.Identity) error
	// SetActive atomically flips the activation flag of a single identity.
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// CountryCatalog resolves static country reference data by name.
type CountryCatalog interface {
	FindByName(name string) (domain.Country, bool)
}
