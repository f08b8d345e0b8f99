package ports

import (
	"context"

	"github.com/userhub/identity-api/internal/core/domain"
)

// RegisterInput carries everything needed to create an identity.
type RegisterInput struct {
	Username    string
	Password    string
	FirstName   string
	LastName    string
	Email       string
	Birthdate   string // YYYY-MM-DD
	CountryName string
}

// UpdateInput carries a profile update. Password is the new password; it is
// only applied when non-empty, and then OldPassword must match the stored one.
type UpdateInput struct {
	Password    string
	OldPassword string
	FirstName   string
	LastName    string
	Email       string
	Birthdate   string // YYYY-MM-DD
	CountryName string
}

// UserService is the identity lifecycle use-case surface.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.UserView, error)
	Update(ctx context.Context, actor domain.Claims, username string, input UpdateInput) (*domain.UserView, error)
	Activate(ctx context.Context, actor domain.Claims, username string) (*domain.UserView, error)
	Deactivate(ctx context.Context, actor domain.Claims, username string) (*domain.UserView, error)
	Delete(ctx context.Context, actor domain.Claims, id string) error

	Get(ctx context.Context, username string) (*domain.UserView, error)
	List(ctx context.Context, page, size int) (*domain.Page, error)
	ListByCountry(ctx context.Context, countryName string) ([]domain.UserView, error)
}
