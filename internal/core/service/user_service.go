package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/ports"
)

const (
	defaultPageSize = 5
	maxPageSize     = 100
)

// UserService manages the identity lifecycle. Every mutating operation runs
// all of its checks first and then performs exactly one store write, so a
// rejected request never leaves a partial update behind.
type UserService struct {
	store     ports.CredentialStore
	countries ports.CountryCatalog
	hasher    ports.PasswordHasher
	events    ports.EventSink
	log       zerolog.Logger
	now       func() time.Time
}

// NewUserService wires the lifecycle manager. events may be nil.
func NewUserService(
	store ports.CredentialStore,
	countries ports.CountryCatalog,
	hasher ports.PasswordHasher,
	events ports.EventSink,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		store:     store,
		countries: countries,
		hasher:    hasher,
		events:    events,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new USER identity, active from the start.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.UserView, error) {
	return s.create(ctx, in, domain.RoleUser, in.Username)
}

// EnsureAdmin provisions an ADMIN identity unless the username is already
// registered. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, in ports.RegisterInput) (bool, error) {
	existing, err := s.store.FindByUsername(ctx, in.Username)
	if err != nil {
		return false, s.internal("bootstrap", err)
	}
	if existing != nil {
		if existing.Role != domain.RoleAdmin {
			s.log.Warn().Str("username", in.Username).Msg("bootstrap account exists without ADMIN role")
		}
		return false, nil
	}
	if _, err := s.create(ctx, in, domain.RoleAdmin, "bootstrap"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) create(ctx context.Context, in ports.RegisterInput, role domain.Role, actor string) (*domain.UserView, error) {
	in.Email = normalizeEmail(in.Email)
	if err := ValidateRegister(in); err != nil {
		return nil, err
	}

	country, ok := s.countries.FindByName(in.CountryName)
	if !ok {
		return nil, domain.ErrUnknownCountry
	}

	existing, err := s.store.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, s.internal("register", err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	existing, err = s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.internal("register", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal("register", err)
	}

	now := s.now()
	identity := &domain.Identity{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Birthdate:    parseDate(in.Birthdate),
		Country:      country,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		return nil, s.internal("register", err)
	}

	s.log.Info().
		Str("username", identity.Username).
		Str("role", role.String()).
		Str("country", country.Name).
		Msg("user registered")
	s.emit(domain.EventRegistered, identity, actor)

	view := identity.View()
	return &view, nil
}

// Update applies a self-service profile change. A password change happens
// only when a new password is given; supplying the old password alone leaves
// the stored hash untouched.
func (s *UserService) Update(ctx context.Context, actor domain.Claims, username string, in ports.UpdateInput) (*domain.UserView, error) {
	changePassword := in.Password != ""

	if err := domain.Authorize(domain.ActionUpdateProfile, actor, username); err != nil {
		return nil, s.denied(domain.ActionUpdateProfile, actor, username)
	}
	if changePassword {
		if err := domain.Authorize(domain.ActionUpdatePassword, actor, username); err != nil {
			return nil, s.denied(domain.ActionUpdatePassword, actor, username)
		}
	}

	in.Email = normalizeEmail(in.Email)
	if err := ValidateUpdate(in); err != nil {
		return nil, err
	}

	identity, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	country, ok := s.countries.FindByName(in.CountryName)
	if !ok {
		return nil, domain.ErrUnknownCountry
	}

	if in.Email != identity.Email {
		other, err := s.store.FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, s.internal("update", err)
		}
		if other != nil && other.ID != identity.ID {
			return nil, domain.ErrEmailTaken
		}
	}

	updated := *identity
	if changePassword {
		if !s.hasher.Verify(in.OldPassword, identity.PasswordHash) {
			return nil, domain.ErrWrongPassword
		}
		if s.hasher.Verify(in.Password, identity.PasswordHash) {
			return nil, domain.ErrPasswordReused
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, s.internal("update", err)
		}
		updated.PasswordHash = hash
	}

	updated.FirstName = in.FirstName
	updated.LastName = in.LastName
	updated.Email = in.Email
	updated.Birthdate = parseDate(in.Birthdate)
	updated.Country = country
	updated.UpdatedAt = s.now()

	if err := s.store.Save(ctx, &updated); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, s.internal("update", err)
	}

	s.log.Info().Str("username", username).Bool("password_changed", changePassword).Msg("user updated")
	s.emit(domain.EventUpdated, &updated, actor.Subject)

	view := updated.View()
	return &view, nil
}

// Deactivate moves an identity to INACTIVE. Deactivating an inactive identity succeeds without a write.
func (s *UserService) Deactivate(ctx context.Context, actor domain.Claims, username string) (*domain.UserView, error) {
	return s.transition(ctx, actor, username, domain.ActionDeactivate)
}

// Activate moves an identity to ACTIVE. Activating an active identity succeeds without a write.
func (s *UserService) Activate(ctx context.Context, actor domain.Claims, username string) (*domain.UserView, error) {
	return s.transition(ctx, actor, username, domain.ActionActivate)
}

func (s *UserService) transition(ctx context.Context, actor domain.Claims, username string, action domain.Action) (*domain.UserView, error) {
	if err := domain.Authorize(action, actor, username); err != nil {
		return nil, s.denied(action, actor, username)
	}

	identity, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	next, changed, err := domain.StateOf(identity).Apply(action)
	if err != nil {
		return nil, err
	}
	if !changed {
		view := identity.View()
		return &view, nil
	}

	if err := s.store.SetActive(ctx, identity.ID, next == domain.StateActive); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, s.internal(string(action), err)
	}
	identity.Active = next == domain.StateActive

	event := domain.EventDeactivated
	if identity.Active {
		event = domain.EventActivated
	}
	s.log.Info().Str("username", username).Str("actor", actor.Subject).Str("state", string(next)).Msg("activation changed")
	s.emit(event, identity, actor.Subject)

	view := identity.View()
	return &view, nil
}

// Delete permanently removes an identity. Only admins may delete.
func (s *UserService) Delete(ctx context.Context, actor domain.Claims, id string) error {
	if err := domain.Authorize(domain.ActionDelete, actor, id); err != nil {
		return s.denied(domain.ActionDelete, actor, id)
	}

	identity, err := s.store.FindByID(ctx, id)
	if err != nil {
		return s.internal("delete", err)
	}
	if identity == nil {
		return domain.ErrUserNotFound
	}

	if err := s.store.Delete(ctx, identity.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return s.internal("delete", err)
	}

	s.log.Info().Str("username", identity.Username).Str("actor", actor.Subject).Msg("user deleted")
	s.emit(domain.EventDeleted, identity, actor.Subject)
	return nil
}

// Get returns the read-only view of one identity.
func (s *UserService) Get(ctx context.Context, username string) (*domain.UserView, error) {
	identity, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	view := identity.View()
	return &view, nil
}

// List returns a 0-based page of identities ordered by username.
func (s *UserService) List(ctx context.Context, page, size int) (*domain.Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	identities, total, err := s.store.FindAllPaged(ctx, page, size)
	if err != nil {
		return nil, s.internal("list", err)
	}

	items := make([]domain.UserView, 0, len(identities))
	for _, i := range identities {
		items = append(items, i.View())
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &domain.Page{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// ListByCountry returns every identity registered with the named country.
func (s *UserService) ListByCountry(ctx context.Context, countryName string) ([]domain.UserView, error) {
	country, ok := s.countries.FindByName(countryName)
	if !ok {
		return nil, domain.ErrUnknownCountry
	}

	identities, err := s.store.FindByCountry(ctx, country)
	if err != nil {
		return nil, s.internal("list by country", err)
	}

	out := make([]domain.UserView, 0, len(identities))
	for _, i := range identities {
		out = append(out, i.View())
	}
	return out, nil
}

func (s *UserService) load(ctx context.Context, username string) (*domain.Identity, error) {
	identity, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, s.internal("load", err)
	}
	if identity == nil {
		return nil, domain.ErrUserNotFound
	}
	return identity, nil
}

// internal logs a store failure and hides its detail from the caller.
func (s *UserService) internal(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("credential store failure")
	return fmt.Errorf("%s: %w", op, domain.ErrInternal)
}

func (s *UserService) denied(action domain.Action, actor domain.Claims, target string) error {
	s.log.Warn().
		Str("action", string(action)).
		Str("actor", actor.Subject).
		Str("role", actor.Role.String()).
		Str("target", target).
		Msg("policy denied")
	return domain.ErrForbidden
}

func (s *UserService) emit(t domain.EventType, identity *domain.Identity, actor string) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(domain.LifecycleEvent{
		Type:       t,
		UserID:     identity.ID,
		Username:   identity.Username,
		Actor:      actor,
		OccurredAt: s.now(),
	})
}
