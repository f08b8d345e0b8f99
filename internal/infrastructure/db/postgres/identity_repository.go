package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/userhub/identity-api/internal/core/domain"
)

const identityColumns = `id, username, email, password_hash, role, active, firstname, lastname, birthdate, country_name, country_iso, created_at, updated_at`

// IdentityRepo implements ports.CredentialStore on PostgreSQL.
type IdentityRepo struct{ db *DB }

func NewIdentityRepo(db *DB) *IdentityRepo { return &IdentityRepo{db: db} }

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var (
		i         domain.Identity
		role      string
		birthdate *time.Time
	)
	err := row.Scan(&i.ID, &i.Username, &i.Email, &i.PasswordHash, &role, &i.Active,
		&i.FirstName, &i.LastName, &birthdate, &i.Country.Name, &i.Country.ISO, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("identity %s: unknown role %q", i.ID, role)
	}
	i.Role = r
	if birthdate != nil {
		i.Birthdate = birthdate.UTC()
	}
	return &i, nil
}

func (r *IdentityRepo) findOne(ctx context.Context, where string, arg any) (*domain.Identity, error) {
	q := `SELECT ` + identityColumns + ` FROM identities WHERE ` + where + ` = $1`
	i, err := scanIdentity(r.db.Pool.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select identity: %w", err)
	}
	return i, nil
}

func (r *IdentityRepo) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.findOne(ctx, "username", username)
}

func (r *IdentityRepo) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, "email", email)
}

func (r *IdentityRepo) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.findOne(ctx, "id", id)
}

func (r *IdentityRepo) FindByCountry(ctx context.Context, country domain.Country) ([]*domain.Identity, error) {
	q := `SELECT ` + identityColumns + ` FROM identities WHERE country_name = $1 ORDER BY username`
	rows, err := r.db.Pool.Query(ctx, q, country.Name)
	if err != nil {
		return nil, fmt.Errorf("select identities by country: %w", err)
	}
	return collect(rows)
}

// FindAllPaged returns one username-ordered page and the table size.
func (r *IdentityRepo) FindAllPaged(ctx context.Context, page, size int) ([]*domain.Identity, int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM identities`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count identities: %w", err)
	}

	q := `SELECT ` + identityColumns + ` FROM identities ORDER BY username LIMIT $1 OFFSET $2`
	rows, err := r.db.Pool.Query(ctx, q, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("select identities: %w", err)
	}
	items, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collect(rows pgx.Rows) ([]*domain.Identity, error) {
	defer rows.Close()

	out := make([]*domain.Identity, 0)
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

func birthdateArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// Create inserts a new row. Unique violations surface as domain.ErrAlreadyExists.
func (r *IdentityRepo) Create(ctx context.Context, i *domain.Identity) error {
	const q = `
INSERT INTO identities (` + identityColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Pool.Exec(ctx, q, i.ID, i.Username, i.Email, i.PasswordHash, i.Role.String(), i.Active,
		i.FirstName, i.LastName, birthdateArg(i.Birthdate), i.Country.Name, i.Country.ISO, i.CreatedAt, i.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

// Save updates the profile columns of the row with the same id. role and
// active are left alone.
func (r *IdentityRepo) Save(ctx context.Context, i *domain.Identity) error {
	const q = `
UPDATE identities
SET email = $2, password_hash = $3, firstname = $4, lastname = $5,
    birthdate = $6, country_name = $7, country_iso = $8, updated_at = $9
WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, i.ID, i.Email, i.PasswordHash,
		i.FirstName, i.LastName, birthdateArg(i.Birthdate), i.Country.Name, i.Country.ISO, i.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *IdentityRepo) SetActive(ctx context.Context, id string, active bool) error {
	const q = `UPDATE identities SET active = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id, active)
	if err != nil {
		return fmt.Errorf("update identity activation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *IdentityRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
