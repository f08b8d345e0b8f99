package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/userhub/identity-api/internal/core/domain"
)

const collectionIdentities = "identities"

// IdentityRepository is the MongoDB credential store.
type IdentityRepository struct {
	col *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{col: db.Collection(collectionIdentities)}
}

type mongoIdentity struct {
	ID           string         `bson:"_id"`
	Username     string         `bson:"username"`
	Email        string         `bson:"email"`
	PasswordHash string         `bson:"password_hash"`
	Role         string         `bson:"role"`
	Active       bool           `bson:"active"`
	FirstName    string         `bson:"firstname"`
	LastName     string         `bson:"lastname"`
	Birthdate    time.Time      `bson:"birthdate"`
	Country      domain.Country `bson:"country"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}

func toDocument(i *domain.Identity) mongoIdentity {
	return mongoIdentity{
		ID:           i.ID,
		Username:     i.Username,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		Role:         i.Role.String(),
		Active:       i.Active,
		FirstName:    i.FirstName,
		LastName:     i.LastName,
		Birthdate:    i.Birthdate,
		Country:      i.Country,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (d mongoIdentity) toDomain() (*domain.Identity, error) {
	role, ok := domain.ParseRole(d.Role)
	if !ok {
		return nil, fmt.Errorf("identity %s: unknown role %q", d.ID, d.Role)
	}
	return &domain.Identity{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         role,
		Active:       d.Active,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Birthdate:    d.Birthdate.UTC(),
		Country:      d.Country,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoIdentity
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return doc.toDomain()
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByCountry returns identities of one country ordered by username.
func (r *IdentityRepository) FindByCountry(ctx context.Context, country domain.Country) ([]*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"country.name": country.Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("find identities by country: %w", err)
	}
	return decodeAll(ctx, cur)
}

// FindAllPaged returns one username-ordered page and the collection size.
func (r *IdentityRepository) FindAllPaged(ctx context.Context, page, size int) ([]*domain.Identity, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count identities: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetSkip(int64(page) * int64(size)).
		SetLimit(int64(size))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find identities: %w", err)
	}
	items, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]*domain.Identity, error) {
	defer cur.Close(ctx)

	var docs []mongoIdentity
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode identities: %w", err)
	}
	out := make([]*domain.Identity, 0, len(docs))
	for _, d := range docs {
		i, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// Create inserts a new identity. Unique index violations surface as domain.ErrAlreadyExists.
func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDocument(identity)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

// profileUpdate is the $set document written by Save. It never carries
// role, active or username.
func profileUpdate(i *domain.Identity) bson.M {
	return bson.M{"$set": bson.M{
		"email":         i.Email,
		"password_hash": i.PasswordHash,
		"firstname":     i.FirstName,
		"lastname":      i.LastName,
		"birthdate":     i.Birthdate,
		"country":       i.Country,
		"updated_at":    i.UpdatedAt,
	}}
}

// Save updates the profile fields of the document with the same id.
func (r *IdentityRepository) Save(ctx context.Context, identity *domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": identity.ID}, profileUpdate(identity))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("update identity: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetActive flips the activation flag with a single-document update.
func (r *IdentityRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"active": active, "updated_at": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update identity activation: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *IdentityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique and lookup indexes on the identities collection.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "country.name", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
