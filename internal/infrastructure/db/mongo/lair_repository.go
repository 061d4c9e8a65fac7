package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

const collectionLairs = "lairs"

type LairRepository struct {
	col *mongo.Collection
}

func NewLairRepository(db *mongo.Database) *LairRepository {
	return &LairRepository{col: db.Collection(collectionLairs)}
}

type lairDocument struct {
	ID          string             `bson:"_id"`
	OwnerID     string             `bson:"account_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Image       string             `bson:"image"`
	Location    domain.Coordinates `bson:"location"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func toLairDocument(l *domain.Lair) lairDocument {
	return lairDocument{
		ID:          l.ID.String(),
		OwnerID:     l.OwnerID.String(),
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Location:    l.Location,
		CreatedAt:   l.CreatedAt,
	}
}

func (d lairDocument) toDomain() (*domain.Lair, error) {
	id, err := domain.ParseIdentity(d.ID)
	if err != nil {
		return nil, fmt.Errorf("lair id: %w", err)
	}
	owner, err := domain.ParseIdentity(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("lair owner: %w", err)
	}
	return &domain.Lair{
		ID:          id,
		OwnerID:     owner,
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		Location:    d.Location,
		CreatedAt:   d.CreatedAt.UTC(),
	}, nil
}

// Create inserts a new lair document.
func (r *LairRepository) Create(ctx context.Context, l *domain.Lair) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toLairDocument(l)); err != nil {
		return fmt.Errorf("insert lair: %w", err)
	}
	return nil
}

// FindByID retrieves a lair by id.
func (r *LairRepository) FindByID(ctx context.Context, id domain.Identity) (*domain.Lair, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc lairDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLairNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// DeleteOwned deletes the lair only when both id and owner match.
func (r *LairRepository) DeleteOwned(ctx context.Context, id, owner domain.Identity) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id.String(), "account_id": owner.String()})
	if err != nil {
		return false, fmt.Errorf("delete lair: %w", err)
	}
	return res.DeletedCount == 1, nil
}

// EnsureIndexes creates necessary indexes on the lairs collection.
func (r *LairRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "account_id", Value: 1}}})
	return err
}
