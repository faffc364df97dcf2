package contactstore

import (
	"context"
	"time"

	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contact_submissions")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_contact_created"),
	})
	return err
}

func (s *Store) Create(ctx context.Context, sub models.ContactSubmission) (models.ContactSubmission, error) {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.ContactSubmission{}, err
	}
	return sub, nil
}

// ListRecent returns the newest submissions first.
func (s *Store) ListRecent(ctx context.Context, limit int64) ([]models.ContactSubmission, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ContactSubmission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
