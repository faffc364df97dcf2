package shifttemplatestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrBadClock     = errors.New("times must be HH:MM")
	errNameRequired = errors.New("template name is required")
)

// Store holds per-user shift templates.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("shift_templates")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetName("idx_shift_templates_user_name"),
	})
	return err
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}

// Create validates and stores a template. When both clock times are set
// DurationHours is derived from them; an end before the start wraps past
// midnight.
func (s *Store) Create(ctx context.Context, t models.ShiftTemplate) (models.ShiftTemplate, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return models.ShiftTemplate{}, errNameRequired
	}
	t.DefaultStart = strings.TrimSpace(t.DefaultStart)
	t.DefaultEnd = strings.TrimSpace(t.DefaultEnd)
	if !validClock(t.DefaultStart) || !validClock(t.DefaultEnd) {
		return models.ShiftTemplate{}, ErrBadClock
	}
	start, _ := time.Parse("15:04", t.DefaultStart)
	end, _ := time.Parse("15:04", t.DefaultEnd)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	t.DurationHours = end.Sub(start).Hours()
	t.Description = strings.TrimSpace(t.Description)
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.ShiftTemplate{}, err
	}
	return t, nil
}

func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ShiftTemplate, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ShiftTemplate
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, userID, id primitive.ObjectID) (models.ShiftTemplate, error) {
	var t models.ShiftTemplate
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&t); err != nil {
		return models.ShiftTemplate{}, err
	}
	return t, nil
}

// Delete removes a template owned by userID.
func (s *Store) Delete(ctx context.Context, userID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
