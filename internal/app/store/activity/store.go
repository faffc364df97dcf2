// internal/app/store/activity/store.go
package activity

import (
	"context"
	"time"

	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages an event's on-site activity feed.
type Store struct {
	c *mongo.Collection
}

// New creates a new activity Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_logs")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Feed by event, newest first
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_activity_event_created"),
		},
		// Per-volunteer history
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "volunteer_id", Value: 1}},
			Options: options.Index().SetName("idx_activity_event_volunteer"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create records a new activity entry.
func (s *Store) Create(ctx context.Context, entry models.ActivityLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// Log records an entry of the given type. volunteerID and relatedID may be nil.
func (s *Store) Log(ctx context.Context, eventID primitive.ObjectID, typ, description string, volunteerID, relatedID *primitive.ObjectID, meta map[string]string) error {
	return s.Create(ctx, models.ActivityLog{
		EventID:     eventID,
		Type:        typ,
		Description: description,
		VolunteerID: volunteerID,
		RelatedID:   relatedID,
		Meta:        meta,
	})
}

// ListByEvent returns a page of the event's feed, newest first.
// A limit of 0 returns everything.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID, limit, offset int64) ([]models.ActivityLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ActivityLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByEvent counts the event's feed entries.
func (s *Store) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}
