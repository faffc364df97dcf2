package eventstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/txn"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ChildCollections hold documents keyed by event_id and are purged by DeleteCascade.
var ChildCollections = []string{
	"assignments",
	"shifts",
	"volunteers",
	"volunteer_groups",
	"asset_assignments",
	"assets",
	"activity_logs",
	"event_invitations",
	"event_admins",
}

var errNameRequired = errors.New("event name is required")

type Store struct {
	c      *mongo.Collection
	admins *mongo.Collection
	log    *zap.Logger
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("events"),
		admins: db.Collection("event_admins"),
		log:    zap.NewNop(),
	}
}

// WithLogger sets the logger used for cascade diagnostics.
func (s *Store) WithLogger(l *zap.Logger) *Store {
	if l != nil {
		s.log = l
	}
	return s
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_events_owner_date"),
		},
	})
	return err
}

// Create inserts an event. TimeZone defaults to UTC.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.Name = normalize.Name(e.Name)
	if e.Name == "" {
		return models.Event{}, errNameRequired
	}
	e.ID = primitive.NewObjectID()
	e.NameCI = text.Fold(e.Name)
	if e.TimeZone == "" {
		e.TimeZone = "UTC"
	}
	e.RecurrenceRule = strings.ToUpper(strings.TrimSpace(e.RecurrenceRule))
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForUser returns events the user owns or administers, newest date first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	raw, err := s.admins.Distinct(ctx, "event_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return s.find(ctx, bson.M{"$or": []bson.M{
		{"owner_id": userID},
		{"_id": bson.M{"$in": ids}},
	}})
}

// ListOwnedBy returns the events created by ownerID.
func (s *Store) ListOwnedBy(ctx context.Context, ownerID primitive.ObjectID) ([]models.Event, error) {
	return s.find(ctx, bson.M{"owner_id": ownerID})
}

// Settings are the editable fields on the event settings page.
type Settings struct {
	Name           string
	Description    string
	Date           time.Time
	TimeZone       string
	RecurrenceRule string
}

// UpdateSettings overwrites the editable fields of an event.
func (s *Store) UpdateSettings(ctx context.Context, id primitive.ObjectID, in Settings) error {
	name := normalize.Name(in.Name)
	if name == "" {
		return errNameRequired
	}
	tz := in.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":            name,
		"name_ci":         text.Fold(name),
		"description":     in.Description,
		"date":            in.Date,
		"timezone":        tz,
		"recurrence_rule": strings.ToUpper(strings.TrimSpace(in.RecurrenceRule)),
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes only the event document.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteCascade removes the event and every document hanging off it.
func (s *Store) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	db := s.c.Database()
	return txn.Run(ctx, db.Client(), s.log, func(ctx context.Context) error {
		for _, name := range ChildCollections {
			if _, err := db.Collection(name).DeleteMany(ctx, bson.M{"event_id": id}); err != nil {
				return err
			}
		}
		_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
}

// DeleteOwnedCascade cascades every event owned by ownerID and returns how many were removed.
func (s *Store) DeleteOwnedCascade(ctx context.Context, ownerID primitive.ObjectID) (int, error) {
	events, err := s.ListOwnedBy(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	for i, e := range events {
		if err := s.DeleteCascade(ctx, e.ID); err != nil {
			return i, err
		}
	}
	return len(events), nil
}
