package eventadminstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/txn"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoleAdmin is the only per-event role.
const RoleAdmin = "admin"

var (
	ErrAlreadyAdmin = errors.New("user is already an admin of this event")
	ErrLastAdmin    = errors.New("cannot remove the last admin")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_admins")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_event_admins_event_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_event_admins_user"),
		},
	})
	return err
}

// Add grants userID admin rights on eventID.
func (s *Store) Add(ctx context.Context, eventID, userID primitive.ObjectID) error {
	_, err := s.c.InsertOne(ctx, models.EventAdmin{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		Role:      RoleAdmin,
		CreatedAt: time.Now().UTC(),
	})
	if wafflemongo.IsDup(err) {
		return ErrAlreadyAdmin
	}
	return err
}

func (s *Store) IsAdmin(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// List returns the admins of an event in the order they were added.
func (s *Store) List(ctx context.Context, eventID primitive.ObjectID) ([]models.EventAdmin, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.EventAdmin
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// Remove revokes userID's admin rights. Removing oneself fails with
// ErrLastAdmin when no other admin would remain, including when two admins
// remove themselves at the same time.
func (s *Store) Remove(ctx context.Context, eventID, userID, actorID primitive.ObjectID) error {
	return txn.Run(ctx, s.c.Database().Client(), nil, func(ctx context.Context) error {
		var row models.EventAdmin
		err := s.c.FindOneAndDelete(ctx, bson.M{"event_id": eventID, "user_id": userID}).Decode(&row)
		if err != nil {
			return err
		}
		if userID != actorID {
			return nil
		}
		left, err := s.Count(ctx, eventID)
		if err != nil {
			return err
		}
		if left > 0 {
			return nil
		}
		// Put the row back; inside a transaction the abort does the same.
		if _, err := s.c.InsertOne(ctx, row); err != nil && !wafflemongo.IsDup(err) {
			return err
		}
		return ErrLastAdmin
	})
}

// EventIDsForUser lists the events userID administers.
func (s *Store) EventIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "event_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

// DeleteByUser drops every admin row for a deleted account.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
