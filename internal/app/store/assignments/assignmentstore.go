package assignmentstore

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
	"go.uber.org/zap"
)

var ErrAlreadyAssigned = errors.New("volunteer already assigned to shift")

type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignments"), log: zap.NewNop()}
}

// WithLogger sets the logger used for transaction diagnostics.
func (s *Store) WithLogger(l *zap.Logger) *Store {
	if l != nil {
		s.log = l
	}
	return s
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shift_id", Value: 1}, {Key: "volunteer_id", Value: 1}},
			Options: options.Index().SetName("uniq_assignments_shift_volunteer").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "volunteer_id", Value: 1}},
			Options: options.Index().SetName("idx_assignments_event_volunteer"),
		},
	})
	return err
}

func (s *Store) Create(ctx context.Context, eventID, shiftID, volunteerID primitive.ObjectID) (models.Assignment, error) {
	a := models.Assignment{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		ShiftID:     shiftID,
		VolunteerID: volunteerID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Assignment{}, ErrAlreadyAssigned
		}
		return models.Assignment{}, err
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, eventID, id primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "event_id": eventID}).Decode(&a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

func (s *Store) Delete(ctx context.Context, eventID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ClearEvent removes every assignment in the event.
func (s *Store) ClearEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Assignment, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Assignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Assignment, error) {
	return s.find(ctx, bson.M{"event_id": eventID})
}

func (s *Store) ListByVolunteer(ctx context.Context, eventID, volunteerID primitive.ObjectID) ([]models.Assignment, error) {
	return s.find(ctx, bson.M{"event_id": eventID, "volunteer_id": volunteerID})
}

// ListActive returns assignments that are checked in and not yet checked out.
func (s *Store) ListActive(ctx context.Context, eventID primitive.ObjectID) ([]models.Assignment, error) {
	return s.find(ctx, bson.M{
		"event_id":       eventID,
		"checked_in":     true,
		"checked_out_at": bson.M{"$exists": false},
	})
}

func (s *Store) CountByShift(ctx context.Context, eventID, shiftID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID, "shift_id": shiftID})
}

func (s *Store) update(ctx context.Context, eventID, id primitive.ObjectID, upd bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "event_id": eventID}, upd)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CheckIn marks the volunteer on site. A previous checkout is cleared so a
// volunteer can return to the same shift.
func (s *Store) CheckIn(ctx context.Context, eventID, id primitive.ObjectID, at time.Time) error {
	return s.update(ctx, eventID, id, bson.M{
		"$set":   bson.M{"checked_in": true, "checked_in_at": at.UTC()},
		"$unset": bson.M{"checked_out_at": ""},
	})
}

// SetCheckedIn flips the check-in flag from the roster toggle. Clearing it
// also clears both timestamps.
func (s *Store) SetCheckedIn(ctx context.Context, eventID, id primitive.ObjectID, in bool, at time.Time) error {
	if in {
		return s.CheckIn(ctx, eventID, id, at)
	}
	return s.update(ctx, eventID, id, bson.M{
		"$set":   bson.M{"checked_in": false},
		"$unset": bson.M{"checked_in_at": "", "checked_out_at": ""},
	})
}

// CheckOut stamps the checkout time. checked_in stays true so reports still
// count the volunteer as present.
func (s *Store) CheckOut(ctx context.Context, eventID, id primitive.ObjectID, at time.Time) error {
	return s.update(ctx, eventID, id, bson.M{"$set": bson.M{"checked_out_at": at.UTC()}})
}

func (s *Store) SetLateDismissed(ctx context.Context, eventID, id primitive.ObjectID, dismissed bool) error {
	return s.update(ctx, eventID, id, bson.M{"$set": bson.M{"late_dismissed": dismissed}})
}

// ActiveForVolunteer returns the volunteer's open assignment, or
// mongo.ErrNoDocuments when they are not on site.
func (s *Store) ActiveForVolunteer(ctx context.Context, eventID, volunteerID primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	err := s.c.FindOne(ctx, bson.M{
		"event_id":       eventID,
		"volunteer_id":   volunteerID,
		"checked_in":     true,
		"checked_out_at": bson.M{"$exists": false},
	}, options.FindOne().SetSort(bson.D{{Key: "checked_in_at", Value: -1}})).Decode(&a)
	if err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// Swap exchanges the volunteers of two assignments in the same event.
func (s *Store) Swap(ctx context.Context, eventID, id1, id2 primitive.ObjectID) error {
	a1, err := s.GetByID(ctx, eventID, id1)
	if err != nil {
		return err
	}
	a2, err := s.GetByID(ctx, eventID, id2)
	if err != nil {
		return err
	}
	if a1.ShiftID == a2.ShiftID {
		return nil
	}
	err = txn.Run(ctx, s.c.Database().Client(), s.log, func(ctx context.Context) error {
		if err := s.update(ctx, eventID, id1, bson.M{"$set": bson.M{"volunteer_id": a2.VolunteerID}}); err != nil {
			return err
		}
		return s.update(ctx, eventID, id2, bson.M{"$set": bson.M{"volunteer_id": a1.VolunteerID}})
	})
	if wafflemongo.IsDup(err) {
		return ErrAlreadyAssigned
	}
	return err
}

// Pair is one shift/volunteer binding from the optimizer.
type Pair struct {
	ShiftID     primitive.ObjectID
	VolunteerID primitive.ObjectID
}

// ReplaceEvent deletes the event's assignments and inserts pairs in one
// transaction. Duplicate pairs are collapsed.
func (s *Store) ReplaceEvent(ctx context.Context, eventID primitive.ObjectID, pairs []Pair) (int, error) {
	now := time.Now().UTC()
	seen := make(map[Pair]bool, len(pairs))
	docs := make([]interface{}, 0, len(pairs))
	for _, p := range pairs {
		if seen[p] || p.ShiftID.IsZero() || p.VolunteerID.IsZero() {
			continue
		}
		seen[p] = true
		docs = append(docs, models.Assignment{
			ID:          primitive.NewObjectID(),
			EventID:     eventID,
			ShiftID:     p.ShiftID,
			VolunteerID: p.VolunteerID,
			CreatedAt:   now,
		})
	}

	err := txn.Run(ctx, s.c.Database().Client(), s.log, func(ctx context.Context) error {
		if _, err := s.c.DeleteMany(ctx, bson.M{"event_id": eventID}); err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		_, err := s.c.InsertMany(ctx, docs)
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
