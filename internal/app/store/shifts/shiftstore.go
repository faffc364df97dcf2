package shiftstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/recurrence"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrEndBeforeStart = errors.New("end time must be after start time")
	errNameRequired   = errors.New("shift name is required")
)

type Store struct {
	c           *mongo.Collection
	assignments *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("shifts"),
		assignments: db.Collection("assignments"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "start_time", Value: 1}},
		Options: options.Index().SetName("idx_shifts_event_start"),
	})
	return err
}

func prepare(sh *models.Shift, eventID primitive.ObjectID, now time.Time) error {
	sh.Name = strings.TrimSpace(sh.Name)
	if sh.Name == "" {
		return errNameRequired
	}
	if !sh.EndTime.After(sh.StartTime) {
		return ErrEndBeforeStart
	}
	if sh.ID.IsZero() {
		sh.ID = primitive.NewObjectID()
	}
	sh.EventID = eventID
	sh.StartTime = sh.StartTime.UTC()
	sh.EndTime = sh.EndTime.UTC()
	sh.CreatedAt = now
	sh.UpdatedAt = now
	return nil
}

func (s *Store) Create(ctx context.Context, sh models.Shift) (models.Shift, error) {
	if err := prepare(&sh, sh.EventID, time.Now().UTC()); err != nil {
		return models.Shift{}, err
	}
	if _, err := s.c.InsertOne(ctx, sh); err != nil {
		return models.Shift{}, err
	}
	return sh, nil
}

// CreateMany inserts a batch (CSV import, recurring series, event copy).
func (s *Store) CreateMany(ctx context.Context, eventID primitive.ObjectID, shifts []models.Shift) (int, error) {
	if len(shifts) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(shifts))
	for i := range shifts {
		if err := prepare(&shifts[i], eventID, now); err != nil {
			return 0, err
		}
		docs = append(docs, shifts[i])
	}
	res, err := s.c.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Update holds the editable shift fields.
type Update struct {
	Name           string
	StartTime      time.Time
	EndTime        time.Time
	RequiredGroups map[string]int
	AllowedGroups  []string
	ExcludedGroups []string
}

func (s *Store) Update(ctx context.Context, eventID, id primitive.ObjectID, upd Update) error {
	name := strings.TrimSpace(upd.Name)
	if name == "" {
		return errNameRequired
	}
	if !upd.EndTime.After(upd.StartTime) {
		return ErrEndBeforeStart
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "event_id": eventID}, bson.M{"$set": bson.M{
		"name":            name,
		"start_time":      upd.StartTime.UTC(),
		"end_time":        upd.EndTime.UTC(),
		"required_groups": upd.RequiredGroups,
		"allowed_groups":  upd.AllowedGroups,
		"excluded_groups": upd.ExcludedGroups,
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

// Delete removes a shift and its assignments.
func (s *Store) Delete(ctx context.Context, eventID, id primitive.ObjectID) (int64, error) {
	if _, err := s.assignments.DeleteMany(ctx, bson.M{"event_id": eventID, "shift_id": id}); err != nil {
		return 0, err
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) GetByID(ctx context.Context, eventID, id primitive.ObjectID) (models.Shift, error) {
	var sh models.Shift
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "event_id": eventID}).Decode(&sh); err != nil {
		return models.Shift{}, err
	}
	return sh, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Shift, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "name", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Shift
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the event's shifts in start order.
func (s *Store) List(ctx context.Context, eventID primitive.ObjectID) ([]models.Shift, error) {
	return s.find(ctx, bson.M{"event_id": eventID})
}

func (s *Store) ListByIDs(ctx context.Context, eventID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Shift, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"event_id": eventID, "_id": bson.M{"$in": ids}})
}

func (s *Store) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// CopyToEvent duplicates the shifts of from into to, moved by days in loc.
func (s *Store) CopyToEvent(ctx context.Context, from, to primitive.ObjectID, days int, loc *time.Location) (int, error) {
	shifts, err := s.List(ctx, from)
	if err != nil {
		return 0, err
	}
	for i := range shifts {
		shifts[i].ID = primitive.NilObjectID
		shifts[i].StartTime, shifts[i].EndTime = recurrence.ShiftDates(shifts[i].StartTime, shifts[i].EndTime, days, loc)
	}
	return s.CreateMany(ctx, to, shifts)
}
