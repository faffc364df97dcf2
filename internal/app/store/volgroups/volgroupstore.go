// internal/app/store/volgroups/volgroupstore.go
package volgroupstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c          *mongo.Collection
	volunteers *mongo.Collection
}

var (
	ErrDuplicateGroupName = errors.New("a group with this name already exists in the event")
	errNameRequired       = errors.New("group name is required")
)

func New(db *mongo.Database) *Store {
	return &Store{
		c:          db.Collection("volunteer_groups"),
		volunteers: db.Collection("volunteers"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "name_ci", Value: 1}},
		Options: options.Index().SetName("idx_volgroups_event_name").SetUnique(true),
	})
	return err
}

func (s *Store) GetByID(ctx context.Context, eventID, id primitive.ObjectID) (models.VolunteerGroup, error) {
	var g models.VolunteerGroup
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "event_id": eventID}).Decode(&g); err != nil {
		return models.VolunteerGroup{}, err
	}
	return g, nil
}

func (s *Store) Create(ctx context.Context, g models.VolunteerGroup) (models.VolunteerGroup, error) {
	g.Name = normalize.Group(g.Name)
	if g.Name == "" {
		return models.VolunteerGroup{}, errNameRequired
	}
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.VolunteerGroup{}, ErrDuplicateGroupName
		}
		return models.VolunteerGroup{}, err
	}
	return g, nil
}

// List returns the event's groups ordered by name.
func (s *Store) List(ctx context.Context, eventID primitive.ObjectID) ([]models.VolunteerGroup, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.VolunteerGroup
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByNameMap indexes the event's groups by folded name, for CSV import.
func (s *Store) GetByNameMap(ctx context.Context, eventID primitive.ObjectID) (map[string]models.VolunteerGroup, error) {
	groups, err := s.List(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.VolunteerGroup, len(groups))
	for _, g := range groups {
		out[g.NameCI] = g
	}
	return out, nil
}

// EnsureByName returns the event's groups keyed by folded name, creating
// any of names that do not exist yet. Blank names are skipped.
func (s *Store) EnsureByName(ctx context.Context, eventID primitive.ObjectID, names []string) (map[string]models.VolunteerGroup, error) {
	byName, err := s.GetByNameMap(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		n = normalize.Group(n)
		key := text.Fold(n)
		if n == "" {
			continue
		}
		if _, ok := byName[key]; ok {
			continue
		}
		g, err := s.Create(ctx, models.VolunteerGroup{EventID: eventID, Name: n})
		if errors.Is(err, ErrDuplicateGroupName) {
			// Created concurrently; read it back.
			g, err = s.getByNameCI(ctx, eventID, key)
		}
		if err != nil {
			return nil, err
		}
		byName[key] = g
	}
	return byName, nil
}

func (s *Store) getByNameCI(ctx context.Context, eventID primitive.ObjectID, nameCI string) (models.VolunteerGroup, error) {
	var g models.VolunteerGroup
	if err := s.c.FindOne(ctx, bson.M{"event_id": eventID, "name_ci": nameCI}).Decode(&g); err != nil {
		return models.VolunteerGroup{}, err
	}
	return g, nil
}

// Update holds the editable group fields.
type Update struct {
	Name            string
	Color           string
	Description     string
	MaxHoursDefault *float64
}

// Update edits a group. A rename is carried to the denormalized group
// name on the event's volunteers.
func (s *Store) Update(ctx context.Context, eventID, id primitive.ObjectID, upd Update) error {
	old, err := s.GetByID(ctx, eventID, id)
	if err != nil {
		return err
	}
	name := normalize.Group(upd.Name)
	if strings.TrimSpace(name) == "" {
		return errNameRequired
	}
	set := bson.M{
		"name":              name,
		"name_ci":           text.Fold(name),
		"color":             upd.Color,
		"description":       upd.Description,
		"max_hours_default": upd.MaxHoursDefault,
		"updated_at":        time.Now().UTC(),
	}
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroupName
		}
		return err
	}
	if old.Name != name {
		_, err = s.volunteers.UpdateMany(ctx,
			bson.M{"event_id": eventID, "group_id": id},
			bson.M{"$set": bson.M{"group": name}})
	}
	return err
}

// Delete removes a group and clears it from the volunteers that carried it.
// Returns the number of groups deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, eventID, id primitive.ObjectID) (int64, error) {
	g, err := s.GetByID(ctx, eventID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if _, err := s.volunteers.UpdateMany(ctx,
		bson.M{"event_id": eventID, "$or": []bson.M{{"group_id": id}, {"group": g.Name}}},
		bson.M{"$unset": bson.M{"group": "", "group_id": ""}},
	); err != nil {
		return 0, err
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CopyToEvent duplicates every group of from into to and returns old → new ids.
func (s *Store) CopyToEvent(ctx context.Context, from, to primitive.ObjectID) (map[primitive.ObjectID]primitive.ObjectID, error) {
	groups, err := s.List(ctx, from)
	if err != nil {
		return nil, err
	}
	idMap := make(map[primitive.ObjectID]primitive.ObjectID, len(groups))
	if len(groups) == 0 {
		return idMap, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(groups))
	for _, g := range groups {
		newID := primitive.NewObjectID()
		idMap[g.ID] = newID
		g.ID = newID
		g.EventID = to
		g.CreatedAt = now
		g.UpdatedAt = now
		docs = append(docs, g)
	}
	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return idMap, nil
}

func (s *Store) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}
