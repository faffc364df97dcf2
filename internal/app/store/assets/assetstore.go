package assetstore

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
	ErrInvalidStatus = errors.New("invalid asset status")
	// ErrNotAvailable is returned by SetAssigned when any asset was not
	// available at write time.
	ErrNotAvailable = errors.New("asset is not available")
	errNameRequired = errors.New("asset name is required")
)

type Store struct {
	c           *mongo.Collection
	assignments *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("assets"),
		assignments: db.Collection("asset_assignments"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetName("idx_assets_event_name"),
	})
	return err
}

func validStatus(st string) bool {
	return st == models.AssetAvailable || st == models.AssetAssigned
}

// Create inserts an asset. An empty status defaults to available.
func (s *Store) Create(ctx context.Context, a models.Asset) (models.Asset, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return models.Asset{}, errNameRequired
	}
	a.Type = strings.TrimSpace(a.Type)
	a.Identifier = strings.TrimSpace(a.Identifier)
	if a.Status == "" {
		a.Status = models.AssetAvailable
	}
	if !validStatus(a.Status) {
		return models.Asset{}, ErrInvalidStatus
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Asset{}, err
	}
	return a, nil
}

// Update holds the editable asset fields.
type Update struct {
	Name       string
	Type       string
	Identifier string
	Status     string
}

func (s *Store) Update(ctx context.Context, eventID, id primitive.ObjectID, upd Update) error {
	name := strings.TrimSpace(upd.Name)
	if name == "" {
		return errNameRequired
	}
	set := bson.M{
		"name":       name,
		"type":       strings.TrimSpace(upd.Type),
		"identifier": strings.TrimSpace(upd.Identifier),
		"updated_at": time.Now().UTC(),
	}
	if upd.Status != "" {
		if !validStatus(upd.Status) {
			return ErrInvalidStatus
		}
		set["status"] = upd.Status
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "event_id": eventID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the asset and its checkout history.
func (s *Store) Delete(ctx context.Context, eventID, id primitive.ObjectID) (int64, error) {
	if _, err := s.assignments.DeleteMany(ctx, bson.M{"event_id": eventID, "asset_id": id}); err != nil {
		return 0, err
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) GetByID(ctx context.Context, eventID, id primitive.ObjectID) (models.Asset, error) {
	var a models.Asset
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "event_id": eventID}).Decode(&a); err != nil {
		return models.Asset{}, err
	}
	return a, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Asset, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Asset
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, eventID primitive.ObjectID) ([]models.Asset, error) {
	return s.find(ctx, bson.M{"event_id": eventID})
}

// ListAvailable returns assets that can be checked out right now.
func (s *Store) ListAvailable(ctx context.Context, eventID primitive.ObjectID) ([]models.Asset, error) {
	return s.find(ctx, bson.M{"event_id": eventID, "status": models.AssetAvailable})
}

func (s *Store) ListByIDs(ctx context.Context, eventID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"event_id": eventID, "_id": bson.M{"$in": ids}})
}

// SetAssigned marks the available assets among ids as held by volunteerID.
// It returns ErrNotAvailable when fewer than len(ids) were updated; callers
// run it in a transaction so the partial write is rolled back.
func (s *Store) SetAssigned(ctx context.Context, eventID primitive.ObjectID, ids []primitive.ObjectID, volunteerID primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	res, err := s.c.UpdateMany(ctx, bson.M{
		"event_id": eventID,
		"_id":      bson.M{"$in": ids},
		"status":   models.AssetAvailable,
	}, bson.M{
		"$set": bson.M{"status": models.AssetAssigned, "volunteer_id": volunteerID, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.ModifiedCount < int64(len(ids)) {
		return ErrNotAvailable
	}
	return nil
}

// SetAvailable returns the assets to the pool and clears the holder.
func (s *Store) SetAvailable(ctx context.Context, eventID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx, bson.M{"event_id": eventID, "_id": bson.M{"$in": ids}}, bson.M{
		"$set":   bson.M{"status": models.AssetAvailable, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"volunteer_id": ""},
	})
	return err
}
