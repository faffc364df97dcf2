package assetassignstore

import (
	"context"
	"time"

	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps the checkout history of assets. A row with no checked_in_at
// is an open checkout.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("asset_assignments")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "volunteer_id", Value: 1}},
			Options: options.Index().SetName("idx_asset_assignments_event_volunteer"),
		},
		{
			Keys:    bson.D{{Key: "asset_id", Value: 1}, {Key: "checked_out_at", Value: -1}},
			Options: options.Index().SetName("idx_asset_assignments_asset"),
		},
		{
			// one open checkout per asset
			Keys: bson.D{{Key: "asset_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_asset_assignments_open_asset").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"open": true}),
		},
	})
	return err
}

// Open records a checkout of each asset to volunteerID. An asset that
// already has an open checkout fails with a duplicate-key error once
// EnsureIndexes has run.
func (s *Store) Open(ctx context.Context, eventID, volunteerID primitive.ObjectID, assetIDs []primitive.ObjectID, at time.Time) error {
	if len(assetIDs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(assetIDs))
	for _, id := range assetIDs {
		docs = append(docs, models.AssetAssignment{
			ID:           primitive.NewObjectID(),
			EventID:      eventID,
			AssetID:      id,
			VolunteerID:  volunteerID,
			CheckedOutAt: at.UTC(),
			Open:         true,
		})
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

func closeUpdate(at time.Time) bson.M {
	return bson.M{"$set": bson.M{"checked_in_at": at.UTC()}, "$unset": bson.M{"open": ""}}
}

func openFilter(eventID primitive.ObjectID) bson.M {
	return bson.M{"event_id": eventID, "checked_in_at": bson.M{"$exists": false}}
}

// CloseOpen stamps the return time on the asset's open checkout.
func (s *Store) CloseOpen(ctx context.Context, eventID, assetID primitive.ObjectID, at time.Time) (int64, error) {
	f := openFilter(eventID)
	f["asset_id"] = assetID
	res, err := s.c.UpdateMany(ctx, f, closeUpdate(at))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CloseForVolunteer returns the given assets held by volunteerID. A nil
// assetIDs returns everything the volunteer holds. The returned ids are
// the assets that were closed.
func (s *Store) CloseForVolunteer(ctx context.Context, eventID, volunteerID primitive.ObjectID, assetIDs []primitive.ObjectID, at time.Time) ([]primitive.ObjectID, error) {
	f := openFilter(eventID)
	f["volunteer_id"] = volunteerID
	if assetIDs != nil {
		if len(assetIDs) == 0 {
			return nil, nil
		}
		f["asset_id"] = bson.M{"$in": assetIDs}
	}
	open, err := s.find(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(open))
	for _, a := range open {
		ids = append(ids, a.AssetID)
	}
	if _, err := s.c.UpdateMany(ctx, f, closeUpdate(at)); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.AssetAssignment, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "checked_out_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.AssetAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListOpenByVolunteer(ctx context.Context, eventID, volunteerID primitive.ObjectID) ([]models.AssetAssignment, error) {
	f := openFilter(eventID)
	f["volunteer_id"] = volunteerID
	return s.find(ctx, f)
}

func (s *Store) ListOpenByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.AssetAssignment, error) {
	return s.find(ctx, openFilter(eventID))
}

// OpenHolder returns the volunteer currently holding the asset.
func (s *Store) OpenHolder(ctx context.Context, eventID, assetID primitive.ObjectID) (primitive.ObjectID, error) {
	f := openFilter(eventID)
	f["asset_id"] = assetID
	var a models.AssetAssignment
	err := s.c.FindOne(ctx, f, options.FindOne().SetSort(bson.D{{Key: "checked_out_at", Value: -1}})).Decode(&a)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return a.VolunteerID, nil
}
