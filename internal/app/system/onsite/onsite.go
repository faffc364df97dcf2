// Package onsite applies day-of-event changes (check-in, checkout, asset
// hand-out and return) and records each one in the event activity feed.
//
// The check-in page, the kiosk and the asset page all go through a Service so
// the feed reads the same no matter where the change was made.
package onsite

import (
	"context"
	"errors"
	"time"

	activitystore "github.com/dalemusser/shiftboard/internal/app/store/activity"
	assetassignstore "github.com/dalemusser/shiftboard/internal/app/store/assetassign"
	assetstore "github.com/dalemusser/shiftboard/internal/app/store/assets"
	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/txn"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrAssetOut is returned when handing out an asset someone already holds.
var ErrAssetOut = errors.New("asset is already checked out")

// Service wraps the stores touched by on-site actions.
type Service struct {
	Assignments *assignmentstore.Store
	Assets      *assetstore.Store
	Holdings    *assetassignstore.Store
	Volunteers  *volunteerstore.Store
	Activity    *activitystore.Store
	Log         *zap.Logger

	client *mongo.Client
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		Assignments: assignmentstore.New(db).WithLogger(logger),
		Assets:      assetstore.New(db),
		Holdings:    assetassignstore.New(db),
		Volunteers:  volunteerstore.New(db),
		Activity:    activitystore.New(db),
		Log:         logger,
		client:      db.Client(),
	}
}

// record writes a feed entry. The change itself has already happened, so a
// failed write is only logged.
func (s *Service) record(ctx context.Context, eventID primitive.ObjectID, typ, desc string, volID, relatedID *primitive.ObjectID, meta map[string]string) {
	if err := s.Activity.Log(ctx, eventID, typ, desc, volID, relatedID, meta); err != nil {
		s.Log.Warn("activity log write failed",
			zap.Error(err),
			zap.String("event_id", eventID.Hex()),
			zap.String("type", typ))
	}
}

// CheckIn marks the volunteer on site for a.
func (s *Service) CheckIn(ctx context.Context, eventID primitive.ObjectID, a models.Assignment, volunteerName string, at time.Time) error {
	if err := s.Assignments.CheckIn(ctx, eventID, a.ID, at); err != nil {
		return err
	}
	vid, aid := a.VolunteerID, a.ID
	s.record(ctx, eventID, models.ActivityCheckIn, volunteerName+" checked in.", &vid, &aid,
		map[string]string{"assignment_id": a.ID.Hex()})
	return nil
}

// CheckOut stamps the checkout time on a.
func (s *Service) CheckOut(ctx context.Context, eventID primitive.ObjectID, a models.Assignment, volunteerName string, at time.Time) error {
	if err := s.Assignments.CheckOut(ctx, eventID, a.ID, at); err != nil {
		return err
	}
	vid, aid := a.VolunteerID, a.ID
	s.record(ctx, eventID, models.ActivityCheckOut, volunteerName+" checked out.", &vid, &aid,
		map[string]string{"assignment_id": a.ID.Hex()})
	return nil
}

// HandOut checks assets out to v. Assets that are not available are
// rejected with ErrAssetOut, including when another hand-out wins the race
// between the status check and the write.
func (s *Service) HandOut(ctx context.Context, eventID primitive.ObjectID, v models.Volunteer, assets []models.Asset, at time.Time) error {
	if len(assets) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(assets))
	for _, a := range assets {
		if a.Status != models.AssetAvailable {
			return ErrAssetOut
		}
		ids = append(ids, a.ID)
	}
	err := txn.Run(ctx, s.client, s.Log, func(ctx context.Context) error {
		if err := s.Holdings.Open(ctx, eventID, v.ID, ids, at); err != nil {
			return err
		}
		return s.Assets.SetAssigned(ctx, eventID, ids, v.ID)
	})
	if err != nil {
		if wafflemongo.IsDup(err) || errors.Is(err, assetstore.ErrNotAvailable) {
			return ErrAssetOut
		}
		return err
	}
	vid := v.ID
	for _, a := range assets {
		id := a.ID
		s.record(ctx, eventID, models.ActivityAssetOut, a.Name+" checked out to "+v.Name+".", &vid, &id,
			map[string]string{"asset_id": a.ID.Hex()})
	}
	return nil
}

// ReturnFromVolunteer closes v's open checkouts of assetIDs (all of them
// when assetIDs is nil) and marks the assets available. It returns the ids
// actually returned.
func (s *Service) ReturnFromVolunteer(ctx context.Context, eventID primitive.ObjectID, v models.Volunteer, assetIDs []primitive.ObjectID, at time.Time) ([]primitive.ObjectID, error) {
	closed, err := s.Holdings.CloseForVolunteer(ctx, eventID, v.ID, assetIDs, at)
	if err != nil || len(closed) == 0 {
		return nil, err
	}
	if err := s.Assets.SetAvailable(ctx, eventID, closed); err != nil {
		return nil, err
	}
	assets, err := s.Assets.ListByIDs(ctx, eventID, closed)
	if err != nil {
		s.Log.Warn("load returned assets failed", zap.Error(err))
	}
	for _, a := range assets {
		id := a.ID
		s.record(ctx, eventID, models.ActivityAssetIn, a.Name+" returned by "+v.Name+".", nil, &id,
			map[string]string{"asset_id": a.ID.Hex()})
	}
	return closed, nil
}

// ReturnAsset checks a single asset back in from whoever holds it.
func (s *Service) ReturnAsset(ctx context.Context, eventID primitive.ObjectID, a models.Asset, at time.Time) error {
	holder := "Unknown"
	if vid, err := s.Holdings.OpenHolder(ctx, eventID, a.ID); err == nil {
		if v, err := s.Volunteers.GetByID(ctx, eventID, vid); err == nil {
			holder = v.Name
		}
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if _, err := s.Holdings.CloseOpen(ctx, eventID, a.ID, at); err != nil {
		return err
	}
	if err := s.Assets.SetAvailable(ctx, eventID, []primitive.ObjectID{a.ID}); err != nil {
		return err
	}
	id := a.ID
	s.record(ctx, eventID, models.ActivityAssetIn, a.Name+" returned by "+holder+".", nil, &id,
		map[string]string{"asset_id": a.ID.Hex()})
	return nil
}
