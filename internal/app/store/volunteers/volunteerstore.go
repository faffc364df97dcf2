package volunteerstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/paging"
	"github.com/dalemusser/shiftboard/internal/app/system/txn"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SearchLimit caps kiosk and assign-page name searches.
const SearchLimit = 20

var errNameRequired = errors.New("volunteer name is required")

type Store struct {
	c           *mongo.Collection
	assignments *mongo.Collection
	assets      *mongo.Collection
	holdings    *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("volunteers"),
		assignments: db.Collection("assignments"),
		assets:      db.Collection("assets"),
		holdings:    db.Collection("asset_assignments"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_volunteers_event_name"),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "group", Value: 1}},
			Options: options.Index().SetName("idx_volunteers_event_group"),
		},
	})
	return err
}

func prepare(v *models.Volunteer, eventID primitive.ObjectID, now time.Time) error {
	v.Name = normalize.Name(v.Name)
	if v.Name == "" {
		return errNameRequired
	}
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	v.EventID = eventID
	v.NameCI = text.Fold(v.Name)
	v.Email = normalize.Email(v.Email)
	v.Phone = normalize.Phone(v.Phone)
	v.Group = normalize.Group(v.Group)
	v.CreatedAt = now
	v.UpdatedAt = now
	return nil
}

func (s *Store) Create(ctx context.Context, v models.Volunteer) (models.Volunteer, error) {
	if err := prepare(&v, v.EventID, time.Now().UTC()); err != nil {
		return models.Volunteer{}, err
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return models.Volunteer{}, err
	}
	return v, nil
}

// CreateMany inserts a batch (CSV import, event copy) and returns the count inserted.
func (s *Store) CreateMany(ctx context.Context, eventID primitive.ObjectID, vols []models.Volunteer) (int, error) {
	if len(vols) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(vols))
	for i := range vols {
		if err := prepare(&vols[i], eventID, now); err != nil {
			return 0, err
		}
		docs = append(docs, vols[i])
	}
	res, err := s.c.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Update holds the editable volunteer fields.
type Update struct {
	Name     string
	Email    string
	Phone    string
	Group    string
	GroupID  *primitive.ObjectID
	MaxHours *float64
}

func (s *Store) Update(ctx context.Context, eventID, id primitive.ObjectID, upd Update) error {
	name := normalize.Name(upd.Name)
	if name == "" {
		return errNameRequired
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "event_id": eventID}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"email":      normalize.Email(upd.Email),
		"phone":      normalize.Phone(upd.Phone),
		"group":      normalize.Group(upd.Group),
		"group_id":   upd.GroupID,
		"max_hours":  upd.MaxHours,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// releaseAssets checks in every open asset checkout matching filter and
// returns those assets to the pool.
func (s *Store) releaseAssets(ctx context.Context, filter bson.M) error {
	filter["checked_in_at"] = bson.M{"$exists": false}
	raw, err := s.holdings.Distinct(ctx, "asset_id", filter)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	now := time.Now().UTC()
	if _, err := s.holdings.UpdateMany(ctx, filter, bson.M{
		"$set":   bson.M{"checked_in_at": now},
		"$unset": bson.M{"open": ""},
	}); err != nil {
		return err
	}
	_, err = s.assets.UpdateMany(ctx, bson.M{"event_id": filter["event_id"], "_id": bson.M{"$in": raw}}, bson.M{
		"$set":   bson.M{"status": models.AssetAvailable, "updated_at": now},
		"$unset": bson.M{"volunteer_id": ""},
	})
	return err
}

// Delete removes a volunteer with their shift assignments. Assets they
// still hold go back to the pool.
func (s *Store) Delete(ctx context.Context, eventID, id primitive.ObjectID) (int64, error) {
	var n int64
	err := txn.Run(ctx, s.c.Database().Client(), nil, func(ctx context.Context) error {
		if err := s.releaseAssets(ctx, bson.M{"event_id": eventID, "volunteer_id": id}); err != nil {
			return err
		}
		if _, err := s.assignments.DeleteMany(ctx, bson.M{"event_id": eventID, "volunteer_id": id}); err != nil {
			return err
		}
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "event_id": eventID})
		if err != nil {
			return err
		}
		n = res.DeletedCount
		return nil
	})
	return n, err
}

// DeleteAll clears an event's roster together with all assignments and
// returns every checked-out asset.
func (s *Store) DeleteAll(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	var n int64
	err := txn.Run(ctx, s.c.Database().Client(), nil, func(ctx context.Context) error {
		if err := s.releaseAssets(ctx, bson.M{"event_id": eventID}); err != nil {
			return err
		}
		if _, err := s.assignments.DeleteMany(ctx, bson.M{"event_id": eventID}); err != nil {
			return err
		}
		res, err := s.c.DeleteMany(ctx, bson.M{"event_id": eventID})
		if err != nil {
			return err
		}
		n = res.DeletedCount
		return nil
	})
	return n, err
}

func (s *Store) GetByID(ctx context.Context, eventID, id primitive.ObjectID) (models.Volunteer, error) {
	var v models.Volunteer
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "event_id": eventID}).Decode(&v); err != nil {
		return models.Volunteer{}, err
	}
	return v, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Volunteer, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Volunteer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the roster ordered by name. group "" means all groups.
func (s *Store) List(ctx context.Context, eventID primitive.ObjectID, group string) ([]models.Volunteer, error) {
	filter := bson.M{"event_id": eventID}
	if group != "" {
		filter["group"] = group
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
}

// ListByIDs loads the given volunteers of one event.
func (s *Store) ListByIDs(ctx context.Context, eventID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Volunteer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"event_id": eventID, "_id": bson.M{"$in": ids}}, options.Find())
}

// ListWithEmail returns broadcast recipients, optionally limited to one group.
func (s *Store) ListWithEmail(ctx context.Context, eventID primitive.ObjectID, group string) ([]models.Volunteer, error) {
	filter := bson.M{"event_id": eventID, "email": bson.M{"$nin": []interface{}{"", nil}}}
	if group != "" {
		filter["group"] = group
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
}

// Search matches volunteers whose name contains q, ignoring case.
func (s *Store) Search(ctx context.Context, eventID primitive.ObjectID, q string) ([]models.Volunteer, error) {
	q = text.Fold(normalize.QueryParam(q))
	if q == "" {
		return nil, nil
	}
	filter := bson.M{
		"event_id": eventID,
		"name_ci":  bson.M{"$regex": regexp.QuoteMeta(q)},
	}
	return s.find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetLimit(SearchLimit))
}

func (s *Store) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// PageQuery selects one keyset page of the roster.
type PageQuery struct {
	Group  string
	Search string
	Before string
	After  string
}

// Page is one page of the roster plus navigation cursors.
type Page struct {
	Rows       []models.Volunteer
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// ListPage returns a keyset page ordered by name.
func (s *Store) ListPage(ctx context.Context, eventID primitive.ObjectID, pq PageQuery) (Page, error) {
	base := bson.M{"event_id": eventID}
	if pq.Group != "" {
		base["group"] = pq.Group
	}
	if q := text.Fold(normalize.QueryParam(pq.Search)); q != "" {
		base["name_ci"] = bson.M{"$regex": regexp.QuoteMeta(q)}
	}
	total, err := s.c.CountDocuments(ctx, base)
	if err != nil {
		return Page{}, err
	}

	cfg := paging.ConfigureKeyset(pq.Before, pq.After)
	filter := base
	if w := cfg.KeysetWindow("name_ci"); w != nil {
		filter = bson.M{"$and": []bson.M{base, w}}
	}
	rows, err := s.find(ctx, filter, cfg.FindOptions("name_ci"))
	if err != nil {
		return Page{}, err
	}
	res := paging.TrimPage(&rows, pq.Before, pq.After)
	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}
	prev, next := paging.BuildCursors(rows,
		func(v models.Volunteer) string { return v.NameCI },
		func(v models.Volunteer) primitive.ObjectID { return v.ID })
	return Page{
		Rows:       rows,
		Total:      total,
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		PrevCursor: prev,
		NextCursor: next,
	}, nil
}

// CopyToEvent duplicates the roster of from into to. groupMap translates
// group ids; volunteers whose group was not copied keep only the group name.
func (s *Store) CopyToEvent(ctx context.Context, from, to primitive.ObjectID, groupMap map[primitive.ObjectID]primitive.ObjectID) (int, error) {
	vols, err := s.List(ctx, from, "")
	if err != nil {
		return 0, err
	}
	for i := range vols {
		vols[i].ID = primitive.NilObjectID
		if vols[i].GroupID != nil {
			if newID, ok := groupMap[*vols[i].GroupID]; ok {
				vols[i].GroupID = &newID
			} else {
				vols[i].GroupID = nil
			}
		}
	}
	return s.CreateMany(ctx, to, vols)
}
