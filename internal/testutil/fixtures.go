package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Repeated calls on the same request accumulate parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert into %s: %v", coll, err)
	}
}

// CreateUser creates an active password-auth organizer.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		AuthMethod: models.AuthPassword,
		Role:       "organizer",
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateEvent creates an event owned by ownerID and registers the owner
// as its first admin.
func (f *Fixtures) CreateEvent(ctx context.Context, name string, ownerID primitive.ObjectID, date time.Time) models.Event {
	f.t.Helper()
	now := time.Now().UTC()
	e := models.Event{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Date:      date,
		TimeZone:  "UTC",
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "events", e)
	f.insert(ctx, "event_admins", models.EventAdmin{
		ID:        primitive.NewObjectID(),
		EventID:   e.ID,
		UserID:    ownerID,
		Role:      "admin",
		CreatedAt: now,
	})
	return e
}

// CreateGroup creates a volunteer group in an event.
func (f *Fixtures) CreateGroup(ctx context.Context, eventID primitive.ObjectID, name string) models.VolunteerGroup {
	f.t.Helper()
	now := time.Now().UTC()
	g := models.VolunteerGroup{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "volunteer_groups", g)
	return g
}

// CreateVolunteer creates a volunteer with an email derived from the name.
func (f *Fixtures) CreateVolunteer(ctx context.Context, eventID primitive.ObjectID, name, group string) models.Volunteer {
	f.t.Helper()
	now := time.Now().UTC()
	v := models.Volunteer{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		Name:      name,
		NameCI:    text.Fold(name),
		Group:     group,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "volunteers", v)
	return v
}

// CreateShift creates a shift with the given group requirements.
func (f *Fixtures) CreateShift(ctx context.Context, eventID primitive.ObjectID, name string, start, end time.Time, required map[string]int) models.Shift {
	f.t.Helper()
	now := time.Now().UTC()
	s := models.Shift{
		ID:             primitive.NewObjectID(),
		EventID:        eventID,
		Name:           name,
		StartTime:      start.UTC(),
		EndTime:        end.UTC(),
		RequiredGroups: required,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "shifts", s)
	return s
}

// CreateAssignment puts a volunteer on a shift.
func (f *Fixtures) CreateAssignment(ctx context.Context, eventID, shiftID, volunteerID primitive.ObjectID) models.Assignment {
	f.t.Helper()
	a := models.Assignment{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		ShiftID:     shiftID,
		VolunteerID: volunteerID,
		CreatedAt:   time.Now().UTC(),
	}
	f.insert(ctx, "assignments", a)
	return a
}

// CreateAsset creates an available asset.
func (f *Fixtures) CreateAsset(ctx context.Context, eventID primitive.ObjectID, name string) models.Asset {
	f.t.Helper()
	now := time.Now().UTC()
	a := models.Asset{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		Name:      name,
		Status:    models.AssetAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "assets", a)
	return a
}
