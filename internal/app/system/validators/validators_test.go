package validators_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/validators"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) (*mongo.Database, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db, ctx
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db, ctx := setup(t)

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db, ctx := setup(t)

	expected := []string{
		"users", "events", "event_invitations", "volunteers", "shifts",
		"assignments", "assets", "activity_logs", "event_admins",
		"volunteer_groups", "asset_assignments", "login_records",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range expected {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestUsersValidator(t *testing.T) {
	db, ctx := setup(t)
	users := db.Collection("users")

	valid := bson.M{
		"full_name":   "Ada Lovelace",
		"email":       "ada@example.com",
		"role":        "organizer",
		"status":      "active",
		"auth_method": "password",
	}
	if _, err := users.InsertOne(ctx, valid); err != nil {
		t.Errorf("insert valid user failed: %v", err)
	}

	if _, err := users.InsertOne(ctx, bson.M{"email": "x@example.com"}); err == nil {
		t.Error("expected validation error for missing fields")
	}

	badRole := bson.M{
		"full_name": "Bad Role", "email": "b@example.com",
		"role": "superadmin", "status": "active", "auth_method": "password",
	}
	if _, err := users.InsertOne(ctx, badRole); err == nil {
		t.Error("expected validation error for unknown role")
	}
}

func TestEventsValidator(t *testing.T) {
	db, ctx := setup(t)
	events := db.Collection("events")

	ok := bson.M{
		"name":     "Harvest Fair",
		"date":     time.Now().UTC(),
		"timezone": "America/Chicago",
		"owner_id": primitive.NewObjectID(),
	}
	if _, err := events.InsertOne(ctx, ok); err != nil {
		t.Errorf("insert valid event failed: %v", err)
	}

	blank := bson.M{
		"name":     "   ",
		"date":     time.Now().UTC(),
		"timezone": "UTC",
		"owner_id": primitive.NewObjectID(),
	}
	if _, err := events.InsertOne(ctx, blank); err == nil {
		t.Error("expected validation error for blank name")
	}

	badRule := bson.M{
		"name":            "Weekly",
		"date":            time.Now().UTC(),
		"timezone":        "UTC",
		"owner_id":        primitive.NewObjectID(),
		"recurrence_rule": "DAILY",
	}
	if _, err := events.InsertOne(ctx, badRule); err == nil {
		t.Error("expected validation error for unknown recurrence rule")
	}
}

func TestAssignmentsValidator(t *testing.T) {
	db, ctx := setup(t)
	coll := db.Collection("assignments")

	ok := bson.M{
		"event_id":     primitive.NewObjectID(),
		"shift_id":     primitive.NewObjectID(),
		"volunteer_id": primitive.NewObjectID(),
		"checked_in":   false,
	}
	if _, err := coll.InsertOne(ctx, ok); err != nil {
		t.Errorf("insert valid assignment failed: %v", err)
	}

	if _, err := coll.InsertOne(ctx, bson.M{"event_id": primitive.NewObjectID(), "checked_in": true}); err == nil {
		t.Error("expected validation error for missing shift and volunteer")
	}
}

func TestAssetsValidator_Status(t *testing.T) {
	db, ctx := setup(t)
	coll := db.Collection("assets")

	if _, err := coll.InsertOne(ctx, bson.M{
		"event_id": primitive.NewObjectID(), "name": "Radio 1", "status": "available",
	}); err != nil {
		t.Errorf("insert valid asset failed: %v", err)
	}
	if _, err := coll.InsertOne(ctx, bson.M{
		"event_id": primitive.NewObjectID(), "name": "Radio 2", "status": "lost",
	}); err == nil {
		t.Error("expected validation error for unknown status")
	}
}

func TestVolunteersValidator_MaxHours(t *testing.T) {
	db, ctx := setup(t)
	coll := db.Collection("volunteers")

	if _, err := coll.InsertOne(ctx, bson.M{
		"event_id": primitive.NewObjectID(), "name": "Val", "max_hours": 8.0,
	}); err != nil {
		t.Errorf("insert valid volunteer failed: %v", err)
	}
	if _, err := coll.InsertOne(ctx, bson.M{
		"event_id": primitive.NewObjectID(), "name": "Val", "max_hours": 200.0,
	}); err == nil {
		t.Error("expected validation error for max_hours above 168")
	}
}

func TestLoginRecords_NoValidator(t *testing.T) {
	db, ctx := setup(t)

	if _, err := db.Collection("login_records").InsertOne(ctx, bson.M{"anything": "goes"}); err != nil {
		t.Errorf("login_records should accept any document: %v", err)
	}
}
