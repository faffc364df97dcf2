package eventstore_test

import (
	"errors"
	"testing"
	"time"

	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Create(ctx, models.Event{
		Name:           "  Spring   Fair ",
		OwnerID:        primitive.NewObjectID(),
		RecurrenceRule: "weekly",
		Date:           time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if e.Name != "Spring Fair" || e.NameCI == "" {
		t.Errorf("name not normalized: %q / %q", e.Name, e.NameCI)
	}
	if e.TimeZone != "UTC" {
		t.Errorf("TimeZone = %q, want UTC", e.TimeZone)
	}
	if e.RecurrenceRule != models.RecurrenceWeekly {
		t.Errorf("RecurrenceRule = %q", e.RecurrenceRule)
	}

	if _, err := store.Create(ctx, models.Event{Name: "   "}); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestStore_ListForUser_OwnedAndAdministered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fx.CreateUser(ctx, "Me", "me@example.com")
	other := fx.CreateUser(ctx, "Other", "other@example.com")

	mine := fx.CreateEvent(ctx, "Mine", me.ID, time.Now())
	shared := fx.CreateEvent(ctx, "Shared", other.ID, time.Now().Add(48*time.Hour))
	fx.CreateEvent(ctx, "Not Mine", other.ID, time.Now())

	if _, err := db.Collection("event_admins").InsertOne(ctx, models.EventAdmin{
		ID: primitive.NewObjectID(), EventID: shared.ID, UserID: me.ID, Role: "admin",
	}); err != nil {
		t.Fatalf("insert admin: %v", err)
	}

	got, err := store.ListForUser(ctx, me.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].ID != shared.ID || got[1].ID != mine.ID {
		t.Errorf("expected newest date first, got %s then %s", got[0].Name, got[1].Name)
	}

	owned, _ := store.ListOwnedBy(ctx, me.ID)
	if len(owned) != 1 || owned[0].ID != mine.ID {
		t.Errorf("ListOwnedBy returned %+v", owned)
	}
}

func TestStore_UpdateSettings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e := fx.CreateEvent(ctx, "Old", primitive.NewObjectID(), time.Now())
	newDate := time.Date(2026, 7, 4, 4, 0, 0, 0, time.UTC)
	err := store.UpdateSettings(ctx, e.ID, eventstore.Settings{
		Name:           "New Name",
		Description:    "Bring water",
		Date:           newDate,
		TimeZone:       "America/New_York",
		RecurrenceRule: "monthly",
	})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	got, _ := store.GetByID(ctx, e.ID)
	if got.Name != "New Name" || got.TimeZone != "America/New_York" || got.RecurrenceRule != "MONTHLY" {
		t.Errorf("unexpected event after update: %+v", got)
	}
	if !got.Date.Equal(newDate) {
		t.Errorf("Date = %v, want %v", got.Date, newDate)
	}

	if err := store.UpdateSettings(ctx, primitive.NewObjectID(), eventstore.Settings{Name: "x"}); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_DeleteCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	doomed := fx.CreateEvent(ctx, "Doomed", owner, time.Now())
	kept := fx.CreateEvent(ctx, "Kept", owner, time.Now())

	for _, ev := range []models.Event{doomed, kept} {
		v := fx.CreateVolunteer(ctx, ev.ID, "Vol", "Medical")
		s := fx.CreateShift(ctx, ev.ID, "Morning", time.Now(), time.Now().Add(time.Hour), nil)
		fx.CreateAssignment(ctx, ev.ID, s.ID, v.ID)
		fx.CreateGroup(ctx, ev.ID, "Medical")
		fx.CreateAsset(ctx, ev.ID, "Radio")
	}

	if err := store.DeleteCascade(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteCascade failed: %v", err)
	}

	if _, err := store.GetByID(ctx, doomed.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected event deleted, got %v", err)
	}
	for _, name := range eventstore.ChildCollections {
		n, err := db.Collection(name).CountDocuments(ctx, bson.M{"event_id": doomed.ID})
		if err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if n != 0 {
			t.Errorf("%s still has %d rows for deleted event", name, n)
		}
	}
	if n, _ := db.Collection("volunteers").CountDocuments(ctx, bson.M{"event_id": kept.ID}); n != 1 {
		t.Errorf("other event's volunteers touched: %d", n)
	}
}

func TestStore_DeleteOwnedCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	fx.CreateEvent(ctx, "A", owner, time.Now())
	fx.CreateEvent(ctx, "B", owner, time.Now())
	fx.CreateEvent(ctx, "Someone else", primitive.NewObjectID(), time.Now())

	n, err := store.DeleteOwnedCascade(ctx, owner)
	if err != nil {
		t.Fatalf("DeleteOwnedCascade failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d events, want 2", n)
	}
	left, _ := db.Collection("events").CountDocuments(ctx, bson.M{})
	if left != 1 {
		t.Errorf("expected 1 event left, got %d", left)
	}
}
