package volgroupstore_test

import (
	"errors"
	"testing"
	"time"

	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_DuplicateNameCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volgroupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	eventID := primitive.NewObjectID()
	g, err := store.Create(ctx, models.VolunteerGroup{EventID: eventID, Name: "Medical", Color: "#ff0000"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.NameCI != "medical" {
		t.Errorf("NameCI = %q", g.NameCI)
	}
	if _, err := store.Create(ctx, models.VolunteerGroup{EventID: eventID, Name: "MEDICAL"}); !errors.Is(err, volgroupstore.ErrDuplicateGroupName) {
		t.Errorf("expected ErrDuplicateGroupName, got %v", err)
	}
	if _, err := store.Create(ctx, models.VolunteerGroup{EventID: primitive.NewObjectID(), Name: "Medical"}); err != nil {
		t.Errorf("same name in another event should be allowed: %v", err)
	}
}

func TestStore_ListAndNameMap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volgroupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	for _, n := range []string{"Setup", "Greeters", "medical"} {
		if _, err := store.Create(ctx, models.VolunteerGroup{EventID: eventID, Name: n}); err != nil {
			t.Fatalf("Create %s failed: %v", n, err)
		}
	}

	list, err := store.List(ctx, eventID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Greeters" || list[2].Name != "Setup" {
		t.Errorf("unexpected order %v", list)
	}

	m, _ := store.GetByNameMap(ctx, eventID)
	if _, ok := m["medical"]; !ok {
		t.Errorf("expected folded key in map, got %v", m)
	}
}

func TestStore_Update_RenamesVolunteers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := volgroupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "E", primitive.NewObjectID(), time.Now())
	g, _ := store.Create(ctx, models.VolunteerGroup{EventID: ev.ID, Name: "Medics"})
	v := fx.CreateVolunteer(ctx, ev.ID, "Ann", "Medics")
	_, _ = db.Collection("volunteers").UpdateByID(ctx, v.ID, bson.M{"$set": bson.M{"group_id": g.ID}})

	if err := store.Update(ctx, ev.ID, g.ID, volgroupstore.Update{Name: "First Aid", Color: "#00ff00"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var got models.Volunteer
	_ = db.Collection("volunteers").FindOne(ctx, bson.M{"_id": v.ID}).Decode(&got)
	if got.Group != "First Aid" {
		t.Errorf("volunteer group = %q, want First Aid", got.Group)
	}
}

func TestStore_Delete_UnsetsVolunteerGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := volgroupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "E", primitive.NewObjectID(), time.Now())
	g, _ := store.Create(ctx, models.VolunteerGroup{EventID: ev.ID, Name: "Setup"})
	v := fx.CreateVolunteer(ctx, ev.ID, "Bo", "Setup")

	n, err := store.Delete(ctx, ev.ID, g.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	var got models.Volunteer
	_ = db.Collection("volunteers").FindOne(ctx, bson.M{"_id": v.ID}).Decode(&got)
	if got.Group != "" || got.GroupLabel() != models.UnassignedGroup {
		t.Errorf("expected volunteer to be unassigned, got %q", got.Group)
	}

	if n, err := store.Delete(ctx, ev.ID, g.ID); err != nil || n != 0 {
		t.Errorf("second Delete = %d, %v", n, err)
	}
}

func TestStore_CopyToEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volgroupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	from, to := primitive.NewObjectID(), primitive.NewObjectID()
	a, _ := store.Create(ctx, models.VolunteerGroup{EventID: from, Name: "A"})
	b, _ := store.Create(ctx, models.VolunteerGroup{EventID: from, Name: "B"})

	idMap, err := store.CopyToEvent(ctx, from, to)
	if err != nil {
		t.Fatalf("CopyToEvent failed: %v", err)
	}
	if len(idMap) != 2 || idMap[a.ID] == a.ID || idMap[b.ID].IsZero() {
		t.Errorf("unexpected id map %v", idMap)
	}
	copied, _ := store.List(ctx, to)
	if len(copied) != 2 {
		t.Errorf("expected 2 copied groups, got %d", len(copied))
	}
}

func TestStore_EnsureByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volgroupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	eventID := primitive.NewObjectID()
	existing, _ := store.Create(ctx, models.VolunteerGroup{EventID: eventID, Name: "Medical"})

	got, err := store.EnsureByName(ctx, eventID, []string{"medical", "Runners", "", "runners"})
	if err != nil {
		t.Fatalf("EnsureByName failed: %v", err)
	}
	if got["medical"].ID != existing.ID {
		t.Errorf("existing group not reused: %+v", got["medical"])
	}
	if got["runners"].Name != "Runners" {
		t.Errorf("new group = %+v", got["runners"])
	}
	n, _ := store.CountByEvent(ctx, eventID)
	if n != 2 {
		t.Errorf("CountByEvent = %d, want 2", n)
	}
}
