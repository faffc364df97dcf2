package volunteerstore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	assetassignstore "github.com/dalemusser/shiftboard/internal/app/store/assetassign"
	assetstore "github.com/dalemusser/shiftboard/internal/app/store/assets"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/paging"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_Normalizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v, err := store.Create(ctx, models.Volunteer{
		EventID: primitive.NewObjectID(),
		Name:    "  Jo   March ",
		Email:   "JO@Example.com",
		Phone:   "(555) 123-4567",
		Group:   " Greeters ",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if v.Name != "Jo March" || v.NameCI != "jo march" {
		t.Errorf("name = %q / %q", v.Name, v.NameCI)
	}
	if v.Email != "jo@example.com" || v.Phone != "5551234567" || v.Group != "Greeters" {
		t.Errorf("unexpected normalized volunteer %+v", v)
	}

	if _, err := store.Create(ctx, models.Volunteer{EventID: v.EventID, Name: " "}); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestStore_CreateMany_ListAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	n, err := store.CreateMany(ctx, eventID, []models.Volunteer{
		{Name: "Zed", Group: "Setup"},
		{Name: "amy", Group: "Medical", Email: "amy@example.com"},
		{Name: "Bob", Group: "Setup", Email: "bob@example.com"},
	})
	if err != nil || n != 3 {
		t.Fatalf("CreateMany = %d, %v", n, err)
	}

	all, _ := store.List(ctx, eventID, "")
	if len(all) != 3 || all[0].Name != "amy" || all[2].Name != "Zed" {
		t.Errorf("List order wrong: %v", all)
	}
	setup, _ := store.List(ctx, eventID, "Setup")
	if len(setup) != 2 {
		t.Errorf("expected 2 in Setup, got %d", len(setup))
	}
	withEmail, _ := store.ListWithEmail(ctx, eventID, "")
	if len(withEmail) != 2 {
		t.Errorf("ListWithEmail = %d, want 2", len(withEmail))
	}
	withEmail, _ = store.ListWithEmail(ctx, eventID, "Setup")
	if len(withEmail) != 1 || withEmail[0].Name != "Bob" {
		t.Errorf("ListWithEmail(Setup) = %v", withEmail)
	}
	if c, _ := store.CountByEvent(ctx, eventID); c != 3 {
		t.Errorf("CountByEvent = %d", c)
	}
}

func TestStore_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	vols := []models.Volunteer{{Name: "Maria Lopez"}, {Name: "Mario Rossi"}, {Name: "Ann (Lead)"}}
	for i := 0; i < volunteerstore.SearchLimit+5; i++ {
		vols = append(vols, models.Volunteer{Name: fmt.Sprintf("Filler %02d", i)})
	}
	if _, err := store.CreateMany(ctx, eventID, vols); err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}

	got, err := store.Search(ctx, eventID, "MARI")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 matches, got %d", len(got))
	}
	got, _ = store.Search(ctx, eventID, "(lead)")
	if len(got) != 1 {
		t.Errorf("regex metacharacters should be literal, got %d", len(got))
	}
	got, _ = store.Search(ctx, eventID, "filler")
	if len(got) != volunteerstore.SearchLimit {
		t.Errorf("expected limit %d, got %d", volunteerstore.SearchLimit, len(got))
	}
	got, _ = store.Search(ctx, eventID, "   ")
	if len(got) != 0 {
		t.Errorf("blank query should match nothing, got %d", len(got))
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v, _ := store.Create(ctx, models.Volunteer{EventID: primitive.NewObjectID(), Name: "Old"})
	max := 12.5
	if err := store.Update(ctx, v.EventID, v.ID, volunteerstore.Update{Name: "New", Group: "Setup", MaxHours: &max}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.GetByID(ctx, v.EventID, v.ID)
	if got.Name != "New" || got.Group != "Setup" || got.MaxHours == nil || *got.MaxHours != 12.5 {
		t.Errorf("unexpected volunteer %+v", got)
	}
	if err := store.Update(ctx, primitive.NewObjectID(), v.ID, volunteerstore.Update{Name: "X"}); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("update via wrong event: expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Delete_RemovesAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := volunteerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "E", primitive.NewObjectID(), time.Now())
	v := fx.CreateVolunteer(ctx, ev.ID, "Gone", "")
	keep := fx.CreateVolunteer(ctx, ev.ID, "Kept", "")
	s := fx.CreateShift(ctx, ev.ID, "S", time.Now(), time.Now().Add(time.Hour), nil)
	fx.CreateAssignment(ctx, ev.ID, s.ID, v.ID)
	fx.CreateAssignment(ctx, ev.ID, s.ID, keep.ID)

	if n, err := store.Delete(ctx, ev.ID, v.ID); err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if n, _ := db.Collection("assignments").CountDocuments(ctx, bson.M{"event_id": ev.ID}); n != 1 {
		t.Errorf("expected 1 assignment left, got %d", n)
	}

	if n, err := store.DeleteAll(ctx, ev.ID); err != nil || n != 1 {
		t.Fatalf("DeleteAll = %d, %v", n, err)
	}
	if n, _ := db.Collection("assignments").CountDocuments(ctx, bson.M{"event_id": ev.ID}); n != 0 {
		t.Errorf("expected no assignments, got %d", n)
	}
}

func TestStore_ListPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	var vols []models.Volunteer
	for i := 0; i < paging.PageSize+10; i++ {
		vols = append(vols, models.Volunteer{Name: fmt.Sprintf("Vol %03d", i)})
	}
	if _, err := store.CreateMany(ctx, eventID, vols); err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}

	first, err := store.ListPage(ctx, eventID, volunteerstore.PageQuery{})
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if len(first.Rows) != paging.PageSize || !first.HasNext || first.HasPrev || first.Total != int64(paging.PageSize+10) {
		t.Fatalf("first page: rows=%d next=%v prev=%v total=%d", len(first.Rows), first.HasNext, first.HasPrev, first.Total)
	}

	second, err := store.ListPage(ctx, eventID, volunteerstore.PageQuery{After: first.NextCursor})
	if err != nil {
		t.Fatalf("ListPage(after) failed: %v", err)
	}
	if len(second.Rows) != 10 || second.HasNext || !second.HasPrev {
		t.Fatalf("second page: rows=%d next=%v prev=%v", len(second.Rows), second.HasNext, second.HasPrev)
	}
	if second.Rows[0].Name != fmt.Sprintf("Vol %03d", paging.PageSize) {
		t.Errorf("second page starts at %q", second.Rows[0].Name)
	}

	back, err := store.ListPage(ctx, eventID, volunteerstore.PageQuery{Before: second.PrevCursor})
	if err != nil {
		t.Fatalf("ListPage(before) failed: %v", err)
	}
	if len(back.Rows) != paging.PageSize || back.Rows[0].Name != "Vol 000" {
		t.Errorf("paging back: rows=%d first=%q", len(back.Rows), back.Rows[0].Name)
	}
}

func TestStore_CopyToEvent_MapsGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	from, to := primitive.NewObjectID(), primitive.NewObjectID()
	oldGroup, newGroup, dropped := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	_, _ = store.CreateMany(ctx, from, []models.Volunteer{
		{Name: "Mapped", Group: "Medical", GroupID: &oldGroup},
		{Name: "Dropped", Group: "Other", GroupID: &dropped},
		{Name: "None"},
	})

	n, err := store.CopyToEvent(ctx, from, to, map[primitive.ObjectID]primitive.ObjectID{oldGroup: newGroup})
	if err != nil || n != 3 {
		t.Fatalf("CopyToEvent = %d, %v", n, err)
	}
	copied, _ := store.List(ctx, to, "")
	byName := map[string]models.Volunteer{}
	for _, v := range copied {
		byName[v.Name] = v
	}
	if g := byName["Mapped"].GroupID; g == nil || *g != newGroup {
		t.Errorf("Mapped group id = %v, want %v", g, newGroup)
	}
	if byName["Dropped"].GroupID != nil || byName["Dropped"].Group != "Other" {
		t.Errorf("Dropped should keep name only: %+v", byName["Dropped"])
	}
	orig, _ := store.List(ctx, from, "")
	if len(orig) != 3 {
		t.Errorf("source roster changed: %d", len(orig))
	}
}

func TestStore_Delete_ReturnsHeldAssets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteerstore.New(db)
	assets := assetstore.New(db)
	holdings := assetassignstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	leaving := fx.CreateVolunteer(ctx, eventID, "Grace", "")
	staying := fx.CreateVolunteer(ctx, eventID, "Linus", "")
	radio := fx.CreateAsset(ctx, eventID, "Radio 1")
	vest := fx.CreateAsset(ctx, eventID, "Vest 2")
	now := time.Now()
	if err := holdings.Open(ctx, eventID, leaving.ID, []primitive.ObjectID{radio.ID}, now); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = assets.SetAssigned(ctx, eventID, []primitive.ObjectID{radio.ID}, leaving.ID)
	_ = holdings.Open(ctx, eventID, staying.ID, []primitive.ObjectID{vest.ID}, now)
	_ = assets.SetAssigned(ctx, eventID, []primitive.ObjectID{vest.ID}, staying.ID)

	if n, err := store.Delete(ctx, eventID, leaving.ID); err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	got, _ := assets.GetByID(ctx, eventID, radio.ID)
	if got.Status != models.AssetAvailable || got.VolunteerID != nil {
		t.Errorf("radio after delete: %+v", got)
	}
	open, _ := holdings.ListOpenByEvent(ctx, eventID)
	if len(open) != 1 || open[0].AssetID != vest.ID {
		t.Errorf("open holdings = %+v, want only the vest", open)
	}

	if _, err := store.DeleteAll(ctx, eventID); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	got, _ = assets.GetByID(ctx, eventID, vest.ID)
	if got.Status != models.AssetAvailable {
		t.Errorf("vest after DeleteAll: %+v", got)
	}
	if open, _ := holdings.ListOpenByEvent(ctx, eventID); len(open) != 0 {
		t.Errorf("open holdings after DeleteAll = %d", len(open))
	}
}
