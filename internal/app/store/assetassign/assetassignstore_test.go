package assetassignstore_test

import (
	"testing"
	"time"

	assetassignstore "github.com/dalemusser/shiftboard/internal/app/store/assetassign"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_OpenAndClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assetassignstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	vol := primitive.NewObjectID()
	a1, a2 := primitive.NewObjectID(), primitive.NewObjectID()
	now := time.Now().UTC()

	if err := store.Open(ctx, eventID, vol, []primitive.ObjectID{a1, a2}, now); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	open, _ := store.ListOpenByVolunteer(ctx, eventID, vol)
	if len(open) != 2 {
		t.Fatalf("open = %d, want 2", len(open))
	}
	holder, err := store.OpenHolder(ctx, eventID, a1)
	if err != nil || holder != vol {
		t.Errorf("OpenHolder = %v, %v", holder, err)
	}

	n, err := store.CloseOpen(ctx, eventID, a1, now.Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("CloseOpen = %d, %v", n, err)
	}
	byEvent, _ := store.ListOpenByEvent(ctx, eventID)
	if len(byEvent) != 1 || byEvent[0].AssetID != a2 {
		t.Errorf("ListOpenByEvent = %v", byEvent)
	}
}

func TestStore_CloseForVolunteer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assetassignstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	vol := primitive.NewObjectID()
	a1, a2, a3 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	now := time.Now().UTC()
	_ = store.Open(ctx, eventID, vol, []primitive.ObjectID{a1, a2, a3}, now)

	closed, err := store.CloseForVolunteer(ctx, eventID, vol, []primitive.ObjectID{a1}, now)
	if err != nil || len(closed) != 1 || closed[0] != a1 {
		t.Fatalf("CloseForVolunteer(selected) = %v, %v", closed, err)
	}

	none, _ := store.CloseForVolunteer(ctx, eventID, vol, []primitive.ObjectID{}, now)
	if len(none) != 0 {
		t.Errorf("empty selection closed %v", none)
	}

	rest, _ := store.CloseForVolunteer(ctx, eventID, vol, nil, now)
	if len(rest) != 2 {
		t.Errorf("CloseForVolunteer(all) = %v, want 2", rest)
	}
	open, _ := store.ListOpenByVolunteer(ctx, eventID, vol)
	if len(open) != 0 {
		t.Errorf("expected nothing open, got %d", len(open))
	}
}

func TestStore_OneOpenCheckoutPerAsset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assetassignstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	eventID := primitive.NewObjectID()
	a1 := primitive.NewObjectID()
	now := time.Now().UTC()
	if err := store.Open(ctx, eventID, primitive.NewObjectID(), []primitive.ObjectID{a1}, now); err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := store.Open(ctx, eventID, primitive.NewObjectID(), []primitive.ObjectID{a1}, now); !mongo.IsDuplicateKeyError(err) {
		t.Fatalf("second Open = %v, want duplicate key", err)
	}

	// Once returned, the asset can go out again.
	if _, err := store.CloseOpen(ctx, eventID, a1, now.Add(time.Minute)); err != nil {
		t.Fatalf("CloseOpen failed: %v", err)
	}
	if err := store.Open(ctx, eventID, primitive.NewObjectID(), []primitive.ObjectID{a1}, now.Add(2*time.Minute)); err != nil {
		t.Errorf("reopen failed: %v", err)
	}
}
