package eventadminstore_test

import (
	"errors"
	"sync"
	"testing"

	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_AddIsAdminCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventadminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	eventID, a, b := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	if err := store.Add(ctx, eventID, a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(ctx, eventID, a); !errors.Is(err, eventadminstore.ErrAlreadyAdmin) {
		t.Errorf("expected ErrAlreadyAdmin, got %v", err)
	}
	if err := store.Add(ctx, eventID, b); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ok, err := store.IsAdmin(ctx, eventID, a)
	if err != nil || !ok {
		t.Errorf("IsAdmin(a) = %v, %v", ok, err)
	}
	ok, _ = store.IsAdmin(ctx, primitive.NewObjectID(), a)
	if ok {
		t.Error("IsAdmin should be false for another event")
	}

	n, _ := store.Count(ctx, eventID)
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	list, _ := store.List(ctx, eventID)
	if len(list) != 2 || list[0].UserID != a {
		t.Errorf("List = %+v", list)
	}
	ids, _ := store.EventIDsForUser(ctx, b)
	if len(ids) != 1 || ids[0] != eventID {
		t.Errorf("EventIDsForUser = %v", ids)
	}
}

func TestStore_Remove_LastAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventadminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID, me, other := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	_ = store.Add(ctx, eventID, me)

	if err := store.Remove(ctx, eventID, me, me); !errors.Is(err, eventadminstore.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	_ = store.Add(ctx, eventID, other)
	if err := store.Remove(ctx, eventID, me, me); err != nil {
		t.Fatalf("self-removal with another admin present failed: %v", err)
	}
	// Removing someone else never checks the count.
	if err := store.Remove(ctx, eventID, other, me); err != nil {
		t.Fatalf("Remove other failed: %v", err)
	}
	if n, _ := store.Count(ctx, eventID); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestStore_Remove_ConcurrentSelfRemovalKeepsOneAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventadminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID, a, b := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	_ = store.Add(ctx, eventID, a)
	_ = store.Add(ctx, eventID, b)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []primitive.ObjectID{a, b} {
		wg.Add(1)
		go func(i int, id primitive.ObjectID) {
			defer wg.Done()
			errs[i] = store.Remove(ctx, eventID, id, id)
		}(i, id)
	}
	wg.Wait()

	if n, _ := store.Count(ctx, eventID); n < 1 {
		t.Fatalf("Count = %d, every admin was removed (errs %v)", n, errs)
	}
	removed := 0
	for _, err := range errs {
		if err == nil {
			removed++
		}
	}
	if removed > 1 {
		t.Errorf("both self-removals succeeded")
	}
}

func TestStore_DeleteByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventadminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e1, e2, u := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	_ = store.Add(ctx, e1, u)
	_ = store.Add(ctx, e2, u)
	_ = store.Add(ctx, e1, primitive.NewObjectID())

	if n, err := store.DeleteByUser(ctx, u); err != nil || n != 2 {
		t.Errorf("DeleteByUser = %d, %v", n, err)
	}
}
