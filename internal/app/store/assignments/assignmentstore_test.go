package assignmentstore_test

import (
	"errors"
	"testing"
	"time"

	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newStore(t *testing.T) *assignmentstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	return store
}

func TestStore_Create_DuplicateRejected(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	shiftID := primitive.NewObjectID()
	volID := primitive.NewObjectID()

	if _, err := store.Create(ctx, eventID, shiftID, volID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := store.Create(ctx, eventID, shiftID, volID)
	if !errors.Is(err, assignmentstore.ErrAlreadyAssigned) {
		t.Errorf("expected ErrAlreadyAssigned, got %v", err)
	}

	n, _ := store.CountByShift(ctx, eventID, shiftID)
	if n != 1 {
		t.Errorf("CountByShift = %d, want 1", n)
	}
}

func TestStore_CheckInOut(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	volID := primitive.NewObjectID()
	a, _ := store.Create(ctx, eventID, primitive.NewObjectID(), volID)

	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.CheckIn(ctx, eventID, a.ID, now); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	active, err := store.ActiveForVolunteer(ctx, eventID, volID)
	if err != nil || active.ID != a.ID {
		t.Fatalf("ActiveForVolunteer = %v, %v", active.ID, err)
	}
	list, _ := store.ListActive(ctx, eventID)
	if len(list) != 1 {
		t.Errorf("ListActive = %d, want 1", len(list))
	}

	if err := store.CheckOut(ctx, eventID, a.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}
	got, _ := store.GetByID(ctx, eventID, a.ID)
	if !got.CheckedIn || got.CheckedOutAt == nil || got.Active() {
		t.Errorf("after checkout: %+v", got)
	}
	if _, err := store.ActiveForVolunteer(ctx, eventID, volID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected no active assignment, got %v", err)
	}

	// Re-checking in clears the checkout.
	_ = store.CheckIn(ctx, eventID, a.ID, now.Add(2*time.Hour))
	got, _ = store.GetByID(ctx, eventID, a.ID)
	if !got.Active() {
		t.Errorf("expected active after re-check-in, got %+v", got)
	}

	_ = store.SetCheckedIn(ctx, eventID, a.ID, false, now)
	got, _ = store.GetByID(ctx, eventID, a.ID)
	if got.CheckedIn || got.CheckedInAt != nil {
		t.Errorf("expected cleared check-in, got %+v", got)
	}
}

func TestStore_LateDismissed(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	a, _ := store.Create(ctx, eventID, primitive.NewObjectID(), primitive.NewObjectID())

	if err := store.SetLateDismissed(ctx, eventID, a.ID, true); err != nil {
		t.Fatalf("SetLateDismissed failed: %v", err)
	}
	got, _ := store.GetByID(ctx, eventID, a.ID)
	if !got.LateDismissed {
		t.Error("expected late_dismissed true")
	}

	// Wrong event does not match.
	err := store.SetLateDismissed(ctx, primitive.NewObjectID(), a.ID, false)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for other event, got %v", err)
	}
}

func TestStore_Swap(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	s1, s2 := primitive.NewObjectID(), primitive.NewObjectID()
	v1, v2 := primitive.NewObjectID(), primitive.NewObjectID()
	a1, _ := store.Create(ctx, eventID, s1, v1)
	a2, _ := store.Create(ctx, eventID, s2, v2)

	if err := store.Swap(ctx, eventID, a1.ID, a2.ID); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	g1, _ := store.GetByID(ctx, eventID, a1.ID)
	g2, _ := store.GetByID(ctx, eventID, a2.ID)
	if g1.VolunteerID != v2 || g2.VolunteerID != v1 {
		t.Errorf("swap not applied: %v %v", g1.VolunteerID, g2.VolunteerID)
	}
}

func TestStore_ReplaceEvent(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	_, _ = store.Create(ctx, eventID, primitive.NewObjectID(), primitive.NewObjectID())
	_, _ = store.Create(ctx, other, primitive.NewObjectID(), primitive.NewObjectID())

	shift := primitive.NewObjectID()
	v1, v2 := primitive.NewObjectID(), primitive.NewObjectID()
	n, err := store.ReplaceEvent(ctx, eventID, []assignmentstore.Pair{
		{ShiftID: shift, VolunteerID: v1},
		{ShiftID: shift, VolunteerID: v2},
		{ShiftID: shift, VolunteerID: v1},
	})
	if err != nil {
		t.Fatalf("ReplaceEvent failed: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}
	list, _ := store.ListByEvent(ctx, eventID)
	if len(list) != 2 {
		t.Errorf("event assignments = %d, want 2", len(list))
	}
	otherList, _ := store.ListByEvent(ctx, other)
	if len(otherList) != 1 {
		t.Errorf("other event touched: %d", len(otherList))
	}

	cleared, _ := store.ClearEvent(ctx, eventID)
	if cleared != 2 {
		t.Errorf("ClearEvent = %d, want 2", cleared)
	}
}

func TestStore_ClearEventAndListByVolunteer(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	shift := primitive.NewObjectID()
	vol := primitive.NewObjectID()
	_, _ = store.Create(ctx, eventID, shift, vol)
	_, _ = store.Create(ctx, eventID, shift, primitive.NewObjectID())
	_, _ = store.Create(ctx, eventID, primitive.NewObjectID(), vol)

	byVol, _ := store.ListByVolunteer(ctx, eventID, vol)
	if len(byVol) != 2 {
		t.Errorf("ListByVolunteer = %d, want 2", len(byVol))
	}
	other := primitive.NewObjectID()
	_, _ = store.Create(ctx, other, shift, vol)

	n, _ := store.ClearEvent(ctx, eventID)
	if n != 3 {
		t.Errorf("ClearEvent = %d, want 3", n)
	}
	left, _ := store.ListByEvent(ctx, other)
	if len(left) != 1 {
		t.Errorf("other event lost assignments: %d", len(left))
	}
}
