package shifttemplatestore_test

import (
	"errors"
	"testing"

	shifttemplatestore "github.com/dalemusser/shiftboard/internal/app/store/shifttemplates"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_DerivesDuration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := shifttemplatestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	tpl, err := store.Create(ctx, models.ShiftTemplate{
		UserID:         userID,
		Name:           "Gate crew",
		DefaultStart:   "08:00",
		DefaultEnd:     "12:30",
		RequiredGroups: map[string]int{"Security": 2},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tpl.DurationHours != 4.5 {
		t.Errorf("DurationHours = %v, want 4.5", tpl.DurationHours)
	}

	overnight, err := store.Create(ctx, models.ShiftTemplate{UserID: userID, Name: "Night", DefaultStart: "22:00", DefaultEnd: "06:00"})
	if err != nil {
		t.Fatalf("Create overnight failed: %v", err)
	}
	if overnight.DurationHours != 8 {
		t.Errorf("overnight DurationHours = %v, want 8", overnight.DurationHours)
	}

	_, err = store.Create(ctx, models.ShiftTemplate{UserID: userID, Name: "Bad", DefaultStart: "8am", DefaultEnd: "12:00"})
	if !errors.Is(err, shifttemplatestore.ErrBadClock) {
		t.Errorf("expected ErrBadClock, got %v", err)
	}
}

func TestStore_ListAndDelete_ScopedToUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := shifttemplatestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	a, _ := store.Create(ctx, models.ShiftTemplate{UserID: alice, Name: "B shift", DefaultStart: "09:00", DefaultEnd: "10:00"})
	_, _ = store.Create(ctx, models.ShiftTemplate{UserID: alice, Name: "A shift", DefaultStart: "09:00", DefaultEnd: "10:00"})
	_, _ = store.Create(ctx, models.ShiftTemplate{UserID: bob, Name: "Bob's", DefaultStart: "09:00", DefaultEnd: "10:00"})

	list, _ := store.ListByUser(ctx, alice)
	if len(list) != 2 || list[0].Name != "A shift" {
		t.Errorf("ListByUser = %v", list)
	}

	// Bob cannot delete Alice's template.
	n, _ := store.Delete(ctx, bob, a.ID)
	if n != 0 {
		t.Errorf("cross-user delete removed %d", n)
	}
	n, _ = store.Delete(ctx, alice, a.ID)
	if n != 1 {
		t.Errorf("Delete = %d, want 1", n)
	}
}
