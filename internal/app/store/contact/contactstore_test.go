package contactstore_test

import (
	"testing"

	contactstore "github.com/dalemusser/shiftboard/internal/app/store/contact"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
)

func TestStore_CreateAndListRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sub, err := store.Create(ctx, models.ContactSubmission{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Subject:   "Pricing",
		Message:   "How much for a large event?",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sub.ID.IsZero() || sub.CreatedAt.IsZero() {
		t.Errorf("expected ID and CreatedAt set, got %+v", sub)
	}

	list, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(list) != 1 || list[0].Subject != "Pricing" {
		t.Errorf("ListRecent = %v", list)
	}
}
