package passwordreset_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/store/passwordreset"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNew_DefaultExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if got := passwordreset.New(db, 0).Expiry(); got != passwordreset.DefaultExpiry {
		t.Errorf("Expiry = %v, want %v", got, passwordreset.DefaultExpiry)
	}
}

func TestStore_CreateAndConsume(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := passwordreset.New(db, time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	token, err := store.Create(ctx, userID, " Ada@Example.com ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	peek, err := store.Peek(ctx, token)
	if err != nil || peek.UserID != userID || peek.Email != "ada@example.com" {
		t.Fatalf("Peek = %+v, %v", peek, err)
	}

	r, err := store.Consume(ctx, token)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if r.UserID != userID {
		t.Errorf("UserID = %v, want %v", r.UserID, userID)
	}

	if _, err := store.Consume(ctx, token); !errors.Is(err, passwordreset.ErrNotFound) {
		t.Errorf("expected ErrNotFound on reuse, got %v", err)
	}
}

func TestStore_Create_ReplacesEarlierToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := passwordreset.New(db, time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	first, _ := store.Create(ctx, userID, "a@example.com")
	second, _ := store.Create(ctx, userID, "a@example.com")

	if _, err := store.Peek(ctx, first); !errors.Is(err, passwordreset.ErrNotFound) {
		t.Errorf("expected first token invalidated, got %v", err)
	}
	if _, err := store.Peek(ctx, second); err != nil {
		t.Errorf("expected second token valid, got %v", err)
	}
}

func TestStore_ExpiredTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := passwordreset.New(db, time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("password_resets").InsertOne(ctx, bson.M{
		"user_id":    primitive.NewObjectID(),
		"token":      "stale",
		"expires_at": time.Now().UTC().Add(-time.Minute),
		"created_at": time.Now().UTC().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if _, err := store.Consume(ctx, "stale"); !errors.Is(err, passwordreset.ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired token, got %v", err)
	}
	n, err := store.CleanupExpired(ctx)
	if err != nil || n != 1 {
		t.Errorf("CleanupExpired = %d, %v", n, err)
	}
}
