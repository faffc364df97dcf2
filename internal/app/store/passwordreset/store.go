// internal/app/store/passwordreset/store.go
package passwordreset

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultExpiry is how long a reset link stays valid.
const DefaultExpiry = time.Hour

// ErrNotFound is returned when a reset token is unknown, used or expired.
var ErrNotFound = errors.New("reset link is invalid or has expired")

// Reset is a pending password reset for a user.
type Reset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Email     string             `bson:"email"`
	Token     string             `bson:"token"`
	ExpiresAt time.Time          `bson:"expires_at"` // TTL index field
	CreatedAt time.Time          `bson:"created_at"`
}

// Store manages password reset tokens.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
	now    func() time.Time
}

// New creates a Store. A non-positive expiry uses DefaultExpiry.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{
		c:      db.Collection("password_resets"),
		expiry: expiry,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Expiry returns the lifetime of new tokens.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// EnsureIndexes creates the token lookup and TTL cleanup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_passwordreset_expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("uniq_passwordreset_token").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_passwordreset_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create issues a new token for the user, replacing any earlier one.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, email string) (string, error) {
	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return "", err
	}
	now := s.now()
	r := Reset{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return "", err
	}
	return r.Token, nil
}

func (s *Store) liveFilter(token string) bson.M {
	return bson.M{"token": token, "expires_at": bson.M{"$gt": s.now()}}
}

// Peek returns the reset for a live token without consuming it.
func (s *Store) Peek(ctx context.Context, token string) (Reset, error) {
	var r Reset
	err := s.c.FindOne(ctx, s.liveFilter(token)).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Reset{}, ErrNotFound
	}
	return r, err
}

// Consume deletes a live token and returns it. A token works once.
func (s *Store) Consume(ctx context.Context, token string) (Reset, error) {
	var r Reset
	err := s.c.FindOneAndDelete(ctx, s.liveFilter(token)).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Reset{}, ErrNotFound
	}
	return r, err
}

// CleanupExpired removes expired tokens ahead of the TTL monitor.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": s.now()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes the user's outstanding tokens.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
