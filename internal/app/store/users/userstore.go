package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/authutil"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoleOrganizer is the only account role; per-event authority lives in event_admins.
const RoleOrganizer = "organizer"

const (
	statusActive   = "active"
	statusDisabled = "disabled"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errEmailRequired  = errors.New("email is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique email index and the sparse Google id index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetName("idx_users_google").SetSparse(true),
		},
	})
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.Email == "" {
		return models.User{}, errEmailRequired
	}
	if u.Role == "" {
		u.Role = RoleOrganizer
	}
	if u.Status == "" {
		u.Status = statusActive
	}
	if u.AuthMethod == "" {
		u.AuthMethod = models.AuthPassword
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// CreateWithPassword creates a password-auth organizer, storing a bcrypt hash.
func (s *Store) CreateWithPassword(ctx context.Context, fullName, email, password string) (models.User, error) {
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		AuthMethod:   models.AuthPassword,
		PasswordHash: hash,
	})
}

// UpsertGoogle finds the account for a Google identity, linking by email
// when the Google id is not yet known, or creates one. created reports
// whether a new account was inserted.
func (s *Store) UpsertGoogle(ctx context.Context, googleID, email, fullName string) (u models.User, created bool, err error) {
	email = normalize.Email(email)
	filter := bson.M{"$or": []bson.M{{"google_id": googleID}, {"email": email}}}

	err = s.c.FindOne(ctx, filter).Decode(&u)
	switch {
	case err == nil:
		if u.GoogleID != googleID {
			u.GoogleID = googleID
			u.UpdatedAt = time.Now().UTC()
			if _, err := s.c.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
				"google_id":  googleID,
				"updated_at": u.UpdatedAt,
			}}); err != nil {
				return models.User{}, false, err
			}
		}
		return u, false, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		if strings.TrimSpace(fullName) == "" {
			fullName = email
		}
		u, err = s.Create(ctx, models.User{
			FullName:   fullName,
			Email:      email,
			AuthMethod: models.AuthGoogle,
			GoogleID:   googleID,
		})
		return u, err == nil, err
	default:
		return models.User{}, false, err
	}
}

// SetPassword replaces the user's password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkTutorialComplete records that the user dismissed the dashboard tour.
func (s *Store) MarkTutorialComplete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"has_completed_tutorial": true,
		"updated_at":             time.Now().UTC(),
	}})
	return err
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// NamesByIDs returns id → full name for the given users.
func (s *Store) NamesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"full_name": 1, "email": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
