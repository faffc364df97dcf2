package invitationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TTL is how long an invitation link stays valid.
const TTL = 7 * 24 * time.Hour

var (
	ErrInvitationPending  = errors.New("invitation already pending for this email")
	ErrInvitationInvalid  = errors.New("invitation is no longer valid")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationMismatch = errors.New("invitation was sent to a different email address")
	errEmailRequired      = errors.New("email is required")
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("event_invitations"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_invitations_token").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "email", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_invitations_event_email"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_invitations_email"),
		},
	})
	return err
}

// Create issues a pending invitation. A second pending invitation for the
// same event and email is refused with ErrInvitationPending.
func (s *Store) Create(ctx context.Context, eventID primitive.ObjectID, email string, invitedBy primitive.ObjectID) (models.Invitation, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.Invitation{}, errEmailRequired
	}
	err := s.c.FindOne(ctx, bson.M{
		"event_id": eventID,
		"email":    email,
		"status":   models.InvitePending,
	}).Err()
	if err == nil {
		return models.Invitation{}, ErrInvitationPending
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Invitation{}, err
	}

	now := s.now()
	inv := models.Invitation{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		Email:     email,
		Token:     uuid.NewString(),
		Status:    models.InvitePending,
		InvitedBy: invitedBy,
		ExpiresAt: now.Add(TTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Invitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPending returns the event's open invitations.
func (s *Store) ListPending(ctx context.Context, eventID primitive.ObjectID) ([]models.Invitation, error) {
	return s.list(ctx, bson.M{"event_id": eventID, "status": models.InvitePending})
}

// ListPendingForEmail returns unexpired invitations addressed to email.
func (s *Store) ListPendingForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	return s.list(ctx, bson.M{
		"email":      normalize.Email(email),
		"status":     models.InvitePending,
		"expires_at": bson.M{"$gt": s.now()},
	})
}

func (s *Store) GetByToken(ctx context.Context, token string) (models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

func (s *Store) setStatus(ctx context.Context, filter bson.M, status string) (int64, error) {
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": s.now(),
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Revoke withdraws a pending invitation of eventID.
func (s *Store) Revoke(ctx context.Context, eventID, id primitive.ObjectID) error {
	n, err := s.setStatus(ctx, bson.M{"_id": id, "event_id": eventID, "status": models.InvitePending}, models.InviteRevoked)
	if err != nil {
		return err
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Decline lets the invitee refuse an invitation addressed to them.
func (s *Store) Decline(ctx context.Context, id primitive.ObjectID, userEmail string) error {
	n, err := s.setStatus(ctx, bson.M{
		"_id":    id,
		"email":  normalize.Email(userEmail),
		"status": models.InvitePending,
	}, models.InviteRevoked)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvitationInvalid
	}
	return nil
}

// Accept marks the invitation identified by token accepted on behalf of
// the signed-in user. The caller grants admin rights on success.
func (s *Store) Accept(ctx context.Context, token, userEmail string) (models.Invitation, error) {
	inv, err := s.GetByToken(ctx, token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Invitation{}, ErrInvitationInvalid
	}
	if err != nil {
		return models.Invitation{}, err
	}
	if inv.Status != models.InvitePending {
		return models.Invitation{}, ErrInvitationInvalid
	}
	if !s.now().Before(inv.ExpiresAt) {
		_, _ = s.setStatus(ctx, bson.M{"_id": inv.ID}, models.InviteExpired)
		return models.Invitation{}, ErrInvitationExpired
	}
	if inv.Email != normalize.Email(userEmail) {
		return models.Invitation{}, ErrInvitationMismatch
	}
	n, err := s.setStatus(ctx, bson.M{"_id": inv.ID, "status": models.InvitePending}, models.InviteAccepted)
	if err != nil {
		return models.Invitation{}, err
	}
	if n == 0 {
		return models.Invitation{}, ErrInvitationInvalid
	}
	inv.Status = models.InviteAccepted
	return inv, nil
}

// AcceptByID accepts an invitation listed on the invitee's events page.
func (s *Store) AcceptByID(ctx context.Context, id primitive.ObjectID, userEmail string) (models.Invitation, error) {
	var inv models.Invitation
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Invitation{}, ErrInvitationInvalid
	}
	if err != nil {
		return models.Invitation{}, err
	}
	return s.Accept(ctx, inv.Token, userEmail)
}

// ExpireOld flips pending invitations past their expiry to expired.
func (s *Store) ExpireOld(ctx context.Context) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.InvitePending, "expires_at": bson.M{"$lte": s.now()}},
		bson.M{"$set": bson.M{"status": models.InviteExpired, "updated_at": s.now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
