// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recurrence rules understood by the "next occurrence" action.
const (
	RecurrenceNone     = ""
	RecurrenceWeekly   = "WEEKLY"
	RecurrenceBiweekly = "BIWEEKLY"
	RecurrenceMonthly  = "MONTHLY"
)

// Event is an organizer-created staffing occasion. Shifts, volunteers,
// groups and assets all hang off an event by event_id.
type Event struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"-"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Date           time.Time          `bson:"date" json:"date"`         // midnight of the event day in TimeZone, stored UTC
	TimeZone       string             `bson:"timezone" json:"timezone"` // IANA id
	RecurrenceRule string             `bson:"recurrence_rule,omitempty" json:"recurrence_rule,omitempty"`
	OwnerID        primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Location resolves the event's time zone, falling back to UTC.
func (e Event) Location() *time.Location {
	if e.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EventAdmin grants a user management rights over one event.
type EventAdmin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EventID   primitive.ObjectID `bson:"event_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Role      string             `bson:"role"` // "admin"
	CreatedAt time.Time          `bson:"created_at"`
}

// Invitation statuses.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRevoked  = "revoked"
	InviteExpired  = "expired"
)

// Invitation asks someone, by email, to become an event admin.
type Invitation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EventID   primitive.ObjectID `bson:"event_id"`
	Email     string             `bson:"email"` // normalized lowercase
	Token     string             `bson:"token"`
	Status    string             `bson:"status"`
	InvitedBy primitive.ObjectID `bson:"invited_by"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}
