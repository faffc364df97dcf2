// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment binds a volunteer to a shift, with check-in/out timestamps.
// EventID is denormalized so event-wide queries avoid a shift lookup.
type Assignment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID       primitive.ObjectID `bson:"event_id" json:"event_id"`
	ShiftID       primitive.ObjectID `bson:"shift_id" json:"shift_id"`
	VolunteerID   primitive.ObjectID `bson:"volunteer_id" json:"volunteer_id"`
	CheckedIn     bool               `bson:"checked_in" json:"checked_in"`
	CheckedInAt   *time.Time         `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	CheckedOutAt  *time.Time         `bson:"checked_out_at,omitempty" json:"checked_out_at,omitempty"`
	LateDismissed bool               `bson:"late_dismissed" json:"late_dismissed"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Active reports whether the volunteer is currently on site for this assignment.
func (a Assignment) Active() bool {
	return a.CheckedIn && a.CheckedOutAt == nil
}
