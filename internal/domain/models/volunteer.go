// internal/domain/models/volunteer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnassignedGroup is the display bucket for volunteers without a group.
const UnassignedGroup = "Unassigned"

// Volunteer is a person who can be put on shifts for one event.
// Group is denormalized by name; GroupID is set when the group exists.
type Volunteer struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID    primitive.ObjectID  `bson:"event_id" json:"event_id"`
	Name       string              `bson:"name" json:"name"`
	NameCI     string              `bson:"name_ci" json:"-"`
	Email      string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone      string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Group      string              `bson:"group,omitempty" json:"group,omitempty"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	MaxHours   *float64            `bson:"max_hours,omitempty" json:"max_hours,omitempty"`
	ExternalID string              `bson:"external_id,omitempty" json:"external_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// GroupLabel returns the group name or the Unassigned bucket.
func (v Volunteer) GroupLabel() string {
	if v.Group == "" {
		return UnassignedGroup
	}
	return v.Group
}

// VolunteerGroup is a named category of volunteers within an event.
type VolunteerGroup struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID         primitive.ObjectID `bson:"event_id" json:"event_id"`
	Name            string             `bson:"name" json:"name"`
	NameCI          string             `bson:"name_ci" json:"-"`
	Color           string             `bson:"color,omitempty" json:"color,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	MaxHoursDefault *float64           `bson:"max_hours_default,omitempty" json:"max_hours_default,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
