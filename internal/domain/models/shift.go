// internal/domain/models/shift.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shift is a time-bounded slot requiring specific volunteer group counts.
// RequiredGroups maps group name to head count; AllowedGroups and
// ExcludedGroups restrict who may be placed on the shift.
type Shift struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID        primitive.ObjectID `bson:"event_id" json:"event_id"`
	Name           string             `bson:"name" json:"name"`
	StartTime      time.Time          `bson:"start_time" json:"start_time"`
	EndTime        time.Time          `bson:"end_time" json:"end_time"`
	RequiredGroups map[string]int     `bson:"required_groups,omitempty" json:"required_groups,omitempty"`
	AllowedGroups  []string           `bson:"allowed_groups,omitempty" json:"allowed_groups,omitempty"`
	ExcludedGroups []string           `bson:"excluded_groups,omitempty" json:"excluded_groups,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Hours is the shift duration in hours.
func (s Shift) Hours() float64 {
	d := s.EndTime.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d.Hours()
}

// ShiftTemplate is a reusable per-user shift shape (name, clock times,
// group requirements) used by the recurring-shift generator.
type ShiftTemplate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	DefaultStart   string             `bson:"default_start" json:"default_start"` // "15:04"
	DefaultEnd     string             `bson:"default_end" json:"default_end"`     // "15:04"
	DurationHours  float64            `bson:"duration_hours,omitempty" json:"duration_hours,omitempty"`
	RequiredGroups map[string]int     `bson:"required_groups,omitempty" json:"required_groups,omitempty"`
	AllowedGroups  []string           `bson:"allowed_groups,omitempty" json:"allowed_groups,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
