// internal/domain/models/activity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity types recorded in an event's activity feed.
const (
	ActivityCheckIn  = "check_in"
	ActivityCheckOut = "check_out"
	ActivityAssetOut = "asset_out"
	ActivityAssetIn  = "asset_in"
)

// ActivityLog is one line of an event's on-site activity feed.
type ActivityLog struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID     primitive.ObjectID  `bson:"event_id" json:"event_id"`
	Type        string              `bson:"type" json:"type"`
	Description string              `bson:"description" json:"description"`
	VolunteerID *primitive.ObjectID `bson:"volunteer_id,omitempty" json:"volunteer_id,omitempty"`
	RelatedID   *primitive.ObjectID `bson:"related_id,omitempty" json:"related_id,omitempty"`
	Meta        map[string]string   `bson:"meta,omitempty" json:"meta,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}
