// internal/domain/models/asset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset statuses.
const (
	AssetAvailable = "available"
	AssetAssigned  = "assigned"
)

// Asset is trackable equipment (radio, vest) assignable to volunteers.
type Asset struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID     primitive.ObjectID  `bson:"event_id" json:"event_id"`
	Name        string              `bson:"name" json:"name"`
	Type        string              `bson:"type,omitempty" json:"type,omitempty"`
	Identifier  string              `bson:"identifier,omitempty" json:"identifier,omitempty"`
	Status      string              `bson:"status" json:"status"`
	VolunteerID *primitive.ObjectID `bson:"volunteer_id,omitempty" json:"volunteer_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AssetAssignment is one checkout of an asset. CheckedInAt is nil and Open
// is true while out; the unique open-asset index keys off Open.
type AssetAssignment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID      primitive.ObjectID `bson:"event_id" json:"event_id"`
	AssetID      primitive.ObjectID `bson:"asset_id" json:"asset_id"`
	VolunteerID  primitive.ObjectID `bson:"volunteer_id" json:"volunteer_id"`
	CheckedOutAt time.Time          `bson:"checked_out_at" json:"checked_out_at"`
	CheckedInAt  *time.Time         `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Open         bool               `bson:"open,omitempty" json:"-"`
}
