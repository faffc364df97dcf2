// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth methods a user account can carry.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
)

// User is an organizer account. Event authority is not stored here;
// it comes from event_admins rows.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName             string             `bson:"full_name" json:"full_name"`
	FullNameCI           string             `bson:"full_name_ci" json:"-"`
	Email                string             `bson:"email" json:"email"` // normalized lowercase, unique
	AuthMethod           string             `bson:"auth_method" json:"auth_method"`
	PasswordHash         string             `bson:"password_hash,omitempty" json:"-"`
	GoogleID             string             `bson:"google_id,omitempty" json:"-"`
	Role                 string             `bson:"role" json:"role"` // organizer
	Status               string             `bson:"status" json:"status"`
	HasCompletedTutorial bool               `bson:"has_completed_tutorial" json:"has_completed_tutorial"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
