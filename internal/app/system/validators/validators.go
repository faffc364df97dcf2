// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/shiftboard/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("events", eventsSchema())
	ensure("event_invitations", invitationsSchema())

	// Event-scoped collections
	ensure("volunteers", volunteersSchema())
	ensure("shifts", shiftsSchema())
	ensure("assignments", assignmentsSchema())
	ensure("assets", assetsSchema())
	ensure("activity_logs", activitySchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("event_admins", nil)
	ensure("volunteer_groups", nil)
	ensure("asset_assignments", nil)
	ensure("login_records", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "email", "role", "status", "auth_method"},
			"properties": bson.M{
				"full_name":    nonBlank,
				"full_name_ci": bson.M{"bsonType": "string"},
				"email":        nonBlank,
				"role":         bson.M{"enum": bson.A{"organizer"}},
				"status":       bson.M{"enum": bson.A{"active", "disabled"}},
				"auth_method":  bson.M{"enum": bson.A{models.AuthPassword, models.AuthGoogle}},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "date", "timezone", "owner_id"},
			"properties": bson.M{
				"name":     nonBlank,
				"date":     bson.M{"bsonType": "date"},
				"timezone": nonBlank,
				"owner_id": bson.M{"bsonType": "objectId"},
				"recurrence_rule": bson.M{"enum": bson.A{
					models.RecurrenceNone, models.RecurrenceWeekly, models.RecurrenceBiweekly, models.RecurrenceMonthly,
				}},
			},
		},
	}
}

func invitationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "email", "token", "status", "expires_at"},
			"properties": bson.M{
				"event_id":   bson.M{"bsonType": "objectId"},
				"email":      nonBlank,
				"token":      nonBlank,
				"status":     bson.M{"enum": bson.A{models.InvitePending, models.InviteAccepted, models.InviteRevoked, models.InviteExpired}},
				"expires_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func volunteersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "name"},
			"properties": bson.M{
				"event_id":  bson.M{"bsonType": "objectId"},
				"name":      nonBlank,
				"max_hours": bson.M{"bsonType": bson.A{"double", "int", "long"}, "minimum": 0, "maximum": 168},
			},
		},
	}
}

func shiftsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "name", "start_time", "end_time"},
			"properties": bson.M{
				"event_id":        bson.M{"bsonType": "objectId"},
				"name":            nonBlank,
				"start_time":      bson.M{"bsonType": "date"},
				"end_time":        bson.M{"bsonType": "date"},
				"required_groups": bson.M{"bsonType": "object"},
			},
		},
	}
}

func assignmentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "shift_id", "volunteer_id", "checked_in"},
			"properties": bson.M{
				"event_id":       bson.M{"bsonType": "objectId"},
				"shift_id":       bson.M{"bsonType": "objectId"},
				"volunteer_id":   bson.M{"bsonType": "objectId"},
				"checked_in":     bson.M{"bsonType": "bool"},
				"checked_in_at":  bson.M{"bsonType": "date"},
				"checked_out_at": bson.M{"bsonType": "date"},
				"late_dismissed": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func assetsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "name", "status"},
			"properties": bson.M{
				"event_id": bson.M{"bsonType": "objectId"},
				"name":     nonBlank,
				"status":   bson.M{"enum": bson.A{models.AssetAvailable, models.AssetAssigned}},
			},
		},
	}
}

func activitySchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "type", "description", "created_at"},
			"properties": bson.M{
				"event_id":    bson.M{"bsonType": "objectId"},
				"type":        bson.M{"enum": bson.A{models.ActivityCheckIn, models.ActivityCheckOut, models.ActivityAssetOut, models.ActivityAssetIn}},
				"description": bson.M{"bsonType": "string"},
				"created_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}
