// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	activitystore "github.com/dalemusser/shiftboard/internal/app/store/activity"
	assetassignstore "github.com/dalemusser/shiftboard/internal/app/store/assetassign"
	assetstore "github.com/dalemusser/shiftboard/internal/app/store/assets"
	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	"github.com/dalemusser/shiftboard/internal/app/store/audit"
	contactstore "github.com/dalemusser/shiftboard/internal/app/store/contact"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	invitationstore "github.com/dalemusser/shiftboard/internal/app/store/invitations"
	loginstore "github.com/dalemusser/shiftboard/internal/app/store/logins"
	"github.com/dalemusser/shiftboard/internal/app/store/oauthstate"
	"github.com/dalemusser/shiftboard/internal/app/store/passwordreset"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	shifttemplatestore "github.com/dalemusser/shiftboard/internal/app/store/shifttemplates"
	userstore "github.com/dalemusser/shiftboard/internal/app/store/users"
	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ensurer interface {
	EnsureIndexes(ctx context.Context) error
}

type target struct {
	collection string
	store      ensurer
}

func targets(db *mongo.Database) []target {
	return []target{
		{"users", userstore.New(db)},
		{"events", eventstore.New(db)},
		{"event_admins", eventadminstore.New(db)},
		{"event_invitations", invitationstore.New(db)},
		{"volunteer_groups", volgroupstore.New(db)},
		{"volunteers", volunteerstore.New(db)},
		{"shifts", shiftstore.New(db)},
		{"assignments", assignmentstore.New(db)},
		{"assets", assetstore.New(db)},
		{"asset_assignments", assetassignstore.New(db)},
		// dashboards read the recent feed from activity_logs
		{"activity_logs", activitystore.New(db)},
		{"audit_events", audit.New(db)},
		{"login_records", loginstore.New(db)},
		{"oauth_states", oauthstate.New(db)},
		{"password_resets", passwordreset.New(db, passwordreset.DefaultExpiry)},
		{"shift_templates", shifttemplatestore.New(db)},
		{"contact_submissions", contactstore.New(db)},
	}
}

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
An index that already exists under another name is reported as a warning
and left in place.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	for _, tg := range targets(db) {
		start := time.Now()
		err := tg.store.EnsureIndexes(ctx)
		switch {
		case err == nil:
			logger.Debug("indexes ensured",
				zap.String("collection", tg.collection),
				zap.Duration("took", time.Since(start)))
		case isOptionsConflictErr(err):
			logger.Warn("index exists with different options; leaving it",
				zap.String("collection", tg.collection),
				zap.Error(err))
		case isDuplicateKeyErr(err):
			problems = append(problems, tg.collection+": cannot create unique index (duplicates present)")
		default:
			problems = append(problems, tg.collection+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB returns IndexOptionsConflict (85) or IndexKeySpecsConflict (86)
// when an index with the same keys already exists under a different name.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 85 || ce.Code == 86) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "IndexOptionsConflict") || strings.Contains(s, "IndexKeySpecsConflict")
}
