// internal/app/features/groups/handler.go
package groups

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the volunteer groups of an event. Groups are the
// categories shifts ask for ("Medical: 2").
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager

	Groups     *volgroupstore.Store
	Volunteers *volunteerstore.Store
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sm,
		Groups:     volgroupstore.New(db),
		Volunteers: volunteerstore.New(db),
	}
}
