// internal/app/features/volunteers/handler.go
package volunteers

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the event roster under /events/{eventID}/volunteers.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager

	Volunteers  *volunteerstore.Store
	Groups      *volgroupstore.Store
	Assignments *assignmentstore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ErrLog:      errLog,
		SessionMgr:  sm,
		Volunteers:  volunteerstore.New(db),
		Groups:      volgroupstore.New(db),
		Assignments: assignmentstore.New(db),
	}
}
