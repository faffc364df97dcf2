// internal/app/features/shifts/handler.go
package shifts

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	shifttemplatestore "github.com/dalemusser/shiftboard/internal/app/store/shifttemplates"
	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /events/{eventID}/shifts.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager

	Shifts      *shiftstore.Store
	Assignments *assignmentstore.Store
	Groups      *volgroupstore.Store
	Templates   *shifttemplatestore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ErrLog:      errLog,
		SessionMgr:  sm,
		Shifts:      shiftstore.New(db),
		Assignments: assignmentstore.New(db),
		Groups:      volgroupstore.New(db),
		Templates:   shifttemplatestore.New(db),
	}
}
