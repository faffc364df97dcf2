// internal/app/features/assign/handler.go
package assign

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/scheduler"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the assignment board under /events/{eventID}/assign.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Scheduler  *scheduler.Client

	Shifts      *shiftstore.Store
	Assignments *assignmentstore.Store
	Volunteers  *volunteerstore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, sched *scheduler.Client, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ErrLog:      errLog,
		SessionMgr:  sm,
		Scheduler:   sched,
		Shifts:      shiftstore.New(db),
		Assignments: assignmentstore.New(db).WithLogger(logger),
		Volunteers:  volunteerstore.New(db),
	}
}
