// internal/app/features/dashboard/handler.go
package dashboard

import (
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	activitystore "github.com/dalemusser/shiftboard/internal/app/store/activity"
	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// feedSize is how many activity entries the dashboard shows.
const feedSize = 10

type Handler struct {
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	Shifts      *shiftstore.Store
	Assignments *assignmentstore.Store
	Volunteers  *volunteerstore.Store
	Activity    *activitystore.Store

	// Now is the clock used for late and upcoming calculations.
	Now func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ErrLog:      errLog,
		Shifts:      shiftstore.New(db),
		Assignments: assignmentstore.New(db),
		Volunteers:  volunteerstore.New(db),
		Activity:    activitystore.New(db),
		Now:         time.Now,
	}
}
