// internal/app/features/reports/handler.go
package reports

import (
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the event reports page and its downloads (CSV, XLSX and
// the printable sign-in sheet).
type Handler struct {
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	Shifts      *shiftstore.Store
	Assignments *assignmentstore.Store
	Volunteers  *volunteerstore.Store

	// Now is the clock used to classify attendance.
	Now func() time.Time
}

// NewHandler constructs a reports Handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ErrLog:      errLog,
		Shifts:      shiftstore.New(db),
		Assignments: assignmentstore.New(db),
		Volunteers:  volunteerstore.New(db),
		Now:         time.Now,
	}
}
