// internal/app/features/activity/handler.go
package activity

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/store/activity"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the event activity log pages.
type Handler struct {
	Activity *activity.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler creates a new activity Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Activity: activity.New(db),
		ErrLog:   errLog,
		Log:      logger,
	}
}
