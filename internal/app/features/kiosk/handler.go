// internal/app/features/kiosk/handler.go
package kiosk

import (
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	"github.com/dalemusser/shiftboard/internal/app/system/onsite"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the self-service check-in kiosk. The kiosk runs on an
// organizer's signed-in device, so it sits behind the event gate.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	OnSite   *onsite.Service
	Shifts   *shiftstore.Store
	Throttle *ratelimit.IPThrottle

	Now func() time.Time
}

func NewHandler(db *mongo.Database, throttle *ratelimit.IPThrottle, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		OnSite:   onsite.New(db, logger),
		Shifts:   shiftstore.New(db),
		Throttle: throttle,
		Now:      time.Now,
	}
}
