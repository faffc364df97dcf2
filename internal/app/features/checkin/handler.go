// internal/app/features/checkin/handler.go
package checkin

import (
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	assetstore "github.com/dalemusser/shiftboard/internal/app/store/assets"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/onsite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the check-in roster and the on-site list.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	OnSite     *onsite.Service

	Shifts     *shiftstore.Store
	Volunteers *volunteerstore.Store
	Assets     *assetstore.Store

	Now func() time.Time
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sm,
		OnSite:     onsite.New(db, logger),
		Shifts:     shiftstore.New(db),
		Volunteers: volunteerstore.New(db),
		Assets:     assetstore.New(db),
		Now:        time.Now,
	}
}
