// internal/app/features/assets/handler.go
package assets

import (
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/onsite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages an event's equipment and who holds it.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	OnSite     *onsite.Service

	Now func() time.Time
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sm,
		OnSite:     onsite.New(db, logger),
		Now:        time.Now,
	}
}
