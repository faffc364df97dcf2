// internal/app/features/shifttemplates/handler.go
package shifttemplates

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	shifttemplatestore "github.com/dalemusser/shiftboard/internal/app/store/shifttemplates"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages the signed-in organizer's reusable shift templates.
// Templates belong to a user, not an event.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager

	Templates *shifttemplatestore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sm,
		Templates:  shifttemplatestore.New(db),
	}
}
