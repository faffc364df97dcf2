// internal/app/features/broadcast/handler.go
package broadcast

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/broadcast"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler composes and sends volunteer broadcasts.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager

	Senders   []broadcast.Sender
	BatchSize int

	Volunteers *volunteerstore.Store
	Groups     *volgroupstore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, senders []broadcast.Sender, batchSize int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sm,
		Senders:    senders,
		BatchSize:  batchSize,
		Volunteers: volunteerstore.New(db),
		Groups:     volgroupstore.New(db),
	}
}
