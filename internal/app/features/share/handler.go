// internal/app/features/share/handler.go
package share

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	invitationstore "github.com/dalemusser/shiftboard/internal/app/store/invitations"
	userstore "github.com/dalemusser/shiftboard/internal/app/store/users"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages who can run an event: current admins and pending
// invitations, plus the invitee's accept/decline pages.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Mailer     *mailer.Mailer
	BaseURL    string // for accept links, e.g. "https://shiftboard.app"

	Admins      *eventadminstore.Store
	Invitations *invitationstore.Store
	Users       *userstore.Store
	Events      *eventstore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, mail *mailer.Mailer, baseURL string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ErrLog:      errLog,
		SessionMgr:  sm,
		Mailer:      mail,
		BaseURL:     baseURL,
		Admins:      eventadminstore.New(db),
		Invitations: invitationstore.New(db),
		Users:       userstore.New(db),
		Events:      eventstore.New(db),
	}
}
