// internal/app/features/account/handler.go
package account

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	loginstore "github.com/dalemusser/shiftboard/internal/app/store/logins"
	"github.com/dalemusser/shiftboard/internal/app/store/passwordreset"
	userstore "github.com/dalemusser/shiftboard/internal/app/store/users"
	"github.com/dalemusser/shiftboard/internal/app/system/auditlog"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the signed-in user's account pages.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger

	Users  *userstore.Store
	Events *eventstore.Store
	Admins *eventadminstore.Store
	Logins *loginstore.Store
	Resets *passwordreset.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sm,
		AuditLog:   audit,
		Users:      userstore.New(db),
		Events:     eventstore.New(db).WithLogger(logger),
		Admins:     eventadminstore.New(db),
		Logins:     loginstore.New(db),
		Resets:     passwordreset.New(db, 0),
	}
}
