// internal/app/features/events/handler.go
package events

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	invitationstore "github.com/dalemusser/shiftboard/internal/app/store/invitations"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auditlog"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the event list and the event-level actions
// (create, settings, delete, clone, next occurrence).
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger

	Events      *eventstore.Store
	Admins      *eventadminstore.Store
	Invitations *invitationstore.Store
	Groups      *volgroupstore.Store
	Volunteers  *volunteerstore.Store
	Shifts      *shiftstore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ErrLog:      errLog,
		SessionMgr:  sm,
		AuditLog:    audit,
		Events:      eventstore.New(db).WithLogger(logger),
		Admins:      eventadminstore.New(db),
		Invitations: invitationstore.New(db),
		Groups:      volgroupstore.New(db),
		Volunteers:  volunteerstore.New(db),
		Shifts:      shiftstore.New(db),
	}
}
