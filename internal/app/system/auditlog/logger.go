// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/shiftboard/internal/app/store/audit"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in, sign-up, password and account events.
	Auth string
	// Admin controls event management and admin roster events.
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.EventID != nil {
		fields = append(fields, zap.String("event_id", event.EventID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's mode.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if setting == ModeAll || setting == ModeDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, typ string, userID *primitive.ObjectID, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: typ,
		UserID:    userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

func adminEvent(r *http.Request, typ string, actorID, eventID primitive.ObjectID) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: typ,
		ActorID:   &actorID,
		EventID:   &eventID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in. provider is "password" or "google".
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider, email string) {
	e := authEvent(r, audit.EventLoginSuccess, &userID, true)
	e.Details = map[string]string{"provider": provider, "email": email}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a sign-in attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	e := authEvent(r, audit.EventLoginFailedUserNotFound, nil, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a sign-in with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventLoginFailedWrongPassword, &userID, false)
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a sign-in refused by the per-email limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	e := authEvent(r, audit.EventLoginFailedRateLimit, nil, false)
	e.FailureReason = "too many attempts"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// Logout logs a sign-out. userIDStr may be empty or malformed.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var uid *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		uid = &oid
	}
	l.Log(ctx, authEvent(r, audit.EventLogout, uid, true))
}

// Signup logs the creation of a new organizer account.
func (l *Logger) Signup(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string) {
	e := authEvent(r, audit.EventSignup, &userID, true)
	e.Details = map[string]string{"provider": provider}
	l.Log(ctx, e)
}

// PasswordChanged logs a password update from the account page.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, authEvent(r, audit.EventPasswordChanged, &userID, true))
}

// PasswordResetRequested logs a forgot-password request. The email is
// recorded whether or not an account exists.
func (l *Logger) PasswordResetRequested(ctx context.Context, r *http.Request, email string) {
	e := authEvent(r, audit.EventPasswordResetRequested, nil, true)
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// PasswordResetCompleted logs a consumed reset token.
func (l *Logger) PasswordResetCompleted(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, authEvent(r, audit.EventPasswordResetCompleted, &userID, true))
}

// AccountDeleted logs a self-service account deletion.
func (l *Logger) AccountDeleted(ctx context.Context, r *http.Request, userID primitive.ObjectID, eventsDeleted int) {
	e := authEvent(r, audit.EventAccountDeleted, &userID, true)
	e.Details = map[string]string{"events_deleted": strconv.Itoa(eventsDeleted)}
	l.Log(ctx, e)
}

// --- Admin Events ---

// EventCreated logs a new staffing event.
func (l *Logger) EventCreated(ctx context.Context, r *http.Request, actorID, eventID primitive.ObjectID, name string) {
	e := adminEvent(r, audit.EventEventCreated, actorID, eventID)
	e.Details = map[string]string{"name": name}
	l.Log(ctx, e)
}

// EventDeleted logs a cascading event delete.
func (l *Logger) EventDeleted(ctx context.Context, r *http.Request, actorID, eventID primitive.ObjectID, name string) {
	e := adminEvent(r, audit.EventEventDeleted, actorID, eventID)
	e.Details = map[string]string{"name": name}
	l.Log(ctx, e)
}

// EventCloned logs a clone or next-occurrence copy. eventID is the new event.
func (l *Logger) EventCloned(ctx context.Context, r *http.Request, actorID, sourceID, eventID primitive.ObjectID) {
	e := adminEvent(r, audit.EventEventCloned, actorID, eventID)
	e.Details = map[string]string{"source_event_id": sourceID.Hex()}
	l.Log(ctx, e)
}

// AdminInvited logs an invitation sent to email.
func (l *Logger) AdminInvited(ctx context.Context, r *http.Request, actorID, eventID primitive.ObjectID, email string) {
	e := adminEvent(r, audit.EventAdminInvited, actorID, eventID)
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// AdminRemoved logs the removal of targetID from an event's admins.
func (l *Logger) AdminRemoved(ctx context.Context, r *http.Request, actorID, eventID, targetID primitive.ObjectID) {
	e := adminEvent(r, audit.EventAdminRemoved, actorID, eventID)
	e.UserID = &targetID
	l.Log(ctx, e)
}

// InvitationAccepted logs userID joining an event through an invitation.
func (l *Logger) InvitationAccepted(ctx context.Context, r *http.Request, userID, eventID primitive.ObjectID) {
	e := adminEvent(r, audit.EventInvitationAccepted, userID, eventID)
	e.UserID = &userID
	l.Log(ctx, e)
}
