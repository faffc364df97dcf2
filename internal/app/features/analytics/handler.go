// internal/app/features/analytics/handler.go
package analytics

import (
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/dalemusser/shiftboard/internal/app/system/telemetry"
	"go.uber.org/zap"
)

// Handler serves the browser beacons and the password-gated analytics
// dashboard.
type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager

	Store *telemetry.Analytics

	// PasswordHash is the hex SHA-256 of the dashboard password. Empty
	// disables the dashboard.
	PasswordHash string

	// Throttle limits the public beacon endpoints per client IP.
	Throttle *ratelimit.IPThrottle

	// LoginThrottle limits password attempts on the dashboard gate.
	LoginThrottle *ratelimit.IPThrottle
}

func NewHandler(store *telemetry.Analytics, passwordHash string, throttle *ratelimit.IPThrottle, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		ErrLog:       errLog,
		SessionMgr:   sm,
		Store:        store,
		PasswordHash: passwordHash,
		Throttle:     throttle,
	}
}
