// internal/app/features/login/handler.go
package login

import (
	"fmt"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	loginstore "github.com/dalemusser/shiftboard/internal/app/store/logins"
	"github.com/dalemusser/shiftboard/internal/app/store/passwordreset"
	userstore "github.com/dalemusser/shiftboard/internal/app/store/users"
	"github.com/dalemusser/shiftboard/internal/app/system/auditlog"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authutil"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/mailer"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves sign-in, sign-up and the password-reset flow.
type Handler struct {
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
	SessionMgr    *auth.SessionManager
	Users         *userstore.Store
	Logins        *loginstore.Store
	Resets        *passwordreset.Store
	AuditLog      *auditlog.Logger
	Limiter       *ratelimit.EmailLimiter
	ResetLimiter  *ratelimit.Limiter // reset mails per address; nil means unlimited
	Mailer        *mailer.Mailer
	BaseURL       string // for reset links, e.g. "https://shiftboard.app"
	GoogleEnabled bool
}

// Deps bundles the collaborators shared with other features.
type Deps struct {
	SessionMgr    *auth.SessionManager
	AuditLog      *auditlog.Logger
	Limiter       *ratelimit.EmailLimiter
	ResetLimiter  *ratelimit.Limiter
	Mailer        *mailer.Mailer
	ResetExpiry   time.Duration
	BaseURL       string
	GoogleEnabled bool
}

func NewHandler(db *mongo.Database, deps Deps, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		ErrLog:        errLog,
		SessionMgr:    deps.SessionMgr,
		Users:         userstore.New(db),
		Logins:        loginstore.New(db),
		Resets:        passwordreset.New(db, deps.ResetExpiry),
		AuditLog:      deps.AuditLog,
		Limiter:       deps.Limiter,
		ResetLimiter:  deps.ResetLimiter,
		Mailer:        deps.Mailer,
		BaseURL:       deps.BaseURL,
		GoogleEnabled: deps.GoogleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	formutil.Base
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

type signupFormData struct {
	formutil.Base
	FullName      string
	Email         string
	PasswordRules string
	GoogleEnabled bool
}

type forgotFormData struct {
	formutil.Base
	Email string
}

type resetFormData struct {
	formutil.Base
	Token string
	Valid bool
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, email, ret, msg string) {
	data := loginFormData{Email: email, ReturnURL: ret, GoogleEnabled: h.GoogleEnabled}
	formutil.SetBase(&data.Base, r, "Sign in", "/")
	if msg != "" {
		data.SetError(msg)
	}
	templates.Render(w, r, "login", data)
}

func (h *Handler) renderSignup(w http.ResponseWriter, r *http.Request, name, email, msg string) {
	data := signupFormData{
		FullName:      name,
		Email:         email,
		PasswordRules: authutil.PasswordRules(),
		GoogleEnabled: h.GoogleEnabled,
	}
	formutil.SetBase(&data.Base, r, "Create your account", "/")
	if msg != "" {
		data.SetError(msg)
	}
	templates.Render(w, r, "signup", data)
}

// humanDuration renders an expiry like "1 hour" or "30 minutes".
func humanDuration(d time.Duration) string {
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
