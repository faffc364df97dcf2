// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/authutil"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, _, _, ok := authzUser(r); ok {
		http.Redirect(w, r, urlutil.SafeReturn(query.Get(r, "return"), "", "/events"), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, "", query.Get(r, "return"), oauthErrors[query.Get(r, "error")])
}

// oauthErrors maps the codes the Google callback redirects with.
var oauthErrors = map[string]string{
	"google_not_configured": "Google sign-in is not available.",
	"google_denied":         "Google sign-in was cancelled.",
	"invalid_state":         "Your sign-in attempt expired. Please try again.",
	"invalid_code":          "Google sign-in failed. Please try again.",
	"token_exchange":        "Google sign-in failed. Please try again.",
	"user_info":             "We couldn't read your Google profile. Please try again.",
	"email_unverified":      "Your Google email address is not verified.",
	"account_disabled":      "Your account is disabled. Please contact support.",
	"session":               "Unable to create session. Please try again.",
	"internal":              "A server error occurred. Please try again.",
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	ret := r.FormValue("return")

	if res := inputval.Validate(inputval.LoginInput{Email: email, Password: password}); res.HasErrors() {
		h.renderLogin(w, r, email, ret, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if allowed, _ := h.Limiter.Check(email); !allowed {
		h.AuditLog.LoginFailedRateLimit(ctx, r, email)
		h.renderLogin(w, r, email, ret, ratelimit.MsgTooManyAttempts)
		return
	}

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.Limiter.RecordFailure(email)
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		h.renderLogin(w, r, email, ret, ratelimit.MsgInvalidCredentials)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", "/login")
		return
	}

	if u.Status == "disabled" {
		h.renderLogin(w, r, email, ret, "Your account is disabled. Please contact support.")
		return
	}
	if u.PasswordHash == "" && u.AuthMethod == models.AuthGoogle {
		h.renderLogin(w, r, email, ret, "This account uses Google sign-in. Use the Google button below.")
		return
	}

	if !authutil.CheckPassword(password, u.PasswordHash) {
		h.Limiter.RecordFailure(email)
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		h.renderLogin(w, r, email, ret, ratelimit.MsgInvalidCredentials)
		return
	}

	h.Limiter.Reset(email)
	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		h.renderLogin(w, r, email, ret, "Unable to create session. Please try again.")
		return
	}

	if err := h.Logins.CreateFrom(ctx, r, u.ID, models.AuthPassword); err != nil {
		h.Log.Warn("login record insert failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, models.AuthPassword, email)

	http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/events"), http.StatusSeeOther)
}
