// internal/app/features/account/password.go
package account

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authutil"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type passwordData struct {
	formutil.Base

	// NeedCurrent is false after a reset link or for accounts that have
	// never had a password (Google sign-ups).
	NeedCurrent   bool
	PasswordRules string
}

func (h *Handler) renderPassword(w http.ResponseWriter, r *http.Request, needCurrent bool, msg string) {
	data := passwordData{NeedCurrent: needCurrent, PasswordRules: authutil.PasswordRules()}
	formutil.SetBase(&data.Base, r, "Update password", "/account")
	if msg != "" {
		data.SetError(msg)
	}
	templates.Render(w, r, "update_password", data)
}

// needsCurrent reports whether the form must ask for the current password.
func (h *Handler) needsCurrent(r *http.Request, u *models.User) bool {
	if u.PasswordHash == "" {
		return false
	}
	return !h.SessionMgr.Flag(r, auth.ResetKey)
}

// ServeUpdatePassword renders GET /account/update-password.
func (h *Handler) ServeUpdatePassword(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}
	h.renderPassword(w, r, h.needsCurrent(r, u), "")
}

// HandleUpdatePassword processes POST /account/update-password.
func (h *Handler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	needCurrent := h.needsCurrent(r, u)
	newPassword := r.FormValue("new_password")

	if needCurrent && !authutil.CheckPassword(r.FormValue("current_password"), u.PasswordHash) {
		h.renderPassword(w, r, needCurrent, "Current password is incorrect.")
		return
	}
	if err := authutil.ValidatePassword(newPassword); err != nil {
		h.renderPassword(w, r, needCurrent, err.Error())
		return
	}
	if newPassword != r.FormValue("confirm_password") {
		h.renderPassword(w, r, needCurrent, "New passwords do not match.")
		return
	}
	if u.PasswordHash != "" && authutil.CheckPassword(newPassword, u.PasswordHash) {
		h.renderPassword(w, r, needCurrent, "New password cannot be the same as your current password.")
		return
	}

	if err := h.Users.SetPassword(ctx, uid, newPassword); err != nil {
		h.ErrLog.LogServerError(w, r, "update password failed", err, "Failed to update password.", "/account")
		return
	}
	if _, err := h.Resets.DeleteByUser(ctx, uid); err != nil {
		h.Log.Warn("clear reset tokens failed", zap.Error(err), zap.String("user_id", uid.Hex()))
	}
	h.AuditLog.PasswordChanged(ctx, r, uid)

	if err := h.SessionMgr.SetFlag(w, r, auth.ResetKey, false); err != nil {
		h.Log.Warn("clear reset flag failed", zap.Error(err))
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Password updated.")
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}
