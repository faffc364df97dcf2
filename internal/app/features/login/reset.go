// internal/app/features/login/reset.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/store/passwordreset"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InvalidResetMessage is shown for unknown, used or expired tokens.
const InvalidResetMessage = "This reset link is invalid or has expired. Request a new one."

// ServeReset shows a confirm button rather than consuming on GET, so link
// scanners in mail clients don't burn the token.
func (h *Handler) ServeReset(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	data := resetFormData{Token: token}
	formutil.SetBase(&data.Base, r, "Reset your password", "/login")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Resets.Peek(ctx, token); err != nil {
		if !errors.Is(err, passwordreset.ErrNotFound) {
			h.Log.Error("reset: peek token failed", zap.Error(err))
		}
		data.SetError(InvalidResetMessage)
	} else {
		data.Valid = true
	}
	templates.Render(w, r, "reset_password", data)
}

// HandleReset redeems the token, signs the user in and sends them to the
// password form with the current-password check waived once.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reset, err := h.Resets.Consume(ctx, token)
	if err != nil {
		if !errors.Is(err, passwordreset.ErrNotFound) {
			h.Log.Error("reset: consume token failed", zap.Error(err))
		}
		data := resetFormData{Token: token}
		formutil.SetBase(&data.Base, r, "Reset your password", "/login")
		data.SetError(InvalidResetMessage)
		templates.Render(w, r, "reset_password", data)
		return
	}

	if _, err := h.Users.GetByID(ctx, reset.UserID); err != nil {
		h.ErrLog.LogServerError(w, r, "reset: load user failed", err, "We couldn't find your account.", "/login")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, reset.UserID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "reset: sign in failed", err, "Unable to create session. Please try again.", "/login")
		return
	}
	h.AuditLog.PasswordResetCompleted(ctx, r, reset.UserID)
	if err := h.SessionMgr.SetFlag(w, r, auth.ResetKey, true); err != nil {
		h.Log.Warn("reset: set flag failed", zap.Error(err))
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Choose a new password to finish resetting your account.")
	http.Redirect(w, r, "/account/update-password", http.StatusSeeOther)
}
