// internal/app/features/account/delete.go
package account

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DeleteConfirmWord must be typed to confirm account deletion.
const DeleteConfirmWord = "DELETE"

// HandleDelete processes POST /account/delete. Owned events are removed
// with everything under them, then the user, then the session.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/account")
		return
	}
	if strings.TrimSpace(r.FormValue("confirm")) != DeleteConfirmWord {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, `Type DELETE to confirm account deletion.`)
		http.Redirect(w, r, "/account", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, err := h.Events.DeleteOwnedCascade(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete owned events failed", err, "We couldn't delete your events. Nothing else was removed.", "/account")
		return
	}

	if _, err := h.Admins.DeleteByUser(ctx, uid); err != nil {
		h.Log.Warn("delete admin rows failed", zap.Error(err), zap.String("user_id", uid.Hex()))
	}
	if _, err := h.Logins.DeleteByUser(ctx, uid); err != nil {
		h.Log.Warn("delete login records failed", zap.Error(err), zap.String("user_id", uid.Hex()))
	}
	if _, err := h.Resets.DeleteByUser(ctx, uid); err != nil {
		h.Log.Warn("delete reset tokens failed", zap.Error(err), zap.String("user_id", uid.Hex()))
	}
	if _, err := h.Users.Delete(ctx, uid); err != nil {
		h.ErrLog.LogServerError(w, r, "delete user failed", err, "We couldn't delete your account.", "/account")
		return
	}

	h.AuditLog.AccountDeleted(ctx, r, uid, n)
	h.Log.Info("account deleted", zap.String("user_id", uid.Hex()), zap.Int("events_deleted", n))

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("sign out after delete failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleTutorialComplete processes POST /account/tutorial-complete.
func (h *Handler) HandleTutorialComplete(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.MarkTutorialComplete(ctx, uid); err != nil {
		h.ErrLog.LogJSONError(w, r, "mark tutorial complete failed", err, http.StatusInternalServerError, "Could not save.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
