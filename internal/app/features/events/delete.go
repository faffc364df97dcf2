// internal/app/features/events/delete.go
package events

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete processes POST /events/{eventID}/delete. Only the owner may
// delete, and must retype the event name.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	_, _, uid, _ := authz.UserCtx(r)

	if ev.OwnerID != uid {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, "Only the event owner can delete this event.")
		http.Redirect(w, r, settingsURL(ev), http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", settingsURL(ev))
		return
	}
	if !strings.EqualFold(strings.TrimSpace(r.FormValue("confirm_name")), ev.Name) {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, "Type the event name exactly to confirm deletion.")
		http.Redirect(w, r, settingsURL(ev), http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Events.DeleteCascade(ctx, ev.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete event failed", err, "Failed to delete event.", settingsURL(ev))
		return
	}

	h.AuditLog.EventDeleted(ctx, r, uid, ev.ID, ev.Name)
	h.Log.Info("event deleted", zap.String("event_id", ev.ID.Hex()), zap.String("user_id", uid.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Event deleted.")
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}
