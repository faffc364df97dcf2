// internal/app/features/volunteers/delete.go
package volunteers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete processes POST /events/{eventID}/volunteers/{volunteerID}/delete.
// The volunteer's assignments go with them.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, ok := h.volunteerFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if _, err := h.Volunteers.Delete(ctx, ev.ID, v.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete volunteer failed", err, "Failed to delete volunteer.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, v.Name+" removed.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}

// HandleDeleteAll processes POST /events/{eventID}/volunteers/delete-all.
// The form must carry the confirm checkbox.
func (h *Handler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}
	if !formutil.Checked(r, "confirm") {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, "Tick the confirmation box to delete every volunteer.")
		http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, err := h.Volunteers.DeleteAll(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete all volunteers failed", err, "Failed to delete volunteers.", listURL(ev))
		return
	}

	h.Log.Info("volunteers deleted", zap.String("event_id", ev.ID.Hex()), zap.Int64("count", n))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Deleted "+strconv.FormatInt(n, 10)+" volunteers.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
