// internal/app/features/groups/groupdelete.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDeleteGroup processes POST /events/{eventID}/groups/{id}/delete.
// Volunteers in the group stay on the roster without a group.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, ok := h.groupFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if _, err := h.Groups.Delete(ctx, ev.ID, g.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete group failed", err, "Failed to delete group.", listURL(ev))
		return
	}

	h.Log.Info("group deleted", zap.String("event_id", ev.ID.Hex()), zap.String("group", g.Name))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Group deleted.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
