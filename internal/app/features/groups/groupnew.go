// internal/app/features/groups/groupnew.go
package groups

import (
	"context"
	"errors"
	"net/http"

	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
)

// HandleCreateGroup processes POST /events/{eventID}/groups.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}

	form := parseGroupForm(r)
	if msg := form.validate(); msg != "" {
		h.renderList(w, r, ev, form, msg)
		return
	}
	mh, _ := form.maxHours()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err := h.Groups.Create(ctx, models.VolunteerGroup{
		EventID:         ev.ID,
		Name:            form.Name,
		Color:           form.Color,
		Description:     form.Description,
		MaxHoursDefault: mh,
	})
	if errors.Is(err, volgroupstore.ErrDuplicateGroupName) {
		h.renderList(w, r, ev, form, "A group with this name already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create group failed", err, "Failed to create group.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Group created.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
