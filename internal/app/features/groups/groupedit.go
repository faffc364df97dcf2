// internal/app/features/groups/groupedit.go
package groups

import (
	"context"
	"errors"
	"net/http"

	volgroupstore "github.com/dalemusser/shiftboard/internal/app/store/volgroups"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type editData struct {
	formutil.EventBase
	GroupID string
	Form    groupForm
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, ev models.Event, g models.VolunteerGroup, form groupForm, msg string) {
	data := editData{GroupID: g.ID.Hex(), Form: form}
	formutil.SetEventBase(&data.EventBase, r, ev, "Edit group", "groups")
	if msg != "" {
		data.SetError(msg)
	}
	templates.Render(w, r, "group_edit", data)
}

// ServeEditGroup renders GET /events/{eventID}/groups/{id}/edit.
func (h *Handler) ServeEditGroup(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, ok := h.groupFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	h.renderEdit(w, r, ev, g, formFromGroup(g), "")
}

// HandleEditGroup processes POST /events/{eventID}/groups/{id}/edit.
// A rename is carried to the group's volunteers by the store.
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, ok := h.groupFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}

	form := parseGroupForm(r)
	if msg := form.validate(); msg != "" {
		h.renderEdit(w, r, ev, g, form, msg)
		return
	}
	mh, _ := form.maxHours()

	err := h.Groups.Update(ctx, ev.ID, g.ID, volgroupstore.Update{
		Name:            form.Name,
		Color:           form.Color,
		Description:     form.Description,
		MaxHoursDefault: mh,
	})
	if errors.Is(err, volgroupstore.ErrDuplicateGroupName) {
		h.renderEdit(w, r, ev, g, form, "A group with this name already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update group failed", err, "Failed to save group.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Group updated.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
