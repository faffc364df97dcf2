// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type groupRow struct {
	ID          string
	Name        string
	Color       string
	Description string
	Volunteers  int
}

type listData struct {
	formutil.EventBase

	Rows       []groupRow
	Unassigned int
	Form       groupForm
}

// ServeGroupsList renders GET /events/{eventID}/groups with member counts.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	h.renderList(w, r, ev, groupForm{Color: "#4f46e5"}, "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, ev models.Event, form groupForm, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	groups, err := h.Groups.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	vols, err := h.Volunteers.List(ctx, ev.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list volunteers failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	counts := make(map[string]int)
	for _, v := range vols {
		counts[v.GroupLabel()]++
	}

	data := listData{Form: form, Unassigned: counts[models.UnassignedGroup]}
	formutil.SetEventBase(&data.EventBase, r, ev, "Groups", "groups")
	if msg != "" {
		data.SetError(msg)
	}
	for _, g := range groups {
		data.Rows = append(data.Rows, groupRow{
			ID:          g.ID.Hex(),
			Name:        g.Name,
			Color:       g.Color,
			Description: g.Description,
			Volunteers:  counts[g.Name],
		})
	}

	templates.Render(w, r, "groups_list", data)
}
