// internal/app/features/checkin/active.go
package checkin

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type activeRow struct {
	AssignmentID string
	VolunteerID  string
	Name         string
	Group        string
	Shift        string
	Since        string
	Overdue      bool
	Assets       []string
}

type assetOption struct {
	ID    string
	Label string
}

type activeData struct {
	formutil.EventBase

	Rows      []activeRow
	Available []assetOption
}

// ServeActive renders GET /events/{eventID}/active: everyone checked in and
// not yet checked out, with the equipment they hold.
func (h *Handler) ServeActive(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	loc := ev.Location()
	now := h.Now()
	back := "/events/" + ev.ID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	active, err := h.OnSite.Assignments.ListActive(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list active assignments failed", err, "A database error occurred.", back)
		return
	}
	shifts, err := h.Shifts.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list shifts failed", err, "A database error occurred.", back)
		return
	}
	holdings, err := h.OnSite.Holdings.ListOpenByEvent(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list asset holdings failed", err, "A database error occurred.", back)
		return
	}
	assets, err := h.Assets.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assets failed", err, "A database error occurred.", back)
		return
	}

	volIDs := make([]primitive.ObjectID, 0, len(active))
	for _, a := range active {
		volIDs = append(volIDs, a.VolunteerID)
	}
	vols, err := h.Volunteers.ListByIDs(ctx, ev.ID, volIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list volunteers failed", err, "A database error occurred.", back)
		return
	}

	volByID := make(map[primitive.ObjectID]models.Volunteer, len(vols))
	for _, v := range vols {
		volByID[v.ID] = v
	}
	shiftByID := make(map[primitive.ObjectID]models.Shift, len(shifts))
	for _, s := range shifts {
		shiftByID[s.ID] = s
	}
	assetByID := make(map[primitive.ObjectID]models.Asset, len(assets))
	for _, a := range assets {
		assetByID[a.ID] = a
	}
	held := make(map[primitive.ObjectID][]string)
	for _, hd := range holdings {
		if a, ok := assetByID[hd.AssetID]; ok {
			held[hd.VolunteerID] = append(held[hd.VolunteerID], a.Name)
		}
	}

	data := activeData{}
	formutil.SetEventBase(&data.EventBase, r, ev, "On site now", "active")

	for _, a := range active {
		v := volByID[a.VolunteerID]
		s := shiftByID[a.ShiftID]
		row := activeRow{
			AssignmentID: a.ID.Hex(),
			VolunteerID:  a.VolunteerID.Hex(),
			Name:         v.Name,
			Group:        v.GroupLabel(),
			Shift:        s.Name,
			Overdue:      !s.EndTime.IsZero() && now.After(s.EndTime),
			Assets:       held[a.VolunteerID],
		}
		if a.CheckedInAt != nil {
			row.Since = viewdata.Stamp(*a.CheckedInAt, loc)
		}
		data.Rows = append(data.Rows, row)
	}
	sort.SliceStable(data.Rows, func(i, j int) bool {
		return strings.ToLower(data.Rows[i].Name) < strings.ToLower(data.Rows[j].Name)
	})

	for _, a := range assets {
		if a.Status == models.AssetAvailable {
			data.Available = append(data.Available, assetOption{ID: a.ID.Hex(), Label: assetLabel(a)})
		}
	}

	templates.Render(w, r, "active_personnel", data)
}

func assetLabel(a models.Asset) string {
	if a.Identifier != "" {
		return a.Name + " (" + a.Identifier + ")"
	}
	return a.Name
}
