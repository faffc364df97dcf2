// internal/app/features/kiosk/search.go
package kiosk

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assetJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Ident string `json:"identifier,omitempty"`
}

type assignmentJSON struct {
	ID         string `json:"id"`
	Shift      string `json:"shift"`
	When       string `json:"when"`
	CheckedIn  bool   `json:"checked_in"`
	CheckedOut bool   `json:"checked_out"`
	Active     bool   `json:"active"`
}

type volunteerJSON struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Group       string           `json:"group"`
	Assignments []assignmentJSON `json:"assignments"`
	Assets      []assetJSON      `json:"assets"`
}

type searchResponse struct {
	Volunteers []volunteerJSON `json:"volunteers"`
	Available  []assetJSON     `json:"available_assets"`
}

type kioskData struct {
	formutil.EventBase
	Available []assetJSON
}

func toAssetJSON(a models.Asset) assetJSON {
	return assetJSON{ID: a.ID.Hex(), Name: a.Name, Type: a.Type, Ident: a.Identifier}
}

// ServeKiosk renders GET /events/{eventID}/kiosk.
func (h *Handler) ServeKiosk(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	avail, err := h.OnSite.Assets.ListAvailable(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list available assets failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	data := kioskData{}
	formutil.SetEventBase(&data.EventBase, r, ev, "Kiosk", "kiosk")
	for _, a := range avail {
		data.Available = append(data.Available, toAssetJSON(a))
	}
	templates.Render(w, r, "kiosk_page", data)
}

// ServeSearch answers GET /events/{eventID}/kiosk/search?q= with matching
// volunteers, their assignments and the equipment they hold.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	resp, err := h.search(ctx, ev, query.Get(r, "q"))
	if err != nil {
		h.ErrLog.LogJSONError(w, r, "kiosk search failed", err, http.StatusInternalServerError, "Search failed.")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) search(ctx context.Context, ev models.Event, q string) (searchResponse, error) {
	resp := searchResponse{Volunteers: []volunteerJSON{}, Available: []assetJSON{}}
	loc := ev.Location()

	vols, err := h.OnSite.Volunteers.Search(ctx, ev.ID, q)
	if err != nil {
		return resp, err
	}
	avail, err := h.OnSite.Assets.ListAvailable(ctx, ev.ID)
	if err != nil {
		return resp, err
	}
	for _, a := range avail {
		resp.Available = append(resp.Available, toAssetJSON(a))
	}
	if len(vols) == 0 {
		return resp, nil
	}

	shifts, err := h.Shifts.List(ctx, ev.ID)
	if err != nil {
		return resp, err
	}
	shiftByID := make(map[primitive.ObjectID]models.Shift, len(shifts))
	for _, s := range shifts {
		shiftByID[s.ID] = s
	}

	for _, v := range vols {
		vj := volunteerJSON{ID: v.ID.Hex(), Name: v.Name, Group: v.GroupLabel(), Assignments: []assignmentJSON{}, Assets: []assetJSON{}}

		as, err := h.OnSite.Assignments.ListByVolunteer(ctx, ev.ID, v.ID)
		if err != nil {
			return resp, err
		}
		sort.SliceStable(as, func(i, j int) bool {
			return shiftByID[as[i].ShiftID].StartTime.Before(shiftByID[as[j].ShiftID].StartTime)
		})
		for _, a := range as {
			s := shiftByID[a.ShiftID]
			vj.Assignments = append(vj.Assignments, assignmentJSON{
				ID:         a.ID.Hex(),
				Shift:      s.Name,
				When:       viewdata.Window(s.StartTime, s.EndTime, loc),
				CheckedIn:  a.CheckedIn,
				CheckedOut: a.CheckedOutAt != nil,
				Active:     a.Active(),
			})
		}

		open, err := h.OnSite.Holdings.ListOpenByVolunteer(ctx, ev.ID, v.ID)
		if err != nil {
			return resp, err
		}
		if len(open) > 0 {
			ids := make([]primitive.ObjectID, 0, len(open))
			for _, o := range open {
				ids = append(ids, o.AssetID)
			}
			held, err := h.OnSite.Assets.ListByIDs(ctx, ev.ID, ids)
			if err != nil {
				return resp, err
			}
			for _, a := range held {
				vj.Assets = append(vj.Assets, toAssetJSON(a))
			}
		}
		resp.Volunteers = append(resp.Volunteers, vj)
	}
	return resp, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
