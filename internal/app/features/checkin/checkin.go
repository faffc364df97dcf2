// internal/app/features/checkin/checkin.go
package checkin

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shift states on the roster, in display order.
const (
	statusLate      = "late"
	statusUpcoming  = "upcoming"
	statusCompleted = "completed"
)

type rosterRow struct {
	AssignmentID string
	Name         string
	Group        string
	CheckedIn    bool
	CheckedOut   bool
	Late         bool
	Dismissed    bool
}

type shiftBlock struct {
	Name   string
	When   string
	Status string
	Rows   []rosterRow

	start time.Time
}

type checkinData struct {
	formutil.EventBase

	Search string
	Shifts []shiftBlock
}

// shiftStatus is late once the shift has started with someone missing who
// has not been excused, completed when everyone is in or the shift is over,
// and upcoming otherwise.
func shiftStatus(s models.Shift, as []models.Assignment, now time.Time) string {
	allIn := len(as) > 0
	anyLate := false
	for _, a := range as {
		if !a.CheckedIn {
			allIn = false
			if !a.LateDismissed {
				anyLate = true
			}
		}
	}
	switch {
	case allIn:
		return statusCompleted
	case !now.Before(s.StartTime) && anyLate:
		return statusLate
	case now.After(s.EndTime):
		return statusCompleted
	default:
		return statusUpcoming
	}
}

func statusRank(s string) int {
	switch s {
	case statusLate:
		return 0
	case statusUpcoming:
		return 1
	default:
		return 2
	}
}

// ServeCheckIn renders GET /events/{eventID}/checkin. ?q filters by
// volunteer name or shift name.
func (h *Handler) ServeCheckIn(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	loc := ev.Location()
	now := h.Now()
	search := strings.ToLower(query.Get(r, "q"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	shifts, err := h.Shifts.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list shifts failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	assigns, err := h.OnSite.Assignments.ListByEvent(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assignments failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	vols, err := h.Volunteers.List(ctx, ev.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list volunteers failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}

	volByID := make(map[primitive.ObjectID]models.Volunteer, len(vols))
	for _, v := range vols {
		volByID[v.ID] = v
	}
	byShift := make(map[primitive.ObjectID][]models.Assignment)
	for _, a := range assigns {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a)
	}

	data := checkinData{Search: query.Get(r, "q")}
	formutil.SetEventBase(&data.EventBase, r, ev, "Check-in", "checkin")

	for _, s := range shifts {
		as := byShift[s.ID]
		if len(as) == 0 {
			continue
		}
		block := shiftBlock{
			Name:   s.Name,
			When:   viewdata.Window(s.StartTime, s.EndTime, loc),
			Status: shiftStatus(s, as, now),
			start:  s.StartTime,
		}
		match := search == "" || strings.Contains(strings.ToLower(s.Name), search) ||
			strings.Contains(strings.ToLower(block.When), search)
		for _, a := range as {
			v := volByID[a.VolunteerID]
			if !match && !strings.Contains(strings.ToLower(v.Name), search) {
				continue
			}
			block.Rows = append(block.Rows, rosterRow{
				AssignmentID: a.ID.Hex(),
				Name:         v.Name,
				Group:        v.GroupLabel(),
				CheckedIn:    a.CheckedIn,
				CheckedOut:   a.CheckedOutAt != nil,
				Late:         !a.CheckedIn && !a.LateDismissed && !now.Before(s.StartTime),
				Dismissed:    a.LateDismissed && !a.CheckedIn,
			})
		}
		if len(block.Rows) > 0 {
			data.Shifts = append(data.Shifts, block)
		}
	}
	sort.SliceStable(data.Shifts, func(i, j int) bool {
		ri, rj := statusRank(data.Shifts[i].Status), statusRank(data.Shifts[j].Status)
		if ri != rj {
			return ri < rj
		}
		return data.Shifts[i].start.Before(data.Shifts[j].start)
	})

	templates.Render(w, r, "checkin_roster", data)
}
