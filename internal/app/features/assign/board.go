// internal/app/features/assign/board.go
package assign

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/groupspec"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type option struct {
	ID    string
	Label string
}

type assignedRow struct {
	AssignmentID string
	Name         string
	Group        string
	OutOfGroup   bool
}

type shiftCard struct {
	ID       string
	Name     string
	When     string
	Required string
	Needed   int
	Filled   int
	Status   string
	Assigned []assignedRow
	Eligible []option
}

type volunteerLoad struct {
	Name     string
	Group    string
	Shifts   int
	Hours    string
	MaxHours string
	Over     bool
}

type boardData struct {
	formutil.EventBase

	Shifts         []shiftCard
	Load           []volunteerLoad
	SwapOptions    []option
	SchedulerReady bool
	Assigned       int
}

// fillStatus labels a shift by how its head count compares to its requirement.
func fillStatus(filled, needed int) string {
	switch {
	case filled > needed:
		return "over"
	case needed > 0 && filled == needed:
		return "full"
	case filled == 0:
		return "empty"
	default:
		return "partial"
	}
}

// ServeBoard renders GET /events/{eventID}/assign.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	loc := ev.Location()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	shifts, err := h.Shifts.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list shifts failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	vols, err := h.Volunteers.List(ctx, ev.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list volunteers failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	assigns, err := h.Assignments.ListByEvent(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assignments failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
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
	byShift := make(map[primitive.ObjectID][]models.Assignment)
	hours := make(map[primitive.ObjectID]float64)
	count := make(map[primitive.ObjectID]int)
	for _, a := range assigns {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a)
		if s, ok := shiftByID[a.ShiftID]; ok {
			hours[a.VolunteerID] += s.Hours()
			count[a.VolunteerID]++
		}
	}

	data := boardData{SchedulerReady: h.Scheduler.Configured(), Assigned: len(assigns)}
	formutil.SetEventBase(&data.EventBase, r, ev, "Assignments", "assign")

	for _, s := range shifts {
		card := shiftCard{
			ID:       s.ID.Hex(),
			Name:     s.Name,
			When:     viewdata.Window(s.StartTime, s.EndTime, loc),
			Required: groupspec.FormatRequired(s.RequiredGroups),
			Needed:   groupspec.Total(s.RequiredGroups),
		}
		taken := make(map[primitive.ObjectID]bool)
		for _, a := range byShift[s.ID] {
			v := volByID[a.VolunteerID]
			taken[a.VolunteerID] = true
			card.Assigned = append(card.Assigned, assignedRow{
				AssignmentID: a.ID.Hex(),
				Name:         v.Name,
				Group:        v.GroupLabel(),
				OutOfGroup:   !groupspec.Allowed(v.Group, s.AllowedGroups, s.ExcludedGroups),
			})
			data.SwapOptions = append(data.SwapOptions, option{ID: a.ID.Hex(), Label: v.Name + " – " + s.Name})
		}
		card.Filled = len(card.Assigned)
		card.Status = fillStatus(card.Filled, card.Needed)
		for _, v := range vols {
			if taken[v.ID] || !groupspec.Allowed(v.Group, s.AllowedGroups, s.ExcludedGroups) {
				continue
			}
			card.Eligible = append(card.Eligible, option{ID: v.ID.Hex(), Label: v.Name + " (" + v.GroupLabel() + ")"})
		}
		data.Shifts = append(data.Shifts, card)
	}

	for _, v := range vols {
		l := volunteerLoad{
			Name:   v.Name,
			Group:  v.GroupLabel(),
			Shifts: count[v.ID],
			Hours:  strconv.FormatFloat(hours[v.ID], 'f', 1, 64),
		}
		if v.MaxHours != nil {
			l.MaxHours = strconv.FormatFloat(*v.MaxHours, 'f', -1, 64)
			l.Over = hours[v.ID] > *v.MaxHours
		}
		data.Load = append(data.Load, l)
	}
	sort.SliceStable(data.Load, func(i, j int) bool { return data.Load[i].Shifts > data.Load[j].Shifts })

	templates.Render(w, r, "assign_board", data)
}

func boardURL(ev models.Event) string {
	return "/events/" + ev.ID.Hex() + "/assign"
}
