// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/htmlsanitize"
	"github.com/dalemusser/shiftboard/internal/app/system/stats"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type fillRow struct {
	Name      string
	When      string
	Required  int
	Filled    int
	Remaining int
	Status    string
}

type upcomingRow struct {
	Name string
	When string
}

type feedRow struct {
	Type        string
	Description string
	At          string
}

type dashboardData struct {
	viewdata.EventVM

	Stats        stats.Dashboard
	Fill         []fillRow
	Upcoming     []upcomingRow
	Feed         []feedRow
	About        template.HTML
	ShowTutorial bool
}

// load fetches the event's shifts, assignments and volunteers and
// aggregates them.
func (h *Handler) load(ctx context.Context, ev models.Event) (stats.Dashboard, error) {
	shifts, err := h.Shifts.List(ctx, ev.ID)
	if err != nil {
		return stats.Dashboard{}, err
	}
	assigns, err := h.Assignments.ListByEvent(ctx, ev.ID)
	if err != nil {
		return stats.Dashboard{}, err
	}
	vols, err := h.Volunteers.List(ctx, ev.ID, "")
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Compute(stats.Input{Shifts: shifts, Assignments: assigns, Volunteers: vols}, h.Now()), nil
}

// ServeDashboard renders GET /events/{eventID}.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	loc := ev.Location()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.load(ctx, ev)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: load event data failed", err, "A database error occurred.", "/events")
		return
	}

	data := dashboardData{
		EventVM: viewdata.NewEventVM(r, ev, ev.Name, "dashboard"),
		Stats:   d,
		About:   htmlsanitize.PrepareForDisplay(ev.Description),
	}
	data.ShowTutorial = !data.HasCompletedTutorial

	for _, f := range d.ShiftFill {
		data.Fill = append(data.Fill, fillRow{
			Name:      f.Name,
			When:      viewdata.Window(f.Start, f.End, loc),
			Required:  f.Required,
			Filled:    f.Filled,
			Remaining: f.Remaining,
			Status:    f.Status,
		})
	}
	for _, s := range d.Upcoming {
		data.Upcoming = append(data.Upcoming, upcomingRow{
			Name: s.Name,
			When: viewdata.Window(s.StartTime, s.EndTime, loc),
		})
	}

	feed, err := h.Activity.ListByEvent(ctx, ev.ID, feedSize, 0)
	if err != nil {
		// The feed is secondary; show the numbers without it.
		h.Log.Warn("dashboard: load activity failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
	}
	for _, a := range feed {
		data.Feed = append(data.Feed, feedRow{
			Type:        a.Type,
			Description: a.Description,
			At:          viewdata.Stamp(a.CreatedAt, loc),
		})
	}

	templates.Render(w, r, "event_dashboard", data)
}

// ServeStatsJSON answers GET /events/{eventID}/stats.json for the
// dashboard's periodic refresh.
func (h *Handler) ServeStatsJSON(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.load(ctx, ev)
	if err != nil {
		h.ErrLog.LogJSONError(w, r, "dashboard: load stats failed", err, http.StatusInternalServerError, "Failed to load statistics.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_volunteers": d.TotalVolunteers,
		"total_shifts":     d.TotalShifts,
		"total_slots":      d.TotalSlots,
		"filled":           d.Filled,
		"unfilled":         d.Unfilled,
		"fill_rate":        d.FillRate,
		"total_hours":      d.TotalHours,
		"checked_in":       d.CheckedIn,
		"active_now":       d.ActiveNow,
		"late":             d.Late,
	})
}
