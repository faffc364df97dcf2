// internal/app/features/reports/page.go
package reports

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
)

type statRow struct {
	Name      string
	Group     string
	Hours     string
	Completed int
	Missed    int
}

type reportsData struct {
	formutil.EventBase

	Stats       []statRow
	Assignments int
	Unfilled    int
	TotalHours  string
}

// ServeReports renders GET /events/{eventID}/reports: the per-volunteer
// attendance table and links to the downloads.
func (h *Handler) ServeReports(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "reports page")
	defer cancel()

	d, err := h.load(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load report data failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	now := h.Now()

	data := reportsData{Assignments: len(d.Assignments)}
	formutil.SetEventBase(&data.EventBase, r, ev, "Reports", "reports")

	var total float64
	for _, st := range volunteerStats(d, now) {
		total += st.Hours
		data.Stats = append(data.Stats, statRow{
			Name:      st.Name,
			Group:     st.Group,
			Hours:     fmt.Sprintf("%.1f", st.Hours),
			Completed: st.Completed,
			Missed:    st.Missed(),
		})
	}
	data.TotalHours = fmt.Sprintf("%.1f", total)
	for _, l := range schedule(d, now) {
		if l.Volunteer == unfilled {
			data.Unfilled++
		}
	}

	templates.Render(w, r, "event_reports", data)
}

// ServeSignInSheet renders GET /events/{eventID}/reports/signin, a
// printable sheet with blank check-in and check-out boxes.
func (h *Handler) ServeSignInSheet(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "sign-in sheet")
	defer cancel()

	d, err := h.load(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load report data failed", err, "A database error occurred.", "/events/"+ev.ID.Hex()+"/reports")
		return
	}

	data := struct {
		formutil.EventBase
		Lines     []signInLine
		Generated string
	}{
		Lines:     signInSheet(d, ev.Location()),
		Generated: h.Now().In(ev.Location()).Format("January 2, 2006"),
	}
	formutil.SetEventBase(&data.EventBase, r, ev, "Sign-In Sheet", "reports")

	templates.Render(w, r, "reports_signin", data)
}
