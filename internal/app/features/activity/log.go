// internal/app/features/activity/log.go
package activity

import (
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/paging"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type logRow struct {
	Type        string
	Label       string
	Description string
	At          string
}

type logData struct {
	formutil.EventBase

	Rows  []logRow
	Range paging.Range
}

// typeLabels maps stored activity types to column labels.
var typeLabels = map[string]string{
	"check_in":  "Check-in",
	"check_out": "Check-out",
	"asset_out": "Equipment out",
	"asset_in":  "Equipment in",
}

func typeLabel(t string) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return t
}

// ServeLog renders GET /events/{eventID}/activity.
func (h *Handler) ServeLog(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	loc := ev.Location()
	start := paging.ParseStart(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activity log")
	defer cancel()

	total, err := h.Activity.CountByEvent(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count activity failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	entries, err := h.Activity.ListByEvent(ctx, ev.ID, paging.PageSize, paging.Skip(start))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list activity failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}

	data := logData{Range: paging.ComputeRange(start, len(entries), total)}
	formutil.SetEventBase(&data.EventBase, r, ev, "Activity", "activity")
	for _, e := range entries {
		data.Rows = append(data.Rows, logRow{
			Type:        e.Type,
			Label:       typeLabel(e.Type),
			Description: e.Description,
			At:          viewdata.Stamp(e.CreatedAt, loc),
		})
	}

	templates.Render(w, r, "activity_log", data)
}
