// internal/app/features/activity/export.go
package activity

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// ServeExportCSV streams GET /events/{eventID}/activity/export.
// Times are written in the event's time zone.
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	loc := ev.Location()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "activity export")
	defer cancel()

	entries, err := h.Activity.ListByEvent(ctx, ev.ID, 0, 0)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export activity failed", err, "Failed to export activity.", "/events/"+ev.ID.Hex()+"/activity")
		return
	}

	filename := fmt.Sprintf("%s_activity_%s.csv", viewdata.FileSlug(ev.Name), time.Now().In(loc).Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// UTF-8 BOM for Excel
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	_ = cw.Write([]string{"Time", "Type", "Description"})
	for _, e := range entries {
		_ = cw.Write([]string{
			e.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
			typeLabel(e.Type),
			e.Description,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("activity csv write failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
	}
}
