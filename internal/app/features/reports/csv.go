// internal/app/features/reports/csv.go
package reports

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"go.uber.org/zap"
)

const stampLayout = "2006-01-02 15:04"

// scheduleRecords renders schedule lines as CSV/XLSX cells in loc.
func scheduleRecords(lines []scheduleLine, loc *time.Location) [][]string {
	out := make([][]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, []string{
			l.Shift,
			l.Start.In(loc).Format(stampLayout),
			l.End.In(loc).Format(stampLayout),
			l.Volunteer,
			l.Group,
			l.Status,
		})
	}
	return out
}

func statsRecords(stats []volunteerStat) [][]string {
	out := make([][]string, 0, len(stats))
	for _, st := range stats {
		out = append(out, []string{
			st.Name,
			st.Group,
			strconv.FormatFloat(st.Hours, 'f', 1, 64),
			strconv.Itoa(st.Completed),
			strconv.Itoa(st.Missed()),
		})
	}
	return out
}

// writeCSV sends header and records as an Excel-friendly attachment.
func (h *Handler) writeCSV(w http.ResponseWriter, filename string, header []string, records [][]string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// UTF-8 BOM for Excel
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	_ = cw.Write(header)
	_ = cw.WriteAll(records)
	if err := cw.Error(); err != nil {
		h.Log.Warn("report csv write failed", zap.Error(err), zap.String("file", filename))
	}
}

// ServeScheduleCSV streams GET /events/{eventID}/reports/schedule.csv.
func (h *Handler) ServeScheduleCSV(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "schedule csv")
	defer cancel()

	d, err := h.load(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load report data failed", err, "Failed to export the schedule.", "/events/"+ev.ID.Hex()+"/reports")
		return
	}
	h.writeCSV(w, viewdata.FileSlug(ev.Name)+"_master_schedule.csv", scheduleHeader,
		scheduleRecords(schedule(d, h.Now()), ev.Location()))
}

// ServeStatsCSV streams GET /events/{eventID}/reports/stats.csv.
func (h *Handler) ServeStatsCSV(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "stats csv")
	defer cancel()

	d, err := h.load(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load report data failed", err, "Failed to export volunteer stats.", "/events/"+ev.ID.Hex()+"/reports")
		return
	}
	h.writeCSV(w, viewdata.FileSlug(ev.Name)+"_volunteer_stats.csv", statsHeader,
		statsRecords(volunteerStats(d, h.Now())))
}
