// internal/app/features/reports/xlsx.go
package reports

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetSchedule = "Master Schedule"
	sheetStats    = "Volunteer Stats"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	scheduleWidths = []float64{24, 18, 18, 26, 16, 12}
	statsWidths    = []float64{26, 16, 12, 16, 12}
)

// writeSheet fills sheet with a styled, frozen header row followed by
// rows.
func writeSheet(f *excelize.File, sheet string, headerStyle int, header []string, widths []float64, rows [][]any) error {
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// buildWorkbook assembles the master schedule and volunteer stats
// sheets. The caller closes the returned file.
func buildWorkbook(d eventData, loc *time.Location, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetSchedule); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetStats); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	var schedRows [][]any
	for _, rec := range scheduleRecords(schedule(d, now), loc) {
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		schedRows = append(schedRows, row)
	}
	if err := writeSheet(f, sheetSchedule, headerStyle, scheduleHeader, scheduleWidths, schedRows); err != nil {
		f.Close()
		return nil, err
	}

	// Numbers stay numeric so the sheet can be summed.
	var statRows [][]any
	for _, st := range volunteerStats(d, now) {
		statRows = append(statRows, []any{st.Name, st.Group, roundTenth(st.Hours), st.Completed, st.Missed()})
	}
	if err := writeSheet(f, sheetStats, headerStyle, statsHeader, statsWidths, statRows); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

// ServeScheduleXLSX streams GET /events/{eventID}/reports/schedule.xlsx.
func (h *Handler) ServeScheduleXLSX(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	back := "/events/" + ev.ID.Hex() + "/reports"

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "schedule xlsx")
	defer cancel()

	d, err := h.load(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load report data failed", err, "Failed to export the workbook.", back)
		return
	}

	f, err := buildWorkbook(d, ev.Location(), h.Now())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build workbook failed", err, "Failed to export the workbook.", back)
		return
	}
	defer f.Close()

	filename := viewdata.FileSlug(ev.Name) + "_schedule.xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	if err := f.Write(w); err != nil {
		h.Log.Warn("workbook write failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
	}
}
