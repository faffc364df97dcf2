// internal/app/features/shifts/upload.go
package shifts

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/csvutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.uber.org/zap"
)

// HandleUpload processes POST /events/{eventID}/shifts/upload. Times
// without a zone are read in the event's zone; a bad row rejects the file.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		h.renderList(w, r, ev, shiftForm{}, recurringForm{}, "The file is too large or the upload failed.")
		return
	}
	file, _, err := r.FormFile("csv")
	if err != nil {
		h.renderList(w, r, ev, shiftForm{}, recurringForm{}, "Choose a CSV file to upload.")
		return
	}
	defer file.Close()

	rows, htmlErr, err := csvutil.PreScanShiftsCSV(file, ev.Location())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "read shift csv failed", err, "Failed to read the file.", listURL(ev))
		return
	}
	if htmlErr != "" {
		h.renderListHTMLError(w, r, ev, htmlErr)
		return
	}
	if len(rows) == 0 {
		h.renderList(w, r, ev, shiftForm{}, recurringForm{}, "The file has no shift rows.")
		return
	}

	shifts := make([]models.Shift, 0, len(rows))
	for _, row := range rows {
		shifts = append(shifts, models.Shift{
			Name:           row.Name,
			StartTime:      row.Start,
			EndTime:        row.End,
			RequiredGroups: row.RequiredGroups,
			AllowedGroups:  row.AllowedGroups,
			ExcludedGroups: row.ExcludedGroups,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, err := h.Shifts.CreateMany(ctx, ev.ID, shifts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "import shifts failed", err, "Failed to import shifts.", listURL(ev))
		return
	}

	h.Log.Info("shifts imported", zap.String("event_id", ev.ID.Hex()), zap.Int("count", n))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Imported "+strconv.Itoa(n)+" shifts.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
