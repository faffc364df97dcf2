// internal/app/features/volunteers/upload.go
package volunteers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/csvutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

// HandleUpload processes POST /events/{eventID}/volunteers/upload.
// The whole file is validated first; nothing is inserted when any row is bad.
// Groups named in the file are created when missing.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		h.renderList(w, r, ev, volunteerForm{}, "The file is too large or the upload failed.")
		return
	}
	file, _, err := r.FormFile("csv")
	if err != nil {
		h.renderList(w, r, ev, volunteerForm{}, "Choose a CSV file to upload.")
		return
	}
	defer file.Close()

	rows, htmlErr, err := csvutil.PreScanVolunteersCSV(file)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "read volunteer csv failed", err, "Failed to read the file.", listURL(ev))
		return
	}
	if htmlErr != "" {
		h.renderListHTMLError(w, r, ev, htmlErr)
		return
	}
	if len(rows) == 0 {
		h.renderList(w, r, ev, volunteerForm{}, "The file has no volunteer rows.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Group)
	}
	groups, err := h.Groups.EnsureByName(ctx, ev.ID, names)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create groups for upload failed", err, "Failed to import volunteers.", listURL(ev))
		return
	}

	vols := make([]models.Volunteer, 0, len(rows))
	for _, row := range rows {
		v := models.Volunteer{
			Name:       row.Name,
			Email:      row.Email,
			Phone:      row.Phone,
			Group:      row.Group,
			MaxHours:   row.MaxHours,
			ExternalID: row.ExternalID,
		}
		if g, ok := groups[text.Fold(row.Group)]; ok && row.Group != "" {
			id := g.ID
			v.Group = g.Name
			v.GroupID = &id
		}
		vols = append(vols, v)
	}

	n, err := h.Volunteers.CreateMany(ctx, ev.ID, vols)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "import volunteers failed", err, "Failed to import volunteers.", listURL(ev))
		return
	}

	h.Log.Info("volunteers imported", zap.String("event_id", ev.ID.Hex()), zap.Int("count", n))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Imported "+strconv.Itoa(n)+" volunteers.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
