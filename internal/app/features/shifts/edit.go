// internal/app/features/shifts/edit.go
package shifts

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type editData struct {
	formutil.EventBase

	ShiftID    string
	Form       shiftForm
	GroupNames []string
	Assigned   int
}

func (h *Handler) shiftFromURL(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event) (models.Shift, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "shiftID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Shift not found.", listURL(ev))
		return models.Shift{}, false
	}
	s, err := h.Shifts.GetByID(ctx, ev.ID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "Shift not found.", listURL(ev))
		return models.Shift{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load shift failed", err, "A database error occurred.", listURL(ev))
		return models.Shift{}, false
	}
	return s, true
}

// ServeEdit renders GET /events/{eventID}/shifts/{shiftID}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, ok := h.shiftFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	h.renderEdit(ctx, w, r, ev, s.ID, formFromShift(s, ev.Location()), "")
}

func (h *Handler) renderEdit(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event, id primitive.ObjectID, form shiftForm, msg string) {
	data := editData{ShiftID: id.Hex(), Form: form}
	formutil.SetEventBase(&data.EventBase, r, ev, "Edit shift", "shifts")
	if msg != "" {
		data.SetError(msg)
	}
	if groups, err := h.Groups.List(ctx, ev.ID); err == nil {
		for _, g := range groups {
			data.GroupNames = append(data.GroupNames, g.Name)
		}
	}
	if n, err := h.Assignments.CountByShift(ctx, ev.ID, id); err == nil {
		data.Assigned = int(n)
	}
	templates.Render(w, r, "shift_edit", data)
}

// HandleEdit processes POST /events/{eventID}/shifts/{shiftID}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, ok := h.shiftFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}

	form := parseShiftForm(r)
	p, msg := form.parse(ev.Location())
	if msg != "" {
		h.renderEdit(ctx, w, r, ev, s.ID, form, msg)
		return
	}

	if err := h.Shifts.Update(ctx, ev.ID, s.ID, shiftstore.Update{
		Name:           p.Name,
		StartTime:      p.Start,
		EndTime:        p.End,
		RequiredGroups: p.Required,
		AllowedGroups:  p.Allowed,
		ExcludedGroups: p.Excluded,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "update shift failed", err, "Failed to save shift.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Shift updated.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}

// HandleDelete processes POST /events/{eventID}/shifts/{shiftID}/delete.
// Assignments on the shift are removed with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, ok := h.shiftFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if _, err := h.Shifts.Delete(ctx, ev.ID, s.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete shift failed", err, "Failed to delete shift.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, s.Name+" deleted.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
