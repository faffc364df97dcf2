// internal/app/features/volunteers/edit.go
package volunteers

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
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

	VolunteerID string
	Form        volunteerForm
	GroupNames  []string
	Shifts      int
}

// volunteerFromURL loads {volunteerID} within ev, rendering 404 when absent.
func (h *Handler) volunteerFromURL(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event) (models.Volunteer, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "volunteerID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Volunteer not found.", listURL(ev))
		return models.Volunteer{}, false
	}
	v, err := h.Volunteers.GetByID(ctx, ev.ID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "Volunteer not found.", listURL(ev))
		return models.Volunteer{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load volunteer failed", err, "A database error occurred.", listURL(ev))
		return models.Volunteer{}, false
	}
	return v, true
}

// ServeEdit renders GET /events/{eventID}/volunteers/{volunteerID}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, ok := h.volunteerFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	h.renderEdit(ctx, w, r, ev, v.ID, volunteerForm{
		Name:     v.Name,
		Email:    v.Email,
		Phone:    v.Phone,
		Group:    v.Group,
		MaxHours: formatHours(v.MaxHours),
	}, "")
}

func (h *Handler) renderEdit(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event, id primitive.ObjectID, form volunteerForm, msg string) {
	data := editData{VolunteerID: id.Hex(), Form: form}
	formutil.SetEventBase(&data.EventBase, r, ev, "Edit volunteer", "volunteers")
	if msg != "" {
		data.SetError(msg)
	}
	if groups, err := h.Groups.List(ctx, ev.ID); err == nil {
		for _, g := range groups {
			data.GroupNames = append(data.GroupNames, g.Name)
		}
	}
	if as, err := h.Assignments.ListByVolunteer(ctx, ev.ID, id); err == nil {
		data.Shifts = len(as)
	}
	templates.Render(w, r, "volunteer_edit", data)
}

// HandleEdit processes POST /events/{eventID}/volunteers/{volunteerID}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, ok := h.volunteerFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}

	form := parseVolunteerForm(r)
	if msg := form.validate(); msg != "" {
		h.renderEdit(ctx, w, r, ev, v.ID, form, msg)
		return
	}
	mh, _ := form.maxHours()

	groupID, err := h.resolveGroup(ctx, ev.ID, form.Group)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve group failed", err, "Failed to save volunteer.", listURL(ev))
		return
	}
	if err := h.Volunteers.Update(ctx, ev.ID, v.ID, volunteerstore.Update{
		Name:     form.Name,
		Email:    form.Email,
		Phone:    form.Phone,
		Group:    form.Group,
		GroupID:  groupID,
		MaxHours: mh,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "update volunteer failed", err, "Failed to save volunteer.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Volunteer updated.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
