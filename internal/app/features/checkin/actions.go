// internal/app/features/checkin/actions.go
package checkin

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func rosterURL(ev models.Event) string { return "/events/" + ev.ID.Hex() + "/checkin" }
func activeURL(ev models.Event) string { return "/events/" + ev.ID.Hex() + "/active" }

// returnURL sends the organizer back to the page the form was on.
func returnURL(r *http.Request, ev models.Event) string {
	if r.FormValue("back") == "active" {
		return activeURL(ev)
	}
	return rosterURL(ev)
}

// assignmentFromURL loads {assignmentID} and its volunteer.
func (h *Handler) assignmentFromURL(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event) (models.Assignment, models.Volunteer, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "assignmentID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Assignment not found.", rosterURL(ev))
		return models.Assignment{}, models.Volunteer{}, false
	}
	a, err := h.OnSite.Assignments.GetByID(ctx, ev.ID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "Assignment not found.", rosterURL(ev))
		return models.Assignment{}, models.Volunteer{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load assignment failed", err, "A database error occurred.", rosterURL(ev))
		return models.Assignment{}, models.Volunteer{}, false
	}
	v, err := h.Volunteers.GetByID(ctx, ev.ID, a.VolunteerID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogServerError(w, r, "load volunteer failed", err, "A database error occurred.", rosterURL(ev))
		return models.Assignment{}, models.Volunteer{}, false
	}
	return a, v, true
}

// HandleToggle processes POST .../checkin/{assignmentID}/toggle. Checking
// in is logged; un-checking clears the timestamps.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, v, ok := h.assignmentFromURL(ctx, w, r, ev)
	if !ok {
		return
	}

	var err error
	if a.CheckedIn {
		err = h.OnSite.Assignments.SetCheckedIn(ctx, ev.ID, a.ID, false, h.Now())
	} else {
		err = h.OnSite.CheckIn(ctx, ev.ID, a, v.Name, h.Now())
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "toggle check-in failed", err, "Failed to update check-in.", rosterURL(ev))
		return
	}
	http.Redirect(w, r, returnURL(r, ev), http.StatusSeeOther)
}

// HandleCheckOut processes POST .../checkin/{assignmentID}/checkout.
func (h *Handler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, v, ok := h.assignmentFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if !a.Active() {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, v.Name+" is not checked in.")
		http.Redirect(w, r, returnURL(r, ev), http.StatusSeeOther)
		return
	}
	if err := h.OnSite.CheckOut(ctx, ev.ID, a, v.Name, h.Now()); err != nil {
		h.ErrLog.LogServerError(w, r, "check out failed", err, "Failed to check out.", rosterURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, v.Name+" checked out.")
	http.Redirect(w, r, returnURL(r, ev), http.StatusSeeOther)
}

// HandleDismissLate processes POST .../checkin/{assignmentID}/dismiss-late.
func (h *Handler) HandleDismissLate(w http.ResponseWriter, r *http.Request) {
	h.setLateDismissed(w, r, true)
}

// HandleUndismissLate processes POST .../checkin/{assignmentID}/undismiss-late.
func (h *Handler) HandleUndismissLate(w http.ResponseWriter, r *http.Request) {
	h.setLateDismissed(w, r, false)
}

func (h *Handler) setLateDismissed(w http.ResponseWriter, r *http.Request, dismissed bool) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, _, ok := h.assignmentFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if err := h.OnSite.Assignments.SetLateDismissed(ctx, ev.ID, a.ID, dismissed); err != nil {
		h.ErrLog.LogServerError(w, r, "update late warning failed", err, "Failed to update the late warning.", rosterURL(ev))
		return
	}
	http.Redirect(w, r, rosterURL(ev), http.StatusSeeOther)
}
