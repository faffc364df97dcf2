// internal/app/features/kiosk/actions.go
package kiosk

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/onsite"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type actionResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, actionResult{Message: msg})
}

// objectIDs parses every value of key, skipping blanks.
func objectIDs(r *http.Request, key string) ([]primitive.ObjectID, bool) {
	var ids []primitive.ObjectID
	for _, raw := range r.Form[key] {
		if raw == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// loadAssignment resolves the posted assignment_id and its volunteer,
// writing a JSON error when either is missing.
func (h *Handler) loadAssignment(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event) (models.Assignment, models.Volunteer, bool) {
	id, err := primitive.ObjectIDFromHex(r.FormValue("assignment_id"))
	if err != nil {
		fail(w, http.StatusBadRequest, "Choose a shift.")
		return models.Assignment{}, models.Volunteer{}, false
	}
	a, err := h.OnSite.Assignments.GetByID(ctx, ev.ID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		fail(w, http.StatusNotFound, "Assignment not found.")
		return models.Assignment{}, models.Volunteer{}, false
	}
	if err != nil {
		h.ErrLog.LogJSONError(w, r, "kiosk: load assignment failed", err, http.StatusInternalServerError, "A database error occurred.")
		return models.Assignment{}, models.Volunteer{}, false
	}
	v, err := h.OnSite.Volunteers.GetByID(ctx, ev.ID, a.VolunteerID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		fail(w, http.StatusNotFound, "Volunteer not found.")
		return models.Assignment{}, models.Volunteer{}, false
	}
	if err != nil {
		h.ErrLog.LogJSONError(w, r, "kiosk: load volunteer failed", err, http.StatusInternalServerError, "A database error occurred.")
		return models.Assignment{}, models.Volunteer{}, false
	}
	return a, v, true
}

// HandleCheckIn processes POST /events/{eventID}/kiosk/checkin.
//
// Form: assignment_id, transfer (keep held equipment when moving from
// another shift), asset_ids (equipment to hand out).
func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		fail(w, http.StatusBadRequest, "Invalid form.")
		return
	}
	newAssets, ok := objectIDs(r, "asset_ids")
	if !ok {
		fail(w, http.StatusBadRequest, "Invalid equipment selection.")
		return
	}
	transfer := r.FormValue("transfer") != ""

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, v, ok := h.loadAssignment(ctx, w, r, ev)
	if !ok {
		return
	}
	now := h.Now()

	prev, err := h.OnSite.Assignments.ActiveForVolunteer(ctx, ev.ID, v.ID)
	switch {
	case err == nil && prev.ID != a.ID:
		if err := h.OnSite.CheckOut(ctx, ev.ID, prev, v.Name, now); err != nil {
			h.ErrLog.LogJSONError(w, r, "kiosk: check out previous shift failed", err, http.StatusInternalServerError, "Check-in failed.")
			return
		}
		if !transfer {
			if _, err := h.OnSite.ReturnFromVolunteer(ctx, ev.ID, v, nil, now); err != nil {
				h.ErrLog.LogJSONError(w, r, "kiosk: return held assets failed", err, http.StatusInternalServerError, "Check-in failed.")
				return
			}
		}
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.LogJSONError(w, r, "kiosk: load active assignment failed", err, http.StatusInternalServerError, "Check-in failed.")
		return
	}

	if err := h.OnSite.CheckIn(ctx, ev.ID, a, v.Name, now); err != nil {
		h.ErrLog.LogJSONError(w, r, "kiosk: check in failed", err, http.StatusInternalServerError, "Check-in failed.")
		return
	}

	msg := v.Name + " checked in."
	if len(newAssets) > 0 {
		assets, err := h.OnSite.Assets.ListByIDs(ctx, ev.ID, newAssets)
		if err != nil {
			h.ErrLog.LogJSONError(w, r, "kiosk: load assets failed", err, http.StatusInternalServerError, "Checked in, but equipment could not be handed out.")
			return
		}
		err = h.OnSite.HandOut(ctx, ev.ID, v, assets, now)
		if errors.Is(err, onsite.ErrAssetOut) {
			writeJSON(w, http.StatusConflict, actionResult{OK: true, Message: msg + " Some equipment is already checked out; nothing was handed out."})
			return
		}
		if err != nil {
			h.ErrLog.LogJSONError(w, r, "kiosk: hand out assets failed", err, http.StatusInternalServerError, "Checked in, but equipment could not be handed out.")
			return
		}
	}
	writeJSON(w, http.StatusOK, actionResult{OK: true, Message: msg})
}

// HandleCheckOut processes POST /events/{eventID}/kiosk/checkout.
//
// Form: assignment_id, asset_ids (equipment being returned).
func (h *Handler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		fail(w, http.StatusBadRequest, "Invalid form.")
		return
	}
	returning, ok := objectIDs(r, "asset_ids")
	if !ok {
		fail(w, http.StatusBadRequest, "Invalid equipment selection.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, v, ok := h.loadAssignment(ctx, w, r, ev)
	if !ok {
		return
	}
	if !a.Active() {
		fail(w, http.StatusConflict, v.Name+" is not checked in.")
		return
	}
	now := h.Now()

	if err := h.OnSite.CheckOut(ctx, ev.ID, a, v.Name, now); err != nil {
		h.ErrLog.LogJSONError(w, r, "kiosk: check out failed", err, http.StatusInternalServerError, "Check-out failed.")
		return
	}
	if len(returning) > 0 {
		if _, err := h.OnSite.ReturnFromVolunteer(ctx, ev.ID, v, returning, now); err != nil {
			h.ErrLog.LogJSONError(w, r, "kiosk: return assets failed", err, http.StatusInternalServerError, "Checked out, but equipment could not be returned.")
			return
		}
	}
	writeJSON(w, http.StatusOK, actionResult{OK: true, Message: v.Name + " checked out."})
}
