// internal/app/features/assign/actions.go
package assign

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/groupspec"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgAlreadyAssigned = "This volunteer is already assigned to this shift."
	msgOverstaffed     = "This shift is now overstaffed. More volunteers are assigned than required."
)

// back flashes msg and returns to the board.
func (h *Handler) back(w http.ResponseWriter, r *http.Request, ev models.Event, kind, msg string) {
	h.SessionMgr.AddFlash(w, r, kind, msg)
	http.Redirect(w, r, boardURL(ev), http.StatusSeeOther)
}

func formID(r *http.Request, key string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.FormValue(key))
	return id, err == nil
}

// HandleAssign processes POST /events/{eventID}/assign/assign. Assigning
// past the shift's requirement is allowed but warned about.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", boardURL(ev))
		return
	}
	shiftID, ok1 := formID(r, "shift_id")
	volID, ok2 := formID(r, "volunteer_id")
	if !ok1 || !ok2 {
		h.back(w, r, ev, auth.FlashError, "Choose a shift and a volunteer.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	shift, err := h.Shifts.GetByID(ctx, ev.ID, shiftID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.back(w, r, ev, auth.FlashError, "Shift not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load shift failed", err, "A database error occurred.", boardURL(ev))
		return
	}
	vol, err := h.Volunteers.GetByID(ctx, ev.ID, volID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.back(w, r, ev, auth.FlashError, "Volunteer not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load volunteer failed", err, "A database error occurred.", boardURL(ev))
		return
	}

	current, err := h.Assignments.CountByShift(ctx, ev.ID, shift.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count assignments failed", err, "A database error occurred.", boardURL(ev))
		return
	}
	overstaffed := int(current) >= groupspec.Total(shift.RequiredGroups)

	if _, err := h.Assignments.Create(ctx, ev.ID, shift.ID, vol.ID); err != nil {
		if errors.Is(err, assignmentstore.ErrAlreadyAssigned) {
			h.back(w, r, ev, auth.FlashError, msgAlreadyAssigned)
			return
		}
		h.ErrLog.LogServerError(w, r, "create assignment failed", err, "Failed to assign volunteer.", boardURL(ev))
		return
	}

	if overstaffed {
		h.back(w, r, ev, auth.FlashWarning, msgOverstaffed)
		return
	}
	h.back(w, r, ev, auth.FlashSuccess, vol.Name+" assigned to "+shift.Name+".")
}

// HandleUnassign processes POST /events/{eventID}/assign/unassign.
func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", boardURL(ev))
		return
	}
	id, ok := formID(r, "assignment_id")
	if !ok {
		h.back(w, r, ev, auth.FlashError, "Assignment not found.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Assignments.Delete(ctx, ev.ID, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete assignment failed", err, "Failed to unassign volunteer.", boardURL(ev))
		return
	}
	if n == 0 {
		h.back(w, r, ev, auth.FlashError, "Assignment not found.")
		return
	}
	h.back(w, r, ev, auth.FlashSuccess, "Volunteer unassigned.")
}

// HandleClear processes POST /events/{eventID}/assign/clear.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Assignments.ClearEvent(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "clear assignments failed", err, "Failed to clear assignments.", boardURL(ev))
		return
	}
	h.Log.Info("assignments cleared", zap.String("event_id", ev.ID.Hex()), zap.Int64("count", n))
	h.back(w, r, ev, auth.FlashSuccess, "Cleared "+strconv.FormatInt(n, 10)+" assignments.")
}

// HandleSwap processes POST /events/{eventID}/assign/swap, exchanging the
// volunteers on two assignments.
func (h *Handler) HandleSwap(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", boardURL(ev))
		return
	}
	a, ok1 := formID(r, "assignment_a")
	b, ok2 := formID(r, "assignment_b")
	if !ok1 || !ok2 || a == b {
		h.back(w, r, ev, auth.FlashError, "Choose two different assignments to swap.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Assignments.Swap(ctx, ev.ID, a, b)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.back(w, r, ev, auth.FlashError, "Assignments not found.")
	case errors.Is(err, assignmentstore.ErrAlreadyAssigned):
		h.back(w, r, ev, auth.FlashError, "That swap would put a volunteer on the same shift twice.")
	case err != nil:
		h.ErrLog.LogServerError(w, r, "swap assignments failed", err, "Failed to swap assignments.", boardURL(ev))
	default:
		h.back(w, r, ev, auth.FlashSuccess, "Assignments swapped.")
	}
}
