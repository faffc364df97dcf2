// internal/app/features/assign/auto.go
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
	"github.com/dalemusser/shiftboard/internal/app/system/scheduler"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleAuto processes POST /events/{eventID}/assign/auto. The optimizer
// proposes a full schedule; existing assignments are replaced by it in one
// transaction, even when it could only fill part of the event.
func (h *Handler) HandleAuto(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	if !h.Scheduler.Configured() {
		h.back(w, r, ev, auth.FlashError, "Auto-assign is not configured on this server.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	shifts, err := h.Shifts.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list shifts failed", err, "A database error occurred.", boardURL(ev))
		return
	}
	vols, err := h.Volunteers.List(ctx, ev.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list volunteers failed", err, "A database error occurred.", boardURL(ev))
		return
	}
	if len(shifts) == 0 || len(vols) == 0 {
		h.back(w, r, ev, auth.FlashError, "Add shifts and volunteers before auto-assigning.")
		return
	}

	req := scheduler.Request{
		Volunteers:         make([]scheduler.Volunteer, 0, len(vols)),
		UnassignedShifts:   make([]scheduler.Shift, 0, len(shifts)),
		CurrentAssignments: []scheduler.Pair{},
	}
	knownVol := make(map[string]primitive.ObjectID, len(vols))
	for _, v := range vols {
		mh := float64(scheduler.DefaultMaxHours)
		if v.MaxHours != nil {
			mh = *v.MaxHours
		}
		req.Volunteers = append(req.Volunteers, scheduler.Volunteer{ID: v.ID.Hex(), Name: v.Name, Group: v.Group, MaxHours: mh})
		knownVol[v.ID.Hex()] = v.ID
	}
	knownShift := make(map[string]primitive.ObjectID, len(shifts))
	for _, s := range shifts {
		req.UnassignedShifts = append(req.UnassignedShifts, scheduler.Shift{
			ID:             s.ID.Hex(),
			Start:          s.StartTime.UTC(),
			End:            s.EndTime.UTC(),
			RequiredGroups: groupspec.Normalize(s.RequiredGroups),
		})
		knownShift[s.ID.Hex()] = s.ID
	}

	resp, err := h.Scheduler.Optimize(ctx, req)
	if err != nil {
		if errors.Is(err, scheduler.ErrNotConfigured) {
			h.back(w, r, ev, auth.FlashError, "Auto-assign is not configured on this server.")
			return
		}
		h.Log.Warn("auto-assign failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
		h.back(w, r, ev, auth.FlashError, "Auto-assign failed: "+err.Error())
		return
	}
	plan, err := resp.Flatten()
	if err != nil {
		h.Log.Warn("auto-assign response unusable", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
		h.back(w, r, ev, auth.FlashError, "Auto-assign failed: "+err.Error())
		return
	}

	pairs := make([]assignmentstore.Pair, 0, len(plan.Assignments))
	skipped := 0
	for _, p := range plan.Assignments {
		sid, ok1 := knownShift[p.ShiftID]
		vid, ok2 := knownVol[p.VolunteerID]
		if !ok1 || !ok2 {
			skipped++
			continue
		}
		pairs = append(pairs, assignmentstore.Pair{ShiftID: sid, VolunteerID: vid})
	}
	if skipped > 0 {
		h.Log.Warn("auto-assign returned unknown ids", zap.Int("skipped", skipped), zap.String("event_id", ev.ID.Hex()))
	}

	n, err := h.Assignments.ReplaceEvent(ctx, ev.ID, pairs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "save auto-assignments failed", err, "Failed to save assignments.", boardURL(ev))
		return
	}

	h.Log.Info("auto-assign complete",
		zap.String("event_id", ev.ID.Hex()),
		zap.Int("assignments", n),
		zap.Int("unfilled", len(plan.Unfilled)),
		zap.Int("partial", len(plan.PartiallyFilled)))

	if plan.Partial() {
		h.back(w, r, ev, auth.FlashWarning, "Partial assignment completed - some shifts could not be filled. "+
			strconv.Itoa(n)+" assignments made, "+
			strconv.Itoa(len(plan.Unfilled))+" unfilled, "+
			strconv.Itoa(len(plan.PartiallyFilled))+" partially filled.")
		return
	}
	h.back(w, r, ev, auth.FlashSuccess, "Auto-assignment completed successfully. "+strconv.Itoa(n)+" assignments made.")
}
