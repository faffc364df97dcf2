// internal/app/features/events/clone.go
package events

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/recurrence"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errAdminSetup = errors.New("events: admin row not created")

const (
	msgAdminSetup = "Failed to set up event permissions. Please try again."
	msgNoRule     = "Set a recurrence rule in Event Settings first (e.g. Weekly, Biweekly, Monthly)."
)

// createWithAdmin inserts ev and registers userID as its admin. If the
// admin row fails the event is deleted so no unreachable event remains.
func (h *Handler) createWithAdmin(ctx context.Context, ev models.Event, userID primitive.ObjectID) (models.Event, error) {
	created, err := h.Events.Create(ctx, ev)
	if err != nil {
		return models.Event{}, err
	}
	if err := h.Admins.Add(ctx, created.ID, userID); err != nil {
		h.Log.Error("add creator as admin failed; rolling back event",
			zap.Error(err), zap.String("event_id", created.ID.Hex()))
		if _, delErr := h.Events.Delete(ctx, created.ID); delErr != nil {
			h.Log.Error("rollback event failed", zap.Error(delErr), zap.String("event_id", created.ID.Hex()))
		}
		return models.Event{}, errAdminSetup
	}
	return created, nil
}

// cloneOptions selects what is copied from the source event.
type cloneOptions struct {
	Name           string
	Date           time.Time
	CopyGroups     bool
	CopyVolunteers bool
	CopyShifts     bool
}

// cloneResult counts what was copied. Warnings collect copy steps that
// failed after the event itself was created.
type cloneResult struct {
	Event      models.Event
	Groups     int
	Volunteers int
	Shifts     int
	Warnings   []string
}

// clone creates a new event from src. Shifts move by the whole days
// between the two event dates, keeping their wall-clock times.
func (h *Handler) clone(ctx context.Context, src models.Event, opt cloneOptions, userID primitive.ObjectID) (cloneResult, error) {
	ev, err := h.createWithAdmin(ctx, models.Event{
		Name:           opt.Name,
		Description:    src.Description,
		Date:           opt.Date,
		TimeZone:       src.TimeZone,
		RecurrenceRule: src.RecurrenceRule,
		OwnerID:        userID,
	}, userID)
	if err != nil {
		return cloneResult{}, err
	}
	res := cloneResult{Event: ev}

	// Volunteers reference groups, so groups come along with them.
	groupMap := map[primitive.ObjectID]primitive.ObjectID{}
	if opt.CopyGroups || opt.CopyVolunteers {
		groupMap, err = h.Groups.CopyToEvent(ctx, src.ID, ev.ID)
		if err != nil {
			h.Log.Warn("clone: copy groups failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
			res.Warnings = append(res.Warnings, "groups")
		}
		res.Groups = len(groupMap)
	}

	if opt.CopyVolunteers {
		n, err := h.Volunteers.CopyToEvent(ctx, src.ID, ev.ID, groupMap)
		if err != nil {
			h.Log.Warn("clone: copy volunteers failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
			res.Warnings = append(res.Warnings, "volunteers")
		}
		res.Volunteers = n
	}

	if opt.CopyShifts {
		days := recurrence.OffsetDays(src.Date, opt.Date)
		n, err := h.Shifts.CopyToEvent(ctx, src.ID, ev.ID, days, src.Location())
		if err != nil {
			h.Log.Warn("clone: copy shifts failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
			res.Warnings = append(res.Warnings, "shifts")
		}
		res.Shifts = n
	}

	return res, nil
}

// finishClone audits, flashes and redirects to the new event.
func (h *Handler) finishClone(w http.ResponseWriter, r *http.Request, src models.Event, res cloneResult, uid primitive.ObjectID, msg string) {
	h.AuditLog.EventCloned(r.Context(), r, uid, src.ID, res.Event.ID)
	if len(res.Warnings) > 0 {
		h.SessionMgr.AddFlash(w, r, auth.FlashWarning,
			msg+" Some items could not be copied: "+strings.Join(res.Warnings, ", ")+".")
	} else {
		h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, msg)
	}
	http.Redirect(w, r, "/events/"+res.Event.ID.Hex(), http.StatusSeeOther)
}

// HandleClone processes POST /events/{eventID}/clone.
func (h *Handler) HandleClone(w http.ResponseWriter, r *http.Request) {
	src, _ := gates.EventFrom(r)
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", settingsURL(src))
		return
	}

	name := normalize.Name(r.FormValue("name"))
	if name == "" {
		name = "Copy of " + src.Name
	}
	date := src.Date
	if ds := strings.TrimSpace(r.FormValue("date")); ds != "" {
		date = parseDay(ds, src.Location())
		if date.IsZero() {
			h.SessionMgr.AddFlash(w, r, auth.FlashError, "Date must be YYYY-MM-DD.")
			http.Redirect(w, r, settingsURL(src), http.StatusSeeOther)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.clone(ctx, src, cloneOptions{
		Name:           name,
		Date:           date,
		CopyGroups:     formutil.Checked(r, "copy_groups"),
		CopyVolunteers: formutil.Checked(r, "copy_volunteers"),
		CopyShifts:     formutil.Checked(r, "copy_shifts"),
	}, uid)
	if err != nil {
		if errors.Is(err, errAdminSetup) {
			h.SessionMgr.AddFlash(w, r, auth.FlashError, msgAdminSetup)
			http.Redirect(w, r, settingsURL(src), http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "clone event failed", err, "Failed to clone event.", settingsURL(src))
		return
	}

	h.finishClone(w, r, src, res, uid, "Event cloned.")
}

// HandleNext processes POST /events/{eventID}/next: the next event of a
// recurring series, with its shifts and volunteers.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	src, _ := gates.EventFrom(r)
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	next, err := nextDate(src)
	if errors.Is(err, recurrence.ErrNoRule) {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, msgNoRule)
		http.Redirect(w, r, settingsURL(src), http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.clone(ctx, src, cloneOptions{
		Name:           NextName(src.Name, next),
		Date:           next.UTC(),
		CopyVolunteers: true,
		CopyShifts:     true,
	}, uid)
	if err != nil {
		if errors.Is(err, errAdminSetup) {
			h.SessionMgr.AddFlash(w, r, auth.FlashError, msgAdminSetup)
			http.Redirect(w, r, settingsURL(src), http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "create next occurrence failed", err, "Failed to create the next occurrence.", settingsURL(src))
		return
	}

	h.finishClone(w, r, src, res, uid, "Next occurrence created.")
}

// NextName labels a series event with its date: "Name – Jan 2, 2006".
// An existing date suffix from an earlier occurrence is replaced.
func NextName(name string, date time.Time) string {
	if i := strings.LastIndex(name, " – "); i > 0 {
		if _, err := time.Parse("Jan 2, 2006", name[i+len(" – "):]); err == nil {
			name = name[:i]
		}
	}
	return name + " – " + date.Format("Jan 2, 2006")
}

// nextDate is the following occurrence of ev, in the event's zone.
func nextDate(ev models.Event) (time.Time, error) {
	return recurrence.NextOccurrence(ev.RecurrenceRule, ev.Date.In(ev.Location()))
}

func settingsURL(ev models.Event) string {
	return "/events/" + ev.ID.Hex() + "/settings"
}
