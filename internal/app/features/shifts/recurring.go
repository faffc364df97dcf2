// internal/app/features/shifts/recurring.go
package shifts

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/groupspec"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/recurrence"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recurringForm is the "generate a series" form. Days is keyed "0".."6"
// (Sunday first) for re-checking boxes on error.
type recurringForm struct {
	TemplateID string
	Name       string
	StartClock string
	EndClock   string
	StartDate  string
	EndDate    string
	Required   string
	Allowed    string
	Days       map[string]bool
}

func parseRecurringForm(r *http.Request) recurringForm {
	f := recurringForm{
		TemplateID: strings.TrimSpace(r.FormValue("template_id")),
		Name:       normalize.Name(r.FormValue("name")),
		StartClock: strings.TrimSpace(r.FormValue("start_clock")),
		EndClock:   strings.TrimSpace(r.FormValue("end_clock")),
		StartDate:  strings.TrimSpace(r.FormValue("start_date")),
		EndDate:    strings.TrimSpace(r.FormValue("end_date")),
		Required:   strings.TrimSpace(r.FormValue("required_groups")),
		Allowed:    strings.TrimSpace(r.FormValue("allowed_groups")),
		Days:       map[string]bool{},
	}
	for _, d := range formutil.Values(r, "weekday") {
		f.Days[d] = true
	}
	return f
}

func (f recurringForm) weekdays() []string {
	out := make([]string, 0, len(f.Days))
	for d := range f.Days {
		out = append(out, d)
	}
	return out
}

// applyTemplate fills blank fields from t.
func (f *recurringForm) applyTemplate(t models.ShiftTemplate) {
	if f.Name == "" {
		f.Name = t.Name
	}
	if f.StartClock == "" {
		f.StartClock = t.DefaultStart
	}
	if f.EndClock == "" {
		f.EndClock = t.DefaultEnd
	}
	if f.Required == "" {
		f.Required = groupspec.FormatRequired(t.RequiredGroups)
	}
	if f.Allowed == "" {
		f.Allowed = groupspec.FormatList(t.AllowedGroups)
	}
}

// HandleRecurring processes POST /events/{eventID}/shifts/recurring: one
// shift per selected weekday between the two dates, optionally shaped by
// one of the organizer's shift templates.
func (h *Handler) HandleRecurring(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	form := parseRecurringForm(r)
	if form.TemplateID != "" {
		tid, err := primitive.ObjectIDFromHex(form.TemplateID)
		_, _, uid, ok := authz.UserCtx(r)
		if err != nil || !ok {
			h.renderList(w, r, ev, shiftForm{}, form, "Shift template not found.")
			return
		}
		t, err := h.Templates.GetByID(ctx, uid, tid)
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.renderList(w, r, ev, shiftForm{}, form, "Shift template not found.")
			return
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "load shift template failed", err, "A database error occurred.", listURL(ev))
			return
		}
		form.applyTemplate(t)
	}

	if form.Name == "" {
		h.renderList(w, r, ev, shiftForm{}, form, "Shift name is required.")
		return
	}
	req, err := groupspec.ParseRequired(form.Required)
	if err != nil {
		h.renderList(w, r, ev, shiftForm{}, form, "Required groups: "+err.Error()+". Use Medical:2|Runners:1.")
		return
	}
	windows, err := recurrence.GenerateSeries(form.StartDate, form.EndDate, form.StartClock, form.EndClock,
		recurrence.ParseWeekdays(form.weekdays()), ev.Location())
	if err != nil {
		h.renderList(w, r, ev, shiftForm{}, form, upperFirst(err.Error())+".")
		return
	}
	if len(windows) == 0 {
		h.renderList(w, r, ev, shiftForm{}, form, "No dates in that range fall on the selected days.")
		return
	}

	allowed := groupspec.ParseList(form.Allowed)
	shifts := make([]models.Shift, 0, len(windows))
	for _, win := range windows {
		shifts = append(shifts, models.Shift{
			Name:           form.Name,
			StartTime:      win.Start,
			EndTime:        win.End,
			RequiredGroups: req,
			AllowedGroups:  allowed,
		})
	}
	n, err := h.Shifts.CreateMany(ctx, ev.ID, shifts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create recurring shifts failed", err, "Failed to create shifts.", listURL(ev))
		return
	}

	h.Log.Info("recurring shifts created", zap.String("event_id", ev.ID.Hex()), zap.Int("count", n))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Created "+strconv.Itoa(n)+" shifts.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
