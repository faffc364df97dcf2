// internal/app/features/events/settings.go
package events

import (
	"context"
	"html/template"
	"net/http"

	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/timezones"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type settingsData struct {
	viewdata.EventVM
	Error template.HTML

	Form       eventForm
	ZoneGroups []timezones.Group
	Recurrence []RecurrenceOption
	IsOwner    bool
	NextDate   string // preview for the next-occurrence button
}

func formFromEvent(ev models.Event) eventForm {
	return eventForm{
		Name:        ev.Name,
		Date:        ev.Date.In(ev.Location()).Format(dateLayout),
		TimeZone:    ev.TimeZone,
		Description: ev.Description,
		Recurrence:  ev.RecurrenceRule,
	}
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, ev models.Event, form eventForm, msg string) {
	_, _, uid, _ := authz.UserCtx(r)
	data := settingsData{
		EventVM:    viewdata.NewEventVM(r, ev, "Event settings", "settings"),
		Form:       form,
		Recurrence: recurrenceOptions(form.Recurrence),
		ZoneGroups: timezones.Options(form.TimeZone),
		IsOwner:    ev.OwnerID == uid,
	}
	if msg != "" {
		data.Error = template.HTML(template.HTMLEscapeString(msg))
	}
	if next, err := nextDate(ev); err == nil {
		data.NextDate = next.Format("Mon, Jan 2, 2006")
	}
	templates.Render(w, r, "event_settings", data)
}

// ServeSettings renders GET /events/{eventID}/settings.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	h.renderSettings(w, r, ev, formFromEvent(ev), "")
}

// HandleSettings processes POST /events/{eventID}/settings.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", settingsURL(ev))
		return
	}

	form := parseEventForm(r)
	if msg := form.validate(); msg != "" {
		h.renderSettings(w, r, ev, form, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Events.UpdateSettings(ctx, ev.ID, eventstore.Settings{
		Name:           form.Name,
		Description:    form.description(),
		Date:           form.date(),
		TimeZone:       form.TimeZone,
		RecurrenceRule: form.Recurrence,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "update event settings failed", err, "Failed to save settings.", settingsURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Settings saved.")
	http.Redirect(w, r, settingsURL(ev), http.StatusSeeOther)
}
