// internal/app/features/events/list.go
package events

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/timezones"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type eventRow struct {
	ID      string
	Name    string
	Date    string
	IsOwner bool
}

type inviteRow struct {
	Token     string
	EventName string
	Expires   string
}

type listData struct {
	formutil.Base

	Events  []eventRow
	Invites []inviteRow

	// create form
	Form       eventForm
	ZoneGroups []timezones.Group
	Recurrence []RecurrenceOption
}

// ServeList renders GET /events.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, eventForm{TimeZone: timezones.Default}, "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form eventForm, msg string) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	evs, err := h.Events.ListForUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list events failed", err, "A database error occurred.", "/")
		return
	}

	data := listData{
		Form:       form,
		Recurrence: recurrenceOptions(form.Recurrence),
		ZoneGroups: timezones.Options(form.TimeZone),
	}
	formutil.SetBase(&data.Base, r, "Your events", "/")
	if msg != "" {
		data.SetError(msg)
	}

	for _, e := range evs {
		data.Events = append(data.Events, eventRow{
			ID:      e.ID.Hex(),
			Name:    e.Name,
			Date:    e.Date.In(e.Location()).Format("Mon, Jan 2, 2006"),
			IsOwner: e.OwnerID == uid,
		})
	}

	if email := authz.UserEmail(r); email != "" {
		invites, err := h.Invitations.ListPendingForEmail(ctx, email)
		if err != nil {
			h.Log.Warn("list pending invitations failed", zap.Error(err))
		}
		for _, inv := range invites {
			ev, err := h.Events.GetByID(ctx, inv.EventID)
			if err != nil {
				continue
			}
			data.Invites = append(data.Invites, inviteRow{
				Token:     inv.Token,
				EventName: ev.Name,
				Expires:   inv.ExpiresAt.Format("Jan 2, 2006"),
			})
		}
	}

	templates.Render(w, r, "events_list", data)
}

// HandleCreate processes POST /events. The creator becomes the owner and
// first admin; when the admin row cannot be written the event is removed.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/events")
		return
	}

	form := parseEventForm(r)
	if msg := form.validate(); msg != "" {
		h.renderList(w, r, form, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.createWithAdmin(ctx, models.Event{
		Name:           form.Name,
		Description:    form.description(),
		Date:           form.date(),
		TimeZone:       form.TimeZone,
		RecurrenceRule: form.Recurrence,
		OwnerID:        uid,
	}, uid)
	if err != nil {
		if errors.Is(err, errAdminSetup) {
			h.renderList(w, r, form, msgAdminSetup)
			return
		}
		h.ErrLog.LogServerError(w, r, "create event failed", err, "Failed to create event.", "/events")
		return
	}

	h.AuditLog.EventCreated(ctx, r, uid, ev.ID, ev.Name)
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Event created.")
	http.Redirect(w, r, "/events/"+ev.ID.Hex(), http.StatusSeeOther)
}
