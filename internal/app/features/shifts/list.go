// internal/app/features/shifts/list.go
package shifts

import (
	"context"
	"html/template"
	"net/http"
	"strconv"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/groupspec"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type shiftRow struct {
	ID       string
	Name     string
	When     string
	Hours    string
	Required string
	Allowed  string
	Excluded string
	Filled   int
	Needed   int
}

type templateOption struct {
	ID    string
	Label string
}

type listData struct {
	formutil.EventBase

	Rows       []shiftRow
	GroupNames []string
	Templates  []templateOption
	Weekdays   []string

	Form      shiftForm
	Recurring recurringForm
}

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ServeList renders GET /events/{eventID}/shifts.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	h.render(w, r, ev, shiftForm{}, recurringForm{}, nil)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, ev models.Event, form shiftForm, rec recurringForm, msg string) {
	h.render(w, r, ev, form, rec, func(b *formutil.EventBase) {
		if msg != "" {
			b.SetError(msg)
		}
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, ev models.Event, form shiftForm, rec recurringForm, setErr func(*formutil.EventBase)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	loc := ev.Location()

	shifts, err := h.Shifts.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list shifts failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	assigns, err := h.Assignments.ListByEvent(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assignments failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	filled := make(map[primitive.ObjectID]int, len(shifts))
	for _, a := range assigns {
		filled[a.ShiftID]++
	}

	data := listData{Form: form, Recurring: rec, Weekdays: weekdayNames}
	formutil.SetEventBase(&data.EventBase, r, ev, "Shifts", "shifts")
	if setErr != nil {
		setErr(&data.EventBase)
	}
	for _, s := range shifts {
		data.Rows = append(data.Rows, shiftRow{
			ID:       s.ID.Hex(),
			Name:     s.Name,
			When:     viewdata.Window(s.StartTime, s.EndTime, loc),
			Hours:    strconv.FormatFloat(s.Hours(), 'f', -1, 64),
			Required: groupspec.FormatRequired(s.RequiredGroups),
			Allowed:  groupspec.FormatList(s.AllowedGroups),
			Excluded: groupspec.FormatList(s.ExcludedGroups),
			Filled:   filled[s.ID],
			Needed:   groupspec.Total(s.RequiredGroups),
		})
	}
	if groups, err := h.Groups.List(ctx, ev.ID); err == nil {
		for _, g := range groups {
			data.GroupNames = append(data.GroupNames, g.Name)
		}
	}
	if _, _, uid, ok := authz.UserCtx(r); ok {
		if tpls, err := h.Templates.ListByUser(ctx, uid); err == nil {
			for _, t := range tpls {
				data.Templates = append(data.Templates, templateOption{
					ID:    t.ID.Hex(),
					Label: t.Name + " (" + t.DefaultStart + "–" + t.DefaultEnd + ")",
				})
			}
		}
	}

	templates.Render(w, r, "shifts_list", data)
}

func (h *Handler) renderListHTMLError(w http.ResponseWriter, r *http.Request, ev models.Event, report template.HTML) {
	h.render(w, r, ev, shiftForm{}, recurringForm{}, func(b *formutil.EventBase) { b.SetErrorHTML(report) })
}

// HandleCreate processes POST /events/{eventID}/shifts.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}

	form := parseShiftForm(r)
	p, msg := form.parse(ev.Location())
	if msg != "" {
		h.renderList(w, r, ev, form, recurringForm{}, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sh := p.model()
	sh.EventID = ev.ID
	if _, err := h.Shifts.Create(ctx, sh); err != nil {
		h.ErrLog.LogServerError(w, r, "create shift failed", err, "Failed to add shift.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Shift added.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
