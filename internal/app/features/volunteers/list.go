// internal/app/features/volunteers/list.go
package volunteers

import (
	"context"
	"html/template"
	"net/http"

	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

type volunteerRow struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Group    string
	MaxHours string
}

type listData struct {
	formutil.EventBase

	Rows       []volunteerRow
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string

	GroupNames  []string
	GroupFilter string
	Search      string

	Form volunteerForm
}

// ServeList renders GET /events/{eventID}/volunteers.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	h.renderList(w, r, ev, volunteerForm{}, "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, ev models.Event, form volunteerForm, msg string) {
	h.render(w, r, ev, form, func(b *formutil.EventBase) {
		if msg != "" {
			b.SetError(msg)
		}
	})
}

// renderListHTMLError shows a CSV row report above the roster.
func (h *Handler) renderListHTMLError(w http.ResponseWriter, r *http.Request, ev models.Event, report template.HTML) {
	h.render(w, r, ev, volunteerForm{}, func(b *formutil.EventBase) { b.SetErrorHTML(report) })
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, ev models.Event, form volunteerForm, setErr func(*formutil.EventBase)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pq := volunteerstore.PageQuery{
		Group:  normalize.GroupFilter(query.Get(r, "group")),
		Search: query.Get(r, "q"),
		Before: query.Get(r, "before"),
		After:  query.Get(r, "after"),
	}
	page, err := h.Volunteers.ListPage(ctx, ev.ID, pq)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list volunteers failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	groups, err := h.Groups.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}

	data := listData{
		Total:       page.Total,
		HasPrev:     page.HasPrev,
		HasNext:     page.HasNext,
		PrevCursor:  page.PrevCursor,
		NextCursor:  page.NextCursor,
		GroupFilter: pq.Group,
		Search:      pq.Search,
		Form:        form,
	}
	formutil.SetEventBase(&data.EventBase, r, ev, "Volunteers", "volunteers")
	setErr(&data.EventBase)
	for _, g := range groups {
		data.GroupNames = append(data.GroupNames, g.Name)
	}
	for _, v := range page.Rows {
		data.Rows = append(data.Rows, volunteerRow{
			ID:       v.ID.Hex(),
			Name:     v.Name,
			Email:    v.Email,
			Phone:    v.Phone,
			Group:    v.GroupLabel(),
			MaxHours: formatHours(v.MaxHours),
		})
	}

	templates.Render(w, r, "volunteers_list", data)
}

// HandleCreate processes POST /events/{eventID}/volunteers.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}

	form := parseVolunteerForm(r)
	if msg := form.validate(); msg != "" {
		h.renderList(w, r, ev, form, msg)
		return
	}
	mh, _ := form.maxHours()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	groupID, err := h.resolveGroup(ctx, ev.ID, form.Group)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve group failed", err, "Failed to add volunteer.", listURL(ev))
		return
	}
	if _, err := h.Volunteers.Create(ctx, models.Volunteer{
		EventID:  ev.ID,
		Name:     form.Name,
		Email:    form.Email,
		Phone:    form.Phone,
		Group:    form.Group,
		GroupID:  groupID,
		MaxHours: mh,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "create volunteer failed", err, "Failed to add volunteer.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Volunteer added.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}

func listURL(ev models.Event) string {
	return "/events/" + ev.ID.Hex() + "/volunteers"
}
