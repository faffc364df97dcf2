// internal/app/features/shifttemplates/shifttemplates.go
package shifttemplates

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	shifttemplatestore "github.com/dalemusser/shiftboard/internal/app/store/shifttemplates"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/groupspec"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const listPath = "/shift-templates"

type templateRow struct {
	ID          string
	Name        string
	Description string
	Hours       string
	Start       string
	End         string
	Required    string
	Allowed     string
}

type templateForm struct {
	Name         string
	Description  string
	DefaultStart string
	DefaultEnd   string
	Required     string
	Allowed      string
}

type listData struct {
	formutil.Base

	Rows []templateRow
	Form templateForm
}

// ServeList renders GET /shift-templates.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, templateForm{}, "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form templateForm, msg string) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tpls, err := h.Templates.ListByUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list shift templates failed", err, "A database error occurred.", "/events")
		return
	}

	data := listData{Form: form}
	formutil.SetBase(&data.Base, r, "Shift templates", "/events")
	if msg != "" {
		data.SetError(msg)
	}
	for _, t := range tpls {
		data.Rows = append(data.Rows, templateRow{
			ID:          t.ID.Hex(),
			Name:        t.Name,
			Description: t.Description,
			Hours:       strconv.FormatFloat(t.DurationHours, 'f', -1, 64),
			Start:       t.DefaultStart,
			End:         t.DefaultEnd,
			Required:    groupspec.FormatRequired(t.RequiredGroups),
			Allowed:     groupspec.FormatList(t.AllowedGroups),
		})
	}

	templates.Render(w, r, "shift_templates", data)
}

// HandleCreate processes POST /shift-templates.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listPath)
		return
	}

	form := templateForm{
		Name:         normalize.Name(r.FormValue("name")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		DefaultStart: strings.TrimSpace(r.FormValue("default_start")),
		DefaultEnd:   strings.TrimSpace(r.FormValue("default_end")),
		Required:     strings.TrimSpace(r.FormValue("required_groups")),
		Allowed:      strings.TrimSpace(r.FormValue("allowed_groups")),
	}
	if res := inputval.Validate(inputval.TemplateInput{
		Name:         form.Name,
		DefaultStart: form.DefaultStart,
		DefaultEnd:   form.DefaultEnd,
		Description:  form.Description,
	}); res.HasErrors() {
		h.renderList(w, r, form, res.First())
		return
	}
	req, err := groupspec.ParseRequired(form.Required)
	if err != nil {
		h.renderList(w, r, form, "Required groups: "+err.Error()+". Use Medical:2|Runners:1.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err = h.Templates.Create(ctx, models.ShiftTemplate{
		UserID:         uid,
		Name:           form.Name,
		Description:    form.Description,
		DefaultStart:   form.DefaultStart,
		DefaultEnd:     form.DefaultEnd,
		RequiredGroups: req,
		AllowedGroups:  groupspec.ParseList(form.Allowed),
	})
	if errors.Is(err, shifttemplatestore.ErrBadClock) {
		h.renderList(w, r, form, "Start and end must be times like 09:00.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create shift template failed", err, "Failed to save template.", listPath)
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Template saved.")
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

// HandleDelete processes POST /shift-templates/{templateID}/delete. Only
// the owner's templates match.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "templateID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Template not found.", listPath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Templates.Delete(ctx, uid, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete shift template failed", err, "Failed to delete template.", listPath)
		return
	}
	if n == 0 {
		uierrors.RenderNotFound(w, r, "Template not found.", listPath)
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Template deleted.")
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}
