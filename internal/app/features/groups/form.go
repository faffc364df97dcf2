// internal/app/features/groups/form.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type groupForm struct {
	Name            string
	Color           string
	Description     string
	MaxHoursDefault string
}

func parseGroupForm(r *http.Request) groupForm {
	return groupForm{
		Name:            normalize.Group(r.FormValue("name")),
		Color:           strings.TrimSpace(r.FormValue("color")),
		Description:     strings.TrimSpace(r.FormValue("description")),
		MaxHoursDefault: strings.TrimSpace(r.FormValue("max_hours_default")),
	}
}

func formFromGroup(g models.VolunteerGroup) groupForm {
	f := groupForm{Name: g.Name, Color: g.Color, Description: g.Description}
	if g.MaxHoursDefault != nil {
		f.MaxHoursDefault = strconv.FormatFloat(*g.MaxHoursDefault, 'f', -1, 64)
	}
	return f
}

func (f groupForm) maxHours() (*float64, bool) {
	if f.MaxHoursDefault == "" {
		return nil, true
	}
	n, err := strconv.ParseFloat(f.MaxHoursDefault, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// validate returns the first problem, or "".
func (f groupForm) validate() string {
	mh, ok := f.maxHours()
	if !ok {
		return "Default max hours must be a number."
	}
	res := inputval.Validate(inputval.GroupInput{
		Name:            f.Name,
		Color:           f.Color,
		Description:     f.Description,
		MaxHoursDefault: mh,
	})
	if res.HasErrors() {
		return res.First()
	}
	return ""
}

// groupFromURL loads {id} within ev, rendering 404 when absent.
func (h *Handler) groupFromURL(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event) (models.VolunteerGroup, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Group not found.", listURL(ev))
		return models.VolunteerGroup{}, false
	}
	g, err := h.Groups.GetByID(ctx, ev.ID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "Group not found.", listURL(ev))
		return models.VolunteerGroup{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group failed", err, "A database error occurred.", listURL(ev))
		return models.VolunteerGroup{}, false
	}
	return g, true
}

func listURL(ev models.Event) string {
	return "/events/" + ev.ID.Hex() + "/groups"
}
