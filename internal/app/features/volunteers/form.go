// internal/app/features/volunteers/form.go
package volunteers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type volunteerForm struct {
	Name     string
	Email    string
	Phone    string
	Group    string
	MaxHours string
}

func parseVolunteerForm(r *http.Request) volunteerForm {
	return volunteerForm{
		Name:     normalize.Name(r.FormValue("name")),
		Email:    normalize.Email(r.FormValue("email")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
		Group:    normalize.Group(r.FormValue("group")),
		MaxHours: strings.TrimSpace(r.FormValue("max_hours")),
	}
}

// maxHours parses the optional max-hours field. ok is false when a value
// was entered but is not a number.
func (f volunteerForm) maxHours() (v *float64, ok bool) {
	if f.MaxHours == "" {
		return nil, true
	}
	n, err := strconv.ParseFloat(f.MaxHours, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// validate returns the first problem, or "".
func (f volunteerForm) validate() string {
	mh, ok := f.maxHours()
	if !ok {
		return "Max hours must be a number."
	}
	res := inputval.Validate(inputval.VolunteerInput{
		Name:     f.Name,
		Email:    f.Email,
		Phone:    f.Phone,
		Group:    f.Group,
		MaxHours: mh,
	})
	if res.HasErrors() {
		return res.First()
	}
	return ""
}

// resolveGroup finds or creates the named group and returns its id.
// An empty name means no group.
func (h *Handler) resolveGroup(ctx context.Context, eventID primitive.ObjectID, name string) (*primitive.ObjectID, error) {
	if name == "" {
		return nil, nil
	}
	byName, err := h.Groups.EnsureByName(ctx, eventID, []string{name})
	if err != nil {
		return nil, err
	}
	g, ok := byName[text.Fold(name)]
	if !ok {
		return nil, nil
	}
	return &g.ID, nil
}

func formatHours(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
