// internal/app/features/assets/list.go
package assets

import (
	"context"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type assetRow struct {
	ID         string
	Name       string
	Type       string
	Identifier string
	Available  bool
	Holder     string
}

type volunteerOption struct {
	ID   string
	Name string
}

type listData struct {
	formutil.EventBase

	Rows       []assetRow
	Volunteers []volunteerOption
	Available  int
	Form       assetForm
}

// ServeList renders GET /events/{eventID}/assets.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	h.renderList(w, r, ev, assetForm{}, "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, ev models.Event, form assetForm, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	assets, err := h.OnSite.Assets.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assets failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	vols, err := h.OnSite.Volunteers.List(ctx, ev.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list volunteers failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	names := make(map[primitive.ObjectID]string, len(vols))
	data := listData{Form: form}
	for _, v := range vols {
		names[v.ID] = v.Name
		data.Volunteers = append(data.Volunteers, volunteerOption{ID: v.ID.Hex(), Name: v.Name})
	}
	for _, a := range assets {
		row := assetRow{
			ID:         a.ID.Hex(),
			Name:       a.Name,
			Type:       a.Type,
			Identifier: a.Identifier,
			Available:  a.Status == models.AssetAvailable,
		}
		if row.Available {
			data.Available++
		} else if a.VolunteerID != nil {
			row.Holder = names[*a.VolunteerID]
		}
		data.Rows = append(data.Rows, row)
	}

	formutil.SetEventBase(&data.EventBase, r, ev, "Equipment", "assets")
	if msg != "" {
		data.SetError(msg)
	}
	templates.Render(w, r, "assets_list", data)
}

// HandleCreate processes POST /events/{eventID}/assets.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}
	form := parseAssetForm(r)
	if msg := form.validate(); msg != "" {
		h.renderList(w, r, ev, form, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.OnSite.Assets.Create(ctx, models.Asset{
		EventID:    ev.ID,
		Name:       form.Name,
		Type:       form.Type,
		Identifier: form.Identifier,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create asset failed", err, "Failed to add equipment.", listURL(ev))
		return
	}

	h.Log.Info("asset created", zap.String("event_id", ev.ID.Hex()), zap.String("asset_id", a.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, a.Name+" added.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
