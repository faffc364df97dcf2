// internal/app/features/assets/edit.go
package assets

import (
	"context"
	"net/http"

	assetstore "github.com/dalemusser/shiftboard/internal/app/store/assets"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type editData struct {
	formutil.EventBase

	AssetID   string
	Available bool
	Form      assetForm
}

// ServeEdit renders GET /events/{eventID}/assets/{assetID}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.assetFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	h.renderEdit(w, r, ev, a, assetForm{Name: a.Name, Type: a.Type, Identifier: a.Identifier}, "")
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, ev models.Event, a models.Asset, form assetForm, msg string) {
	data := editData{AssetID: a.ID.Hex(), Available: a.Status == models.AssetAvailable, Form: form}
	formutil.SetEventBase(&data.EventBase, r, ev, "Edit "+a.Name, "assets")
	if msg != "" {
		data.SetError(msg)
	}
	templates.Render(w, r, "asset_edit", data)
}

// HandleEdit processes POST /events/{eventID}/assets/{assetID}/edit.
// Status only changes through hand-out and return.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.assetFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	form := parseAssetForm(r)
	if msg := form.validate(); msg != "" {
		h.renderEdit(w, r, ev, a, form, msg)
		return
	}
	err := h.OnSite.Assets.Update(ctx, ev.ID, a.ID, assetstore.Update{
		Name:       form.Name,
		Type:       form.Type,
		Identifier: form.Identifier,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update asset failed", err, "Failed to update equipment.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Equipment updated.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}

// HandleDelete processes POST /events/{eventID}/assets/{assetID}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.assetFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if _, err := h.OnSite.Assets.Delete(ctx, ev.ID, a.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete asset failed", err, "Failed to delete equipment.", listURL(ev))
		return
	}

	h.Log.Info("asset deleted", zap.String("event_id", ev.ID.Hex()), zap.String("asset", a.Name))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, a.Name+" deleted.")
	http.Redirect(w, r, listURL(ev), http.StatusSeeOther)
}
