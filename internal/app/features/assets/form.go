// internal/app/features/assets/form.go
package assets

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type assetForm struct {
	Name       string
	Type       string
	Identifier string
}

func parseAssetForm(r *http.Request) assetForm {
	return assetForm{
		Name:       strings.Join(strings.Fields(r.FormValue("name")), " "),
		Type:       strings.TrimSpace(r.FormValue("type")),
		Identifier: strings.TrimSpace(r.FormValue("identifier")),
	}
}

func (f assetForm) validate() string {
	res := inputval.Validate(inputval.AssetInput{Name: f.Name, Type: f.Type, Identifier: f.Identifier})
	if res.HasErrors() {
		return res.First()
	}
	return ""
}

func listURL(ev models.Event) string { return "/events/" + ev.ID.Hex() + "/assets" }

// returnURL honors a back=active field from the on-site page.
func returnURL(r *http.Request, ev models.Event) string {
	if r.FormValue("back") == "active" {
		return "/events/" + ev.ID.Hex() + "/active"
	}
	return listURL(ev)
}

func (h *Handler) assetByID(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event, raw string) (models.Asset, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Asset not found.", listURL(ev))
		return models.Asset{}, false
	}
	a, err := h.OnSite.Assets.GetByID(ctx, ev.ID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "Asset not found.", listURL(ev))
		return models.Asset{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load asset failed", err, "A database error occurred.", listURL(ev))
		return models.Asset{}, false
	}
	return a, true
}

func (h *Handler) assetFromURL(ctx context.Context, w http.ResponseWriter, r *http.Request, ev models.Event) (models.Asset, bool) {
	return h.assetByID(ctx, w, r, ev, chi.URLParam(r, "assetID"))
}
