// internal/app/features/assets/checkout.go
package assets

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/onsite"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleAssign processes POST /events/{eventID}/assets/{assetID}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	h.handOut(w, r, chi.URLParam(r, "assetID"))
}

// HandleHandOut processes POST /events/{eventID}/assets/handout, where the
// asset comes from the asset_id field.
func (h *Handler) HandleHandOut(w http.ResponseWriter, r *http.Request) {
	h.handOut(w, r, r.FormValue("asset_id"))
}

func (h *Handler) handOut(w http.ResponseWriter, r *http.Request, assetID string) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(ev))
		return
	}
	dest := returnURL(r, ev)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.assetByID(ctx, w, r, ev, assetID)
	if !ok {
		return
	}
	vid, err := primitive.ObjectIDFromHex(r.FormValue("volunteer_id"))
	if err != nil {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, "Choose a volunteer.")
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	v, err := h.OnSite.Volunteers.GetByID(ctx, ev.ID, vid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, "Volunteer not found.")
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load volunteer failed", err, "A database error occurred.", listURL(ev))
		return
	}

	err = h.OnSite.HandOut(ctx, ev.ID, v, []models.Asset{a}, h.Now())
	if errors.Is(err, onsite.ErrAssetOut) {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, a.Name+" is already checked out.")
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hand out asset failed", err, "Failed to check out equipment.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, a.Name+" checked out to "+v.Name+".")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// HandleReturn processes POST /events/{eventID}/assets/{assetID}/return.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.assetFromURL(ctx, w, r, ev)
	if !ok {
		return
	}
	if a.Status == models.AssetAvailable {
		h.SessionMgr.AddFlash(w, r, auth.FlashWarning, a.Name+" is not checked out.")
		http.Redirect(w, r, returnURL(r, ev), http.StatusSeeOther)
		return
	}
	if err := h.OnSite.ReturnAsset(ctx, ev.ID, a, h.Now()); err != nil {
		h.ErrLog.LogServerError(w, r, "return asset failed", err, "Failed to return equipment.", listURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, a.Name+" returned.")
	http.Redirect(w, r, returnURL(r, ev), http.StatusSeeOther)
}
