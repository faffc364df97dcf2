// internal/app/features/share/invite.go
package share

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	invitationstore "github.com/dalemusser/shiftboard/internal/app/store/invitations"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type inviteData struct {
	formutil.Base

	Token     string
	EventName string
	Valid     bool
	Problem   string
}

// inviteProblem turns an accept error into the sentence shown to the invitee.
func inviteProblem(err error) string {
	switch {
	case errors.Is(err, invitationstore.ErrInvitationExpired):
		return "This invitation has expired. Ask the organizer to send a new one."
	case errors.Is(err, invitationstore.ErrInvitationMismatch):
		return "This invitation was sent to a different email address. Sign in with that address to accept it."
	default:
		return "This invitation is no longer valid."
	}
}

// ServeInvite renders GET /invite/{token}.
func (h *Handler) ServeInvite(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := inviteData{Token: token}
	formutil.SetBase(&data.Base, r, "Invitation", "/events")

	inv, err := h.Invitations.GetByToken(ctx, token)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		data.Problem = inviteProblem(invitationstore.ErrInvitationInvalid)
	case err != nil:
		h.ErrLog.LogServerError(w, r, "load invitation failed", err, "A database error occurred.", "/events")
		return
	case inv.Status != models.InvitePending:
		data.Problem = inviteProblem(invitationstore.ErrInvitationInvalid)
	case inv.Email != authz.UserEmail(r):
		data.Problem = inviteProblem(invitationstore.ErrInvitationMismatch)
	default:
		data.Valid = true
	}
	if ev, err := h.Events.GetByID(ctx, inv.EventID); err == nil {
		data.EventName = ev.Name
	}

	templates.Render(w, r, "invite_accept", data)
}

// HandleAccept processes POST /invite/{token}.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.Invitations.Accept(ctx, token, authz.UserEmail(r))
	if errors.Is(err, invitationstore.ErrInvitationInvalid) ||
		errors.Is(err, invitationstore.ErrInvitationExpired) ||
		errors.Is(err, invitationstore.ErrInvitationMismatch) {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, inviteProblem(err))
		http.Redirect(w, r, "/events", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "accept invitation failed", err, "Failed to accept the invitation.", "/events")
		return
	}

	if err := h.Admins.Add(ctx, inv.EventID, uid); err != nil && !errors.Is(err, eventadminstore.ErrAlreadyAdmin) {
		h.ErrLog.LogServerError(w, r, "grant event admin failed", err, "Failed to accept the invitation.", "/events")
		return
	}

	h.Log.Info("invitation accepted",
		zap.String("event_id", inv.EventID.Hex()),
		zap.String("user_id", uid.Hex()))

	name := "the event"
	if ev, err := h.Events.GetByID(ctx, inv.EventID); err == nil {
		name = ev.Name
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "You now help manage "+name+".")
	http.Redirect(w, r, "/events/"+inv.EventID.Hex(), http.StatusSeeOther)
}

// HandleDecline processes POST /invite/{token}/decline.
func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.Invitations.GetByToken(ctx, token)
	if err == nil {
		err = h.Invitations.Decline(ctx, inv.ID, authz.UserEmail(r))
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, invitationstore.ErrInvitationInvalid):
		h.SessionMgr.AddFlash(w, r, auth.FlashError, inviteProblem(invitationstore.ErrInvitationInvalid))
	case err != nil:
		h.ErrLog.LogServerError(w, r, "decline invitation failed", err, "Failed to decline the invitation.", "/events")
		return
	default:
		h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Invitation declined.")
	}
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}
