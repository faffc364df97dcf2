// internal/app/features/share/share.go
package share

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	invitationstore "github.com/dalemusser/shiftboard/internal/app/store/invitations"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/mailer"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type adminRow struct {
	UserID  string
	Name    string
	Email   string
	IsSelf  bool
	IsOwner bool
}

type inviteRow struct {
	ID      string
	Email   string
	Expires string
}

type shareData struct {
	formutil.EventBase

	Admins  []adminRow
	Invites []inviteRow
	Email   string
}

func shareURL(ev models.Event) string { return "/events/" + ev.ID.Hex() + "/share" }

func (h *Handler) acceptLink(token string) string {
	return strings.TrimRight(h.BaseURL, "/") + "/invite/" + token
}

// ServeShare renders GET /events/{eventID}/share.
func (h *Handler) ServeShare(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	h.render(w, r, ev, "", "")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, ev models.Event, email, msg string) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	admins, err := h.Admins.List(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list event admins failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	ids := make([]primitive.ObjectID, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.UserID)
	}
	users, err := h.Users.NamesByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load admin names failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}
	invites, err := h.Invitations.ListPending(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list invitations failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}

	data := shareData{Email: email}
	for _, a := range admins {
		u := users[a.UserID]
		data.Admins = append(data.Admins, adminRow{
			UserID:  a.UserID.Hex(),
			Name:    u.FullName,
			Email:   u.Email,
			IsSelf:  a.UserID == uid,
			IsOwner: a.UserID == ev.OwnerID,
		})
	}
	for _, inv := range invites {
		data.Invites = append(data.Invites, inviteRow{
			ID:      inv.ID.Hex(),
			Email:   inv.Email,
			Expires: viewdata.Stamp(inv.ExpiresAt, ev.Location()),
		})
	}

	formutil.SetEventBase(&data.EventBase, r, ev, "Share", "share")
	if msg != "" {
		data.SetError(msg)
	}
	templates.Render(w, r, "event_share", data)
}

// HandleInvite processes POST /events/{eventID}/share/invite.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	_, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", shareURL(ev))
		return
	}
	email := normalize.Email(r.FormValue("email"))
	if !inputval.IsValidEmail(email) {
		h.render(w, r, ev, email, "Enter a valid email address.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if u, err := h.Users.GetByEmail(ctx, email); err == nil {
		isAdmin, err := h.Admins.IsAdmin(ctx, ev.ID, u.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "check admin failed", err, "A database error occurred.", shareURL(ev))
			return
		}
		if isAdmin {
			h.render(w, r, ev, email, "This person already manages this event.")
			return
		}
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogServerError(w, r, "look up invitee failed", err, "A database error occurred.", shareURL(ev))
		return
	}

	inv, err := h.Invitations.Create(ctx, ev.ID, email, uid)
	if errors.Is(err, invitationstore.ErrInvitationPending) {
		h.render(w, r, ev, email, "Invitation already pending for this email.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create invitation failed", err, "Failed to create the invitation.", shareURL(ev))
		return
	}

	link := h.acceptLink(inv.Token)
	if h.Mailer == nil || !h.Mailer.Configured() {
		h.SessionMgr.AddFlash(w, r, auth.FlashWarning, "Invitation created, but email is not configured. Send this link yourself: "+link)
		http.Redirect(w, r, shareURL(ev), http.StatusSeeOther)
		return
	}

	msg := mailer.BuildInvitationEmail(mailer.InvitationData{
		SiteName:    viewdata.SiteName,
		EventName:   ev.Name,
		InviterName: name,
		AcceptLink:  link,
		ExpiresIn:   "7 days",
	})
	msg.To = []string{email}
	if err := h.Mailer.Send(ctx, msg); err != nil {
		h.Log.Warn("send invitation email failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()))
		h.SessionMgr.AddFlash(w, r, auth.FlashWarning, "Invitation created, but the email could not be sent. Send this link yourself: "+link)
		http.Redirect(w, r, shareURL(ev), http.StatusSeeOther)
		return
	}

	h.Log.Info("invitation sent", zap.String("event_id", ev.ID.Hex()), zap.String("invitation_id", inv.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Invitation sent to "+email+".")
	http.Redirect(w, r, shareURL(ev), http.StatusSeeOther)
}

// HandleRevoke processes POST /events/{eventID}/share/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	id, err := primitive.ObjectIDFromHex(r.FormValue("invitation_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad invitation id", err, "Invalid invitation.", shareURL(ev))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Invitations.Revoke(ctx, ev.ID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, "That invitation is no longer pending.")
		http.Redirect(w, r, shareURL(ev), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "revoke invitation failed", err, "Failed to revoke the invitation.", shareURL(ev))
		return
	}

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Invitation revoked.")
	http.Redirect(w, r, shareURL(ev), http.StatusSeeOther)
}

// HandleRemove processes POST /events/{eventID}/share/remove. Removing
// yourself leaves the event, unless you are its only admin.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	_, _, actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	target, err := primitive.ObjectIDFromHex(r.FormValue("user_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid user.", shareURL(ev))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Admins.Remove(ctx, ev.ID, target, actor)
	switch {
	case errors.Is(err, eventadminstore.ErrLastAdmin):
		h.SessionMgr.AddFlash(w, r, auth.FlashError, "Cannot remove the last admin.")
		http.Redirect(w, r, shareURL(ev), http.StatusSeeOther)
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		h.SessionMgr.AddFlash(w, r, auth.FlashError, "That person does not manage this event.")
		http.Redirect(w, r, shareURL(ev), http.StatusSeeOther)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "remove admin failed", err, "Failed to remove the admin.", shareURL(ev))
		return
	}

	h.Log.Info("event admin removed",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("user_id", target.Hex()),
		zap.String("by", actor.Hex()))

	if target == actor {
		h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "You no longer manage "+ev.Name+".")
		http.Redirect(w, r, "/events", http.StatusSeeOther)
		return
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Admin removed.")
	http.Redirect(w, r, shareURL(ev), http.StatusSeeOther)
}
