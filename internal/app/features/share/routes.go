// internal/app/features/share/routes.go
package share

import (
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /events/{eventID}/share inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeShare)
	r.Post("/invite", h.HandleInvite)
	r.Post("/revoke", h.HandleRevoke)
	r.Post("/remove", h.HandleRemove)
	return r
}

// InviteRoutes is mounted at /invite. The invitee must be signed in with
// the invited email address.
func InviteRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/{token}", h.ServeInvite)
	r.Post("/{token}", h.HandleAccept)
	r.Post("/{token}/decline", h.HandleDecline)
	return r
}
