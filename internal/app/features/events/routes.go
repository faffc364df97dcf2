// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /events. perEvent registers the other features'
// routes under /events/{eventID} after the event gate has run.
func Routes(h *Handler, sm *auth.SessionManager, gate *gates.EventGate, perEvent func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole("organizer"))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{"+gates.EventParam+"}", func(er chi.Router) {
		er.Use(gate.EventAccess)

		er.Get("/settings", h.ServeSettings)
		er.Post("/settings", h.HandleSettings)
		er.Post("/delete", h.HandleDelete)
		er.Post("/clone", h.HandleClone)
		er.Post("/next", h.HandleNext)

		if perEvent != nil {
			perEvent(er)
		}
	})
	return r
}
