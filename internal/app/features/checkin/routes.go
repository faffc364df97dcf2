// internal/app/features/checkin/routes.go
package checkin

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/checkin inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCheckIn)
	r.Route("/{assignmentID}", func(ar chi.Router) {
		ar.Post("/toggle", h.HandleToggle)
		ar.Post("/checkout", h.HandleCheckOut)
		ar.Post("/dismiss-late", h.HandleDismissLate)
		ar.Post("/undismiss-late", h.HandleUndismissLate)
	})
	return r
}

// ActiveRoutes is mounted at /events/{eventID}/active.
func ActiveRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeActive)
	return r
}
