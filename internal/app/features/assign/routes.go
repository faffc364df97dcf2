// internal/app/features/assign/routes.go
package assign

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/assign inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeBoard)
	r.Post("/assign", h.HandleAssign)
	r.Post("/unassign", h.HandleUnassign)
	r.Post("/clear", h.HandleClear)
	r.Post("/auto", h.HandleAuto)
	r.Post("/swap", h.HandleSwap)
	return r
}
