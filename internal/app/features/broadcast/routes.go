// internal/app/features/broadcast/routes.go
package broadcast

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/broadcast inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCompose)
	r.Post("/", h.HandleSend)
	return r
}
