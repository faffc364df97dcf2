// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/groups inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// LIST + CREATE
	r.Get("/", h.ServeGroupsList)
	r.Post("/", h.HandleCreateGroup)

	// EDIT
	r.Get("/{id}/edit", h.ServeEditGroup)
	r.Post("/{id}/edit", h.HandleEditGroup)

	// DELETE
	r.Post("/{id}/delete", h.HandleDeleteGroup)

	return r
}
