// internal/app/features/assets/routes.go
package assets

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/assets inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/handout", h.HandleHandOut)
	r.Route("/{assetID}", func(ar chi.Router) {
		ar.Get("/edit", h.ServeEdit)
		ar.Post("/edit", h.HandleEdit)
		ar.Post("/delete", h.HandleDelete)
		ar.Post("/assign", h.HandleAssign)
		ar.Post("/return", h.HandleReturn)
	})
	return r
}
