// internal/app/features/volunteers/routes.go
package volunteers

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/volunteers inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/upload", h.HandleUpload)
	r.Post("/delete-all", h.HandleDeleteAll)
	r.Route("/{volunteerID}", func(vr chi.Router) {
		vr.Get("/edit", h.ServeEdit)
		vr.Post("/edit", h.HandleEdit)
		vr.Post("/delete", h.HandleDelete)
	})
	return r
}
