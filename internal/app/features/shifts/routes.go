// internal/app/features/shifts/routes.go
package shifts

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/shifts inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/upload", h.HandleUpload)
	r.Post("/recurring", h.HandleRecurring)
	r.Route("/{shiftID}", func(sr chi.Router) {
		sr.Get("/edit", h.ServeEdit)
		sr.Post("/edit", h.HandleEdit)
		sr.Post("/delete", h.HandleDelete)
	})
	return r
}
