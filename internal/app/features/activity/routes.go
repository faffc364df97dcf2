// internal/app/features/activity/routes.go
package activity

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/activity inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Paged feed, newest first
	r.Get("/", h.ServeLog)

	// Whole feed as CSV
	r.Get("/export", h.ServeExportCSV)

	return r
}
