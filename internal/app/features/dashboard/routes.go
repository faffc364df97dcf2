// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

// Routes attaches the dashboard to an event router that already runs
// the signed-in and event-access gates. The page lives at /events/{eventID}.
func Routes(h *Handler, r chi.Router) {
	r.Get("/", h.ServeDashboard)
	r.Get("/stats.json", h.ServeStatsJSON)
}
