// internal/app/features/reports/routes.go
package reports

import "github.com/go-chi/chi/v5"

// Routes is mounted at /events/{eventID}/reports inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeReports)
	r.Get("/schedule.csv", h.ServeScheduleCSV)
	r.Get("/stats.csv", h.ServeStatsCSV)
	r.Get("/schedule.xlsx", h.ServeScheduleXLSX)
	r.Get("/signin", h.ServeSignInSheet)

	return r
}
