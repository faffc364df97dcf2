// internal/app/features/analytics/routes.go
package analytics

import (
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /analytics.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Beacons posted by app.js on every page.
	r.Group(func(rr chi.Router) {
		rr.Use(h.throttle)
		rr.Post("/pageview", h.HandlePageView)
		rr.Post("/event", h.HandleEvent)
		rr.Post("/error", h.HandleError)
	})

	r.Get("/login", h.ServeLogin)
	r.With(h.loginThrottle).Post("/login", h.HandleLogin)

	r.Group(func(rr chi.Router) {
		rr.Use(h.requireGate)
		rr.Get("/", h.ServeDashboard)
		rr.Get("/export", h.ServeExport)
		rr.Post("/clear", h.HandleClear)
	})

	return r
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	if h.Throttle == nil {
		return next
	}
	return h.Throttle.Middleware(next)
}

func (h *Handler) loginThrottle(next http.Handler) http.Handler {
	if h.LoginThrottle == nil {
		return next
	}
	return h.LoginThrottle.Middleware(next)
}

// requireGate sends sessions that have not passed the password gate to
// the login form.
func (h *Handler) requireGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.SessionMgr.Flag(r, auth.AnalyticsKey) {
			http.Redirect(w, r, "/analytics/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
