// internal/app/features/kiosk/routes.go
package kiosk

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /events/{eventID}/kiosk inside the event gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeKiosk)
	r.With(h.throttle).Get("/search", h.ServeSearch)
	r.Post("/checkin", h.HandleCheckIn)
	r.Post("/checkout", h.HandleCheckOut)
	return r
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	if h.Throttle == nil {
		return next
	}
	return h.Throttle.Middleware(next)
}
