// internal/app/features/contact/routes.go
package contact

import (
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes serves the contact form. POSTs pass through the per-IP throttle.
func Routes(h *Handler, throttle *ratelimit.IPThrottle) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeContact)
	r.With(throttle.Middleware).Post("/", h.HandleContact)
	return r
}
