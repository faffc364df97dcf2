// internal/app/features/terms/routes.go
package terms

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /terms.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeTerms) // relative to the mount point
	return r
}

// PrivacyHandler serves /privacy, which lives outside the /terms mount.
func PrivacyHandler(h *Handler) http.Handler {
	return http.HandlerFunc(h.ServePrivacy)
}
