// internal/app/features/shifttemplates/routes.go
package shifttemplates

import (
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /shift-templates.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/{templateID}/delete", h.HandleDelete)
	return r
}
