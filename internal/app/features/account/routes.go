// internal/app/features/account/routes.go
package account

import (
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /account.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeAccount)
	r.Get("/update-password", h.ServeUpdatePassword)
	r.Post("/update-password", h.HandleUpdatePassword)
	r.Post("/tutorial-complete", h.HandleTutorialComplete)
	r.Post("/delete", h.HandleDelete)
	return r
}
