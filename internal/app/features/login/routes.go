// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Routes is mounted at /login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}

// SignupRoutes is mounted at /signup.
func SignupRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSignup)
	r.Post("/", h.HandleSignup)
	return r
}

// ForgotRoutes is mounted at /forgot-password. POSTs are throttled per IP.
func ForgotRoutes(h *Handler, throttle *ratelimit.IPThrottle) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForgot)
	r.With(throttle.Middleware).Post("/", h.HandleForgot)
	return r
}

// ResetRoutes is mounted at /reset-password.
func ResetRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{token}", h.ServeReset)
	r.Post("/{token}", h.HandleReset)
	return r
}

func authzUser(r *http.Request) (string, string, primitive.ObjectID, bool) {
	return authz.UserCtx(r)
}
