package home

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	r.Get("/features", h.ServeFeatures)
	r.Get("/pricing", h.ServePricing)
	r.Get("/help", h.ServeHelp)
	return r
}
