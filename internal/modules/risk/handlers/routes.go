package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all VaR routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/var", func(r chi.Router) {
		r.Post("/", h.HandleCalculate)
		r.Get("/defaults", h.HandleGetDefaults)
		r.Get("/history", h.HandleGetHistory)
		r.Post("/chart/{method}", h.HandleChart)
	})
}
