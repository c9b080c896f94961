package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all lookup routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/lookup", func(r chi.Router) {
		r.Get("/", h.HandleResolve)                 // Resolve by kind
		r.Get("/wkn/{wkn}", h.HandleByWKN)          // Resolve a WKN
		r.Get("/ticker/{ticker}", h.HandleByTicker) // Resolve a ticker
	})
}
