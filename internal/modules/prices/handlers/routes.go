package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all price routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/prices", func(r chi.Router) {
		r.Post("/fetch", h.HandleFetch)                      // Keyless refresh
		r.Post("/fetch-twelvedata", h.HandleFetchTwelveData) // Keyed batched refresh
		r.Get("/cached", h.HandleGetCached)                  // Read-only cache lookup
		r.Get("/has-api-key", h.HandleHasAPIKey)             // Which refresh path is available
		if h.events != nil {
			r.Get("/stream", h.HandleStream) // Refresh progress over websocket
		}
	})
}
