// Package handlers provides HTTP handlers for identifier lookup.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/aristath/pricesync/internal/modules/lookup"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Resolver is the lookup service as seen by the handlers.
type Resolver interface {
	Resolve(ctx context.Context, identifier string, kind domain.LookupKind) (*domain.ResolvedSecurity, error)
}

// Result is the lookup response envelope. A failed resolution is still HTTP 200
// so the caller can show the message inline.
type Result struct {
	Success bool                     `json:"success"`
	Data    *domain.ResolvedSecurity `json:"data,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// Handler handles lookup HTTP requests
type Handler struct {
	resolver Resolver
	log      zerolog.Logger
}

// NewHandler creates a new lookup handler
func NewHandler(resolver Resolver, log zerolog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		log:      log.With().Str("handler", "lookup").Logger(),
	}
}

// HandleByWKN handles GET /lookup/wkn/{wkn}
func (h *Handler) HandleByWKN(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, chi.URLParam(r, "wkn"), domain.LookupWKN)
}

// HandleByTicker handles GET /lookup/ticker/{ticker}
func (h *Handler) HandleByTicker(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, chi.URLParam(r, "ticker"), domain.LookupTicker)
}

// HandleResolve handles GET /lookup?id=...&kind=wkn|ticker. kind defaults to wkn.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	kind := domain.LookupKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = domain.LookupWKN
	}
	h.resolve(w, r, r.URL.Query().Get("id"), kind)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, identifier string, kind domain.LookupKind) {
	resolved, err := h.resolver.Resolve(r.Context(), identifier, kind)
	if err != nil {
		status := http.StatusOK
		switch {
		case errors.Is(err, lookup.ErrInvalidIdentifier):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrQuoteUnavailable):
		default:
			h.log.Error().Err(err).Str("identifier", identifier).Str("kind", string(kind)).Msg("Lookup failed")
			status = http.StatusInternalServerError
		}
		h.writeJSON(w, status, Result{Success: false, Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, Result{Success: true, Data: resolved})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
