// Package handlers provides HTTP handlers for price refresh and cache reads.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/aristath/pricesync/internal/modules/prices"
	"github.com/aristath/pricesync/internal/utils"
	"github.com/rs/zerolog"
)

// PriceService is the prices service as seen by the handlers.
type PriceService interface {
	HasAPIKey() bool
	Fetch(ctx context.Context, tickers []string) (*prices.RefreshSummary, error)
	FetchKeyed(ctx context.Context, tickers []string) (*prices.RefreshSummary, error)
	GetCached(tickers []string) ([]domain.PriceCacheEntry, error)
}

// Handler handles price HTTP requests
type Handler struct {
	service PriceService
	events  Subscriber
	log     zerolog.Logger
}

// NewHandler creates a new prices handler. events may be nil, in which case
// the stream route is not registered.
func NewHandler(service PriceService, events Subscriber, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		events:  events,
		log:     log.With().Str("handler", "prices").Logger(),
	}
}

type fetchRequest struct {
	Tickers []string `json:"tickers"`
}

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleFetch handles POST /prices/fetch (keyless provider, one request per ticker)
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	h.refresh(w, r, h.service.Fetch)
}

// HandleFetchTwelveData handles POST /prices/fetch-twelvedata (keyed provider, batched)
func (h *Handler) HandleFetchTwelveData(w http.ResponseWriter, r *http.Request) {
	h.refresh(w, r, h.service.FetchKeyed)
}

func (h *Handler) refresh(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, tickers []string) (*prices.RefreshSummary, error),
) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := run(r.Context(), req.Tickers)
	if errors.Is(err, domain.ErrMissingAPIKey) {
		h.writeError(w, http.StatusPreconditionFailed, err.Error())
		return
	}
	if summary == nil {
		h.log.Error().Err(err).Msg("Price refresh failed")
		h.writeError(w, http.StatusInternalServerError, "price refresh failed")
		return
	}
	if err != nil {
		// Client went away mid-run; whatever was fetched has been applied.
		h.log.Warn().Err(err).Int("prices", len(summary.Prices)).Msg("Price refresh interrupted")
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// HandleGetCached handles GET /prices/cached?tickers=A,B
func (h *Handler) HandleGetCached(w http.ResponseWriter, r *http.Request) {
	tickers := utils.ParseTickerList(r.URL.Query().Get("tickers"))

	entries, err := h.service.GetCached(tickers)
	if err != nil {
		h.log.Error().Err(err).Strs("tickers", tickers).Msg("Failed to read price cache")
		h.writeError(w, http.StatusInternalServerError, "failed to read price cache")
		return
	}
	if entries == nil {
		entries = []domain.PriceCacheEntry{}
	}

	h.writeJSON(w, http.StatusOK, entries)
}

// HandleHasAPIKey handles GET /prices/has-api-key
func (h *Handler) HandleHasAPIKey(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"hasKey": h.service.HasAPIKey()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, failure{Success: false, Error: message})
}
