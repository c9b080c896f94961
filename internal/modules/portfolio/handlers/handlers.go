// Package handlers provides HTTP handlers for positions.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PositionStore is the subset of the position repository the handlers use.
type PositionStore interface {
	GetAll() ([]domain.Position, error)
	Create(pos domain.Position) (*domain.Position, error)
}

// Handler handles position HTTP requests
type Handler struct {
	positions PositionStore
	log       zerolog.Logger
}

// NewHandler creates a new position handler
func NewHandler(positions PositionStore, log zerolog.Logger) *Handler {
	return &Handler{
		positions: positions,
		log:       log.With().Str("handler", "positions").Logger(),
	}
}

type createPositionRequest struct {
	Ticker       string           `json:"ticker"`
	Name         string           `json:"name"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
	AutoUpdate   *bool            `json:"autoUpdate"`
}

// HandleGetPositions lists all positions.
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positions.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list positions")
		h.writeError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}
	h.writeJSON(w, http.StatusOK, positions)
}

// HandleCreatePosition adds a position. autoUpdate defaults to true.
func (h *Handler) HandleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var req createPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	pos := domain.Position{Ticker: ticker, Name: req.Name, AutoUpdate: true}
	if req.AutoUpdate != nil {
		pos.AutoUpdate = *req.AutoUpdate
	}
	if req.CurrentPrice != nil {
		pos.CurrentPrice = decimal.NewNullDecimal(*req.CurrentPrice)
	}

	created, err := h.positions.Create(pos)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to create position")
		h.writeError(w, http.StatusInternalServerError, "failed to create position")
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
