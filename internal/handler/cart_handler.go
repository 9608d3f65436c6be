package handler

import (
	"encoding/json"
	"net/http"

	"kart-pricing/internal/middleware"
	"kart-pricing/internal/model"
	"kart-pricing/internal/service"

	"github.com/rs/zerolog"
)

// maxCartBody bounds the size of a cart request body.
const maxCartBody = 1 << 20

// CartHandler handles cart pricing requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Process handles POST /api/cart/process requests.
func (h *CartHandler) Process(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.CartRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCartBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.Process(r.Context(), &req, middleware.UserFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "failed to process cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
