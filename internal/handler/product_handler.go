package handler

import (
	"net/http"
	"strings"

	"kart-pricing/internal/model"
	"kart-pricing/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.AvailabilityService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.AvailabilityService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAvailability handles GET /api/products/{id}/availability requests.
func (h *ProductHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	// Expecting path: /api/products/{id}/availability
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")
	idStr, ok := strings.CutSuffix(rest, "/availability")
	if !ok || idStr == "" || strings.Contains(idStr, "/") {
		writeError(w, http.StatusNotFound, model.ErrCodeNotFound, "not found", h.logger)
		return
	}

	productID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid product ID", h.logger)
		return
	}

	result, err := h.service.GetProductAvailability(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err, "failed to get availability", h.logger)
		return
	}

	if result == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeProductNotFound, "product not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
