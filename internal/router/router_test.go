package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kart-pricing/internal/handler"
	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubCart struct{ user *model.User }

func (s *stubCart) Process(_ context.Context, req *model.CartRequest, user *model.User) (*model.CartResult, error) {
	s.user = user
	return &model.CartResult{Currency: req.Currency}, nil
}

type stubAvailability struct{}

func (stubAvailability) GetProductAvailability(_ context.Context, id uuid.UUID) (*model.ProductAvailability, error) {
	return &model.ProductAvailability{ProductID: id, Unlimited: true}, nil
}

func (stubAvailability) RefreshItem(context.Context, uuid.UUID) error { return nil }

func TestRouter(t *testing.T) {
	cart := &stubCart{}
	logger := zerolog.Nop()
	h := New(
		handler.NewCartHandler(cart, logger),
		handler.NewProductHandler(stubAvailability{}, logger),
		"secret",
		logger,
	)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		apiKey         string
		expectedStatus int
	}{
		{name: "Health without key", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "Cart without key", method: http.MethodPost, path: "/api/cart/process", body: `{"currency":"PLN"}`, expectedStatus: http.StatusUnauthorized},
		{name: "Cart", method: http.MethodPost, path: "/api/cart/process", body: `{"currency":"PLN"}`, apiKey: "secret", expectedStatus: http.StatusOK},
		{name: "Availability", method: http.MethodGet, path: "/api/products/" + uuid.NewString() + "/availability", apiKey: "secret", expectedStatus: http.StatusOK},
		{name: "Unknown product route", method: http.MethodGet, path: "/api/products/" + uuid.NewString(), apiKey: "secret", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	t.Run("Identity reaches the cart service", func(t *testing.T) {
		userID := uuid.New()
		req := httptest.NewRequest(http.MethodPost, "/api/cart/process", strings.NewReader(`{"currency":"PLN"}`))
		req.Header.Set("X-API-Key", "secret")
		req.Header.Set("X-User-ID", userID.String())
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		if assert.NotNil(t, cart.user) {
			assert.Equal(t, userID, cart.user.ID)
		}
	})
}
