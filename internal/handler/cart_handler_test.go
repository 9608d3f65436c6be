package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kart-pricing/internal/middleware"
	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Process(ctx context.Context, req *model.CartRequest, user *model.User) (*model.CartResult, error) {
	args := m.Called(ctx, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResult), args.Error(1)
}

func TestCartHandler_Process(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	result := &model.CartResult{
		Currency:         "PLN",
		CartTotalInitial: model.NewMoney(920000, "PLN"),
		CartTotal:        model.NewMoney(828000, "PLN"),
		Summary:          model.NewMoney(828000, "PLN"),
		Items:            []model.CartItemResult{},
		Coupons:          []model.AppliedDiscount{},
		Sales:            []model.AppliedDiscount{},
	}

	validBody := fmt.Sprintf(`{
		"currency": "PLN",
		"salesChannelId": %q,
		"items": [{"cartitemId": "1", "productId": %q, "quantity": 2}],
		"coupons": ["WELCOME10"]
	}`, uuid.NewString(), productID)

	tests := []struct {
		name           string
		method         string
		body           string
		mockReturn     *model.CartResult
		mockError      error
		expectedStatus int
		expectedCode   string
		shouldCallMock bool
	}{
		{
			name:           "Success",
			method:         http.MethodPost,
			body:           validBody,
			mockReturn:     result,
			expectedStatus: http.StatusOK,
			shouldCallMock: true,
		},
		{
			name:           "Validation error",
			method:         http.MethodPost,
			body:           validBody,
			mockError:      model.ErrShippingTypeMismatch,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeShippingTypeMismatch,
			shouldCallMock: true,
		},
		{
			name:           "Invariant violation",
			method:         http.MethodPost,
			body:           validBody,
			mockError:      fmt.Errorf("failed to apply discounts: %w", model.InvariantError("negative total")),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			shouldCallMock: true,
		},
		{
			name:           "Infrastructure error",
			method:         http.MethodPost,
			body:           validBody,
			mockError:      errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			shouldCallMock: true,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPost,
			body:           `{"currency": `,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedCode:   model.ErrCodeMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			if tt.shouldCallMock {
				mockService.On("Process", mock.Anything, mock.MatchedBy(func(req *model.CartRequest) bool {
					return req.Currency == "PLN" && len(req.Items) == 1 && req.Items[0].ProductID == productID
				}), (*model.User)(nil)).Return(tt.mockReturn, tt.mockError)
			}

			h := NewCartHandler(mockService, logger)
			req := httptest.NewRequest(tt.method, "/api/cart/process", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			h.Process(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedCode, resp.Error)
			}
			if tt.expectedStatus == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "8280.00", resp["cartTotal"])
				assert.Equal(t, "9200.00", resp["cartTotalInitial"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_Process_PassesUser(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	mockService := new(MockCartService)
	mockService.On("Process", mock.Anything, mock.Anything, user).Return(&model.CartResult{Currency: "PLN"}, nil)

	h := NewCartHandler(mockService, zerolog.Nop())
	req := httptest.NewRequest(http.MethodPost, "/api/cart/process", bytes.NewBufferString(`{"currency":"PLN"}`))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	w := httptest.NewRecorder()

	h.Process(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
