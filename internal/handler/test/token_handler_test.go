package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"minera/internal/config"
	handlers "minera/internal/handler"
	"minera/internal/models"
	"minera/internal/service"
)

const validToken = "mnr_0123456789abcdef0123456789abcdef0123456789abcdef"

func newHandlers(tokenService *MockTokenService, adService *MockAdService, downloadService *MockDownloadService) *handlers.Handlers {
	return &handlers.Handlers{
		TokenService:    tokenService,
		AdService:       adService,
		DownloadService: downloadService,
		Cfg:             &config.Config{},
		Validate:        validator.New(),
	}
}

func authRequest(method, target string, body []byte, userID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if userID != "" {
		ctx := context.WithValue(req.Context(), "userID", userID)
		req = req.WithContext(ctx)
	}

	return req
}

func TestValidateTokenHandler(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		mockSetup      func(*MockTokenService)
		expectedStatus int
		expectedValid  bool
	}{
		{
			name:           "Отсутствующий токен - 400",
			requestBody:    map[string]interface{}{},
			mockSetup:      func(svc *MockTokenService) {},
			expectedStatus: http.StatusBadRequest,
			expectedValid:  false,
		},
		{
			name:        "Короткий токен - 400",
			requestBody: map[string]interface{}{"token": "short"},
			mockSetup: func(svc *MockTokenService) {
				svc.On("ValidateToken", mock.Anything, "short").
					Return(nil, service.ErrTokenFormat)
			},
			expectedStatus: http.StatusBadRequest,
			expectedValid:  false,
		},
		{
			name:        "Неизвестный токен - 401",
			requestBody: map[string]interface{}{"token": validToken},
			mockSetup: func(svc *MockTokenService) {
				svc.On("ValidateToken", mock.Anything, validToken).
					Return(nil, service.ErrTokenInvalid)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedValid:  false,
		},
		{
			name:        "Владелец без профиля - 401",
			requestBody: map[string]interface{}{"token": validToken},
			mockSetup: func(svc *MockTokenService) {
				svc.On("ValidateToken", mock.Anything, validToken).
					Return(nil, service.ErrUserNotFound)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedValid:  false,
		},
		{
			name:        "Действительный токен - 200 с профилем",
			requestBody: map[string]interface{}{"token": validToken},
			mockSetup: func(svc *MockTokenService) {
				svc.On("ValidateToken", mock.Anything, validToken).
					Return(&models.Profile{
						ID:       "user-1",
						Email:    "user@example.com",
						FullName: "Test User",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedValid:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenService := new(MockTokenService)
			tt.mockSetup(tokenService)

			handler := newHandlers(tokenService, new(MockAdService), new(MockDownloadService))

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/extension/validate-token", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			handler.ValidateToken(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)

			var response handlers.ValidateTokenResponse
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedValid, response.Valid)

			if tt.expectedValid {
				assert.Equal(t, "user-1", response.User.ID)
				assert.Equal(t, "user@example.com", response.User.Email)
			} else {
				assert.NotEmpty(t, response.Error)
			}

			tokenService.AssertExpectations(t)
		})
	}
}

func TestGetTokenHandler(t *testing.T) {
	t.Run("Без аутентификации - 401", func(t *testing.T) {
		handler := newHandlers(new(MockTokenService), new(MockAdService), new(MockDownloadService))

		req := authRequest(http.MethodGet, "/api/token", nil, "")
		rr := httptest.NewRecorder()

		handler.GetToken(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Токен выдается владельцу", func(t *testing.T) {
		tokenService := new(MockTokenService)
		tokenService.On("GetOrCreateToken", mock.Anything, "user-1").Return(validToken, nil)

		handler := newHandlers(tokenService, new(MockAdService), new(MockDownloadService))

		req := authRequest(http.MethodGet, "/api/token", nil, "user-1")
		rr := httptest.NewRecorder()

		handler.GetToken(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response handlers.TokenResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, validToken, response.Token)
	})
}

func TestRegenerateTokenHandler(t *testing.T) {
	tokenService := new(MockTokenService)
	tokenService.On("RegenerateToken", mock.Anything, "user-1").
		Return("mnr_ffffffffffffffffffffffffffffffffffffffffffffffff", nil)

	handler := newHandlers(tokenService, new(MockAdService), new(MockDownloadService))

	req := authRequest(http.MethodPost, "/api/token/regenerate", nil, "user-1")
	rr := httptest.NewRecorder()

	handler.RegenerateToken(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response handlers.TokenResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "mnr_ffffffffffffffffffffffffffffffffffffffffffffffff", response.Token)
	tokenService.AssertExpectations(t)
}
