package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"minera/internal/service"
)

type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type TokenUserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type ValidateTokenResponse struct {
	Valid bool               `json:"valid"`
	User  *TokenUserResponse `json:"user,omitempty"`
	Error string             `json:"error,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// ValidateToken - публичный эндпоинт для расширения: проверяет токен
// и возвращает профиль владельца.
func (h *Handlers) ValidateToken(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ValidateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if req.Token == "" {
		writeValidation(w, "Токен обязателен", http.StatusBadRequest)
		return
	}

	profile, err := h.TokenService.ValidateToken(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenFormat):
			writeValidation(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrUserNotFound):
			writeValidation(w, err.Error(), http.StatusUnauthorized)
		default:
			writeValidation(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	WriteSuccess(w, ValidateTokenResponse{
		Valid: true,
		User: &TokenUserResponse{
			ID:       profile.ID,
			Email:    profile.Email,
			FullName: profile.FullName,
		},
	}, http.StatusOK)
}

func writeValidation(w http.ResponseWriter, message string, statusCode int) {
	WriteSuccess(w, ValidateTokenResponse{Valid: false, Error: message}, statusCode)
}

// GetToken возвращает действующий токен пользователя, создавая его
// при первом обращении.
func (h *Handlers) GetToken(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := userIDFromContext(r)
	if userID == "" {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	token, err := h.TokenService.GetOrCreateToken(r.Context(), userID)
	if err != nil {
		WriteError(w, "Ошибка при получении токена", http.StatusInternalServerError)
		return
	}

	WriteSuccess(w, TokenResponse{Token: token}, http.StatusOK)
}

// RegenerateToken отзывает текущий токен и выдаёт новый.
func (h *Handlers) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := userIDFromContext(r)
	if userID == "" {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	token, err := h.TokenService.RegenerateToken(r.Context(), userID)
	if err != nil {
		WriteError(w, "Ошибка при перевыпуске токена", http.StatusInternalServerError)
		return
	}

	WriteSuccess(w, TokenResponse{Token: token}, http.StatusOK)
}
