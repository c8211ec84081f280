package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/mux"
	"minera/internal/models"
	"minera/internal/service"
)

type ReceiveAdRequest struct {
	Token  string             `json:"token"`
	AdData *service.AdPayload `json:"adData"`
}

type ReceiveAdResponse struct {
	Success    bool   `json:"success"`
	AdID       int64  `json:"ad_id,omitempty"`
	WasUpdated bool   `json:"was_updated"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type AdsGetResponse struct {
	Ads        []models.Ad        `json:"ads"`
	Pagination PaginationResponse `json:"pagination"`
}

type ToggleFavoriteRequest struct {
	LibraryID string `json:"library_id" validate:"required"`
}

type ToggleFavoriteResponse struct {
	Success    bool   `json:"success"`
	IsFavorite bool   `json:"is_favorite"`
	Message    string `json:"message"`
}

// ReceiveAd - публичный эндпоинт приёма объявлений от расширения.
// 201 при создании, 200 при обновлении существующей строки.
func (h *Handlers) ReceiveAd(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReceiveAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReceiveError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if req.Token == "" || req.AdData == nil {
		writeReceiveError(w, "Токен и данные объявления обязательны", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req.AdData); err != nil {
		writeReceiveError(w, service.ErrMissingFields.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.AdService.UpsertAd(r.Context(), req.Token, *req.AdData)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeReceiveError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrTokenFormat),
			errors.Is(err, service.ErrTokenInvalid),
			errors.Is(err, service.ErrUserNotFound):
			writeReceiveError(w, "Токен недействителен или истек", http.StatusUnauthorized)
		default:
			writeReceiveError(w, "Ошибка при обработке объявления", http.StatusInternalServerError)
		}
		return
	}

	status := http.StatusCreated
	if outcome.WasUpdated {
		status = http.StatusOK
	}

	WriteSuccess(w, ReceiveAdResponse{
		Success:    true,
		AdID:       outcome.AdID,
		WasUpdated: outcome.WasUpdated,
		Message:    outcome.Message,
	}, status)
}

func writeReceiveError(w http.ResponseWriter, message string, statusCode int) {
	WriteSuccess(w, ReceiveAdResponse{Success: false, Error: message}, statusCode)
}

// GetAds - страница листинга с фильтрами. Фильтры собираются в одно
// значение состояния; запрос за пределами последней страницы возвращает
// пустой список с корректным total.
func (h *Handlers) GetAds(w http.ResponseWriter, r *http.Request) {
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

	filters, err := parseAdFilters(r)
	if err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ads, total, err := h.AdService.ListAds(r.Context(), userID, filters)
	if err != nil {
		WriteError(w, "Ошибка при получении объявлений", http.StatusInternalServerError)
		return
	}

	limit := h.AdService.PageSize()
	totalPages := (total + limit - 1) / limit

	WriteSuccess(w, AdsGetResponse{
		Ads: ads,
		Pagination: PaginationResponse{
			Page:       filters.Page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, http.StatusOK)
}

var quickFilters = []string{
	models.FilterTrending,
	models.FilterWeekly,
	models.FilterRecent,
	models.FilterFavorites,
}

func parseAdFilters(r *http.Request) (models.AdFilters, error) {
	query := r.URL.Query()

	quickFilter := query.Get("filter")
	if quickFilter == "none" {
		quickFilter = models.FilterNone
	}
	if quickFilter != models.FilterNone && !slices.Contains(quickFilters, quickFilter) {
		return models.AdFilters{}, errors.New("неизвестный фильтр: " + quickFilter)
	}

	page := 1
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return models.AdFilters{}, errors.New("неверный номер страницы")
		}
		page = parsed
	}

	minUses := 0
	if raw := query.Get("minUses"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return models.AdFilters{}, errors.New("minUses должен быть неотрицательным числом")
		}
		minUses = parsed
	}

	return models.AdFilters{
		QuickFilter: quickFilter,
		Search:      query.Get("search"),
		Category:    query.Get("category"),
		MinUses:     minUses,
		Language:    query.Get("language"),
		MediaType:   query.Get("mediaType"),
		Platform:    query.Get("platform"),
		Page:        page,
	}, nil
}

// GetAdStats - счётчики для бейджей панели.
func (h *Handlers) GetAdStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.AdService.Stats(r.Context(), userID)
	if err != nil {
		WriteError(w, "Ошибка при подсчёте статистики", http.StatusInternalServerError)
		return
	}

	WriteSuccess(w, stats, http.StatusOK)
}

// ToggleFavorite переключает флаг избранного на объявлении пользователя.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
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

	var req ToggleFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if req.LibraryID == "" {
		WriteError(w, "library_id обязателен", http.StatusBadRequest)
		return
	}

	isFavorite, err := h.AdService.ToggleFavorite(r.Context(), userID, req.LibraryID)
	if err != nil {
		if errors.Is(err, service.ErrAdNotFound) {
			WriteError(w, err.Error(), http.StatusNotFound)
			return
		}
		WriteError(w, "Ошибка при переключении избранного", http.StatusInternalServerError)
		return
	}

	message := "Объявление убрано из избранного"
	if isFavorite {
		message = "Объявление добавлено в избранное"
	}

	WriteSuccess(w, ToggleFavoriteResponse{
		Success:    true,
		IsFavorite: isFavorite,
		Message:    message,
	}, http.StatusOK)
}

// DeleteAd удаляет объявление владельца по внутреннему id.
func (h *Handlers) DeleteAd(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := userIDFromContext(r)
	if userID == "" {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	adID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		WriteError(w, "Неверный идентификатор объявления", http.StatusBadRequest)
		return
	}

	err = h.AdService.DeleteAd(r.Context(), userID, adID)
	if err != nil {
		if errors.Is(err, service.ErrAdNotFound) {
			WriteError(w, err.Error(), http.StatusNotFound)
			return
		}
		WriteError(w, "Ошибка при удалении объявления", http.StatusInternalServerError)
		return
	}

	WriteSuccess(w, map[string]bool{"success": true}, http.StatusOK)
}
