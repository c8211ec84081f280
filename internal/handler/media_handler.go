package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"minera/internal/service"
)

type DownloadMediaRequest struct {
	URL      string `json:"url" validate:"required"`
	Filename string `json:"filename"`
}

// DownloadMedia проксирует скачивание медиа, чтобы обойти браузерные
// CORS-ограничения. Отдаёт байты с заголовками attachment; при отказе
// источника зеркалирует его статус структурированной ошибкой.
func (h *Handlers) DownloadMedia(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Метод не разрешен", http.StatusMethodNotAllowed)
		return
	}

	var req DownloadMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if req.URL == "" {
		WriteError(w, "URL медиа обязателен", http.StatusBadRequest)
		return
	}

	payload, err := h.DownloadService.Download(r.Context(), req.URL, req.Filename)
	if err != nil {
		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			WriteError(w, err.Error(), upstreamErr.StatusCode)
			return
		}
		WriteError(w, "Внутренняя ошибка прокси загрузки", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", payload.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Data)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(payload.Data)
}
