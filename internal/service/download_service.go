package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"minera/internal/config"
	"minera/internal/storage"
)

const defaultFilename = "minera_media"

var ErrMediaURLRequired = errors.New("URL медиа обязателен")

// UpstreamError - отказ источника медиа; статус зеркалируется клиенту,
// тело источника наружу не отдаётся.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ошибка при загрузке медиа: %s", e.Status)
}

type MediaPayload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// DownloadStrategy - один способ получить файл по URL. Стратегии
// пробуются по порядку, пока одна не сработает.
type DownloadStrategy interface {
	Name() string
	Fetch(ctx context.Context, mediaURL string) (*MediaPayload, error)
}

type DownloadService interface {
	Download(ctx context.Context, mediaURL, filename string) (*MediaPayload, error)
}

type downloadService struct {
	strategies []DownloadStrategy
	storage    storage.Storage
	cfg        *config.Config
}

func NewDownloadService(cfg *config.Config, storage storage.Storage) DownloadService {
	client := &http.Client{Timeout: cfg.DownloadTimeout}

	return &downloadService{
		strategies: []DownloadStrategy{
			&browserFetchStrategy{client: client},
			&plainFetchStrategy{client: client},
		},
		storage: storage,
		cfg:     cfg,
	}
}

// NewDownloadServiceWithStrategies позволяет подменить цепочку стратегий в тестах.
func NewDownloadServiceWithStrategies(cfg *config.Config, storage storage.Storage, strategies ...DownloadStrategy) DownloadService {
	return &downloadService{
		strategies: strategies,
		storage:    storage,
		cfg:        cfg,
	}
}

func (s *downloadService) Download(ctx context.Context, mediaURL, filename string) (*MediaPayload, error) {
	if mediaURL == "" {
		return nil, ErrMediaURLRequired
	}

	if filename == "" {
		filename = defaultFilename
	}

	var lastErr error
	for _, strategy := range s.strategies {
		payload, err := strategy.Fetch(ctx, mediaURL)
		if err != nil {
			log.Printf("Стратегия %s не сработала: %v", strategy.Name(), err)
			lastErr = err
			continue
		}

		payload.Filename = filename
		s.archive(ctx, payload)

		return payload, nil
	}

	if lastErr == nil {
		lastErr = errors.New("нет доступных стратегий загрузки")
	}

	return nil, lastErr
}

// archive складывает скачанный файл в MinIO. Неудача архивации не
// срывает скачивание.
func (s *downloadService) archive(ctx context.Context, payload *MediaPayload) {
	if !s.cfg.MediaArchiveEnabled || s.storage == nil {
		return
	}

	_, err := s.storage.ArchiveMedia(ctx, payload.Filename, payload.ContentType, payload.Data)
	if err != nil {
		log.Printf("Предупреждение: не удалось сохранить медиа в архив: %v", err)
	}
}

// browserFetchStrategy маскируется под браузер, чтобы источник не
// отклонял серверные запросы.
type browserFetchStrategy struct {
	client *http.Client
}

func (f *browserFetchStrategy) Name() string {
	return "browser-fetch"
}

func (f *browserFetchStrategy) Fetch(ctx context.Context, mediaURL string) (*MediaPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании запроса: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("DNT", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")

	return doFetch(f.client, req)
}

// plainFetchStrategy - запасной запрос без маскировки.
type plainFetchStrategy struct {
	client *http.Client
}

func (f *plainFetchStrategy) Name() string {
	return "plain-fetch"
}

func (f *plainFetchStrategy) Fetch(ctx context.Context, mediaURL string) (*MediaPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании запроса: %w", err)
	}

	req.Header.Set("Accept", "*/*")

	return doFetch(f.client, req)
}

func doFetch(client *http.Client, req *http.Request) (*MediaPayload, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе медиа: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении тела ответа: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &MediaPayload{
		Data:        data,
		ContentType: contentType,
	}, nil
}
