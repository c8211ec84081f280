package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minera/internal/config"
	"minera/internal/models"
	"minera/internal/repository"
)

var (
	ErrMissingFields = errors.New("library_id, title и advertiser_name обязательны")
	ErrAdNotFound    = errors.New("объявление не найдено")
)

// AdPayload - данные объявления от расширения. Указатели отличают
// непереданные поля от пустых: для них действуют значения по умолчанию
// при вставке и прежние значения строки при обновлении.
type AdPayload struct {
	LibraryID       string     `json:"library_id" validate:"required"`
	Title           string     `json:"title" validate:"required"`
	AdvertiserName  string     `json:"advertiser_name" validate:"required"`
	Description     *string    `json:"description"`
	PageName        *string    `json:"page_name"`
	PagePhotoURL    *string    `json:"page_photo_url"`
	VideoURL        *string    `json:"video_url"`
	ThumbnailURL    *string    `json:"thumbnail_url"`
	MediaType       *string    `json:"media_type"`
	UsesCount       *int       `json:"uses_count" validate:"omitempty,gte=0"`
	StartDate       *string    `json:"start_date"`
	EndDate         *string    `json:"end_date"`
	IsActive        *bool      `json:"is_active"`
	Category        *string    `json:"category"`
	Country         *string    `json:"country"`
	Language        *string    `json:"language"`
	Platform        *string    `json:"platform"`
	TargetingInfo   *string    `json:"targeting_info"`
	PerformanceData *string    `json:"performance_data"`
	ExtractedAt     *time.Time `json:"extracted_at"`
	PageURL         *string    `json:"page_url"`
	AdURL           *string    `json:"ad_url"`
}

type UpsertAdOutcome struct {
	AdID       int64
	WasUpdated bool
	Message    string
}

type AdService interface {
	UpsertAd(ctx context.Context, token string, payload AdPayload) (*UpsertAdOutcome, error)
	ListAds(ctx context.Context, userID string, filters models.AdFilters) ([]models.Ad, int, error)
	Stats(ctx context.Context, userID string) (*models.AdStats, error)
	ToggleFavorite(ctx context.Context, userID, libraryID string) (bool, error)
	DeleteAd(ctx context.Context, userID string, adID int64) error
	PageSize() int
}

type adService struct {
	adRepo       repository.AdRepository
	tokenService TokenService
	cfg          *config.Config
}

func NewAdService(adRepo repository.AdRepository, tokenService TokenService, cfg *config.Config) AdService {
	return &adService{
		adRepo:       adRepo,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

// UpsertAd принимает объявление от расширения: проверяет токен,
// определяет владельца и атомарно вставляет или обновляет строку
// по ключу (user_id, library_id).
func (s *adService) UpsertAd(ctx context.Context, token string, payload AdPayload) (*UpsertAdOutcome, error) {
	if payload.LibraryID == "" || payload.Title == "" || payload.AdvertiserName == "" {
		return nil, ErrMissingFields
	}

	profile, err := s.tokenService.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	result, err := s.adRepo.Upsert(ctx, repository.UpsertAdParams{
		UserID:          profile.ID,
		LibraryID:       payload.LibraryID,
		Title:           payload.Title,
		AdvertiserName:  payload.AdvertiserName,
		Description:     payload.Description,
		PageName:        payload.PageName,
		PagePhotoURL:    payload.PagePhotoURL,
		VideoURL:        payload.VideoURL,
		ThumbnailURL:    payload.ThumbnailURL,
		MediaType:       payload.MediaType,
		UsesCount:       payload.UsesCount,
		StartDate:       payload.StartDate,
		EndDate:         payload.EndDate,
		IsActive:        payload.IsActive,
		Category:        payload.Category,
		Country:         payload.Country,
		Language:        payload.Language,
		Platform:        payload.Platform,
		TargetingInfo:   payload.TargetingInfo,
		PerformanceData: payload.PerformanceData,
		ExtractedAt:     payload.ExtractedAt,
		PageURL:         payload.PageURL,
		AdURL:           payload.AdURL,
	})
	if err != nil {
		return nil, err
	}

	message := "Новое объявление сохранено"
	if result.WasUpdated {
		message = "Объявление обновлено"
	}

	return &UpsertAdOutcome{
		AdID:       result.AdID,
		WasUpdated: result.WasUpdated,
		Message:    message,
	}, nil
}

// ListAds возвращает страницу объявлений и общее число строк,
// подходящих под фильтры. Страница за пределами выборки - пустой
// список с корректным счётчиком, а не ошибка.
func (s *adService) ListAds(ctx context.Context, userID string, filters models.AdFilters) ([]models.Ad, int, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}

	query := s.buildQuery(userID, filters, time.Now())
	query.Limit = s.cfg.Listing.PageSize
	query.Offset = (page - 1) * s.cfg.Listing.PageSize

	total, err := s.adRepo.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	ads, err := s.adRepo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	return ads, total, nil
}

func (s *adService) buildQuery(userID string, filters models.AdFilters, now time.Time) repository.ListAdsQuery {
	return repository.ListAdsQuery{
		UserID:          userID,
		QuickFilter:     filters.QuickFilter,
		Search:          filters.Search,
		Category:        filters.Category,
		Language:        filters.Language,
		MediaType:       filters.MediaType,
		Platform:        filters.Platform,
		MinUses:         filters.MinUses,
		TrendingMinUses: s.cfg.Listing.TrendingMinUses,
		RecentSince:     now.AddDate(0, 0, -s.cfg.Listing.RecentWindowDays),
		WeeklySince:     now.AddDate(0, 0, -s.cfg.Listing.WeeklyWindowDays),
	}
}

func (s *adService) Stats(ctx context.Context, userID string) (*models.AdStats, error) {
	now := time.Now()

	return s.adRepo.Stats(ctx, userID,
		s.cfg.Listing.TrendingMinUses,
		now.AddDate(0, 0, -s.cfg.Listing.RecentWindowDays),
		now.AddDate(0, 0, -s.cfg.Listing.WeeklyWindowDays),
	)
}

func (s *adService) ToggleFavorite(ctx context.Context, userID, libraryID string) (bool, error) {
	isFavorite, err := s.adRepo.ToggleFavorite(ctx, userID, libraryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrAdNotFound
		}
		return false, err
	}

	return isFavorite, nil
}

func (s *adService) DeleteAd(ctx context.Context, userID string, adID int64) error {
	err := s.adRepo.Delete(ctx, userID, adID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAdNotFound
		}
		return fmt.Errorf("ошибка при удалении объявления: %w", err)
	}

	return nil
}

func (s *adService) PageSize() int {
	return s.cfg.Listing.PageSize
}
