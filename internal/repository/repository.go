package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"minera/internal/models"
)

// ErrNotFound возвращается, когда запрошенная строка отсутствует в БД.
var ErrNotFound = errors.New("запись не найдена")

type TokenRepository interface {
	GetActiveByToken(ctx context.Context, token string) (*models.UserToken, error)
	GetActiveByUserID(ctx context.Context, userID string) (*models.UserToken, error)
	Create(ctx context.Context, token *models.UserToken) error
	DeactivateByUserID(ctx context.Context, userID string) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// UpsertAdParams - входные поля вставки/обновления объявления.
// nil означает "поле не передано": при вставке применяется значение по
// умолчанию, при обновлении сохраняется прежнее значение строки.
type UpsertAdParams struct {
	UserID          string
	LibraryID       string
	Title           string
	AdvertiserName  string
	Description     *string
	PageName        *string
	PagePhotoURL    *string
	VideoURL        *string
	ThumbnailURL    *string
	MediaType       *string
	UsesCount       *int
	StartDate       *string
	EndDate         *string
	IsActive        *bool
	Category        *string
	Country         *string
	Language        *string
	Platform        *string
	TargetingInfo   *string
	PerformanceData *string
	ExtractedAt     *time.Time
	PageURL         *string
	AdURL           *string
}

type UpsertAdResult struct {
	AdID       int64 `db:"id"`
	WasUpdated bool  `db:"was_updated"`
}

// ListAdsQuery - полностью вычисленный запрос листинга: пороги и границы
// временных окон подставляет сервис, репозиторий их не пересчитывает.
type ListAdsQuery struct {
	UserID          string
	QuickFilter     string
	Search          string
	Category        string
	Language        string
	MediaType       string
	Platform        string
	MinUses         int
	TrendingMinUses int
	RecentSince     time.Time
	WeeklySince     time.Time
	Limit           int
	Offset          int
}

type AdRepository interface {
	Upsert(ctx context.Context, params UpsertAdParams) (*UpsertAdResult, error)
	ToggleFavorite(ctx context.Context, userID, libraryID string) (bool, error)
	List(ctx context.Context, q ListAdsQuery) ([]models.Ad, error)
	Count(ctx context.Context, q ListAdsQuery) (int, error)
	Stats(ctx context.Context, userID string, trendingMinUses int, recentSince, weeklySince time.Time) (*models.AdStats, error)
	Delete(ctx context.Context, userID string, adID int64) error
}

type Repository struct {
	Token   TokenRepository
	Profile ProfileRepository
	Ad      AdRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Token:   NewTokenRepository(db),
		Profile: NewProfileRepository(db),
		Ad:      NewAdRepository(db),
	}
}
