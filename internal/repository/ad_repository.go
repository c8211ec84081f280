package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"minera/internal/models"
)

type AdRepositoryImpl struct {
	db *sqlx.DB
}

func NewAdRepository(db *sqlx.DB) *AdRepositoryImpl {
	return &AdRepositoryImpl{db: db}
}

// upsertAdQuery выполняет вставку и обновление одним атомарным запросом,
// чтобы параллельный приём одного library_id не создал дубликатов.
// COALESCE в VALUES подставляет значения по умолчанию при первой вставке,
// COALESCE в DO UPDATE сохраняет прежние значения для непереданных полей.
// (xmax <> 0) отличает обновление существующей строки от вставки новой.
const upsertAdQuery = `
	INSERT INTO ads (
		user_id, library_id, title, advertiser_name, description, page_name,
		page_photo_url, video_url, thumbnail_url, media_type, uses_count,
		start_date, end_date, is_active, category, country, language, platform,
		targeting_info, performance_data, extracted_at, page_url, ad_url
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9,
		COALESCE($10, 'image'), COALESCE($11, 1), $12, $13,
		COALESCE($14, TRUE), COALESCE($15, 'Social Media'), COALESCE($16, 'BR'),
		COALESCE($17, 'pt'), COALESCE($18, 'facebook'),
		$19, $20, COALESCE($21, CURRENT_TIMESTAMP), $22, $23
	)
	ON CONFLICT (user_id, library_id) DO UPDATE SET
		title = EXCLUDED.title,
		advertiser_name = EXCLUDED.advertiser_name,
		description = COALESCE($5, ads.description),
		page_name = COALESCE($6, ads.page_name),
		page_photo_url = COALESCE($7, ads.page_photo_url),
		video_url = COALESCE($8, ads.video_url),
		thumbnail_url = COALESCE($9, ads.thumbnail_url),
		media_type = COALESCE($10, ads.media_type),
		uses_count = COALESCE($11, ads.uses_count),
		start_date = COALESCE($12, ads.start_date),
		end_date = COALESCE($13, ads.end_date),
		is_active = COALESCE($14, ads.is_active),
		category = COALESCE($15, ads.category),
		country = COALESCE($16, ads.country),
		language = COALESCE($17, ads.language),
		platform = COALESCE($18, ads.platform),
		targeting_info = COALESCE($19, ads.targeting_info),
		performance_data = COALESCE($20, ads.performance_data),
		extracted_at = COALESCE($21, ads.extracted_at),
		page_url = COALESCE($22, ads.page_url),
		ad_url = COALESCE($23, ads.ad_url),
		updated_at = CURRENT_TIMESTAMP
	RETURNING id, (xmax <> 0) AS was_updated
`

func (r *AdRepositoryImpl) Upsert(ctx context.Context, params UpsertAdParams) (*UpsertAdResult, error) {
	var result UpsertAdResult

	err := r.db.GetContext(ctx, &result, upsertAdQuery,
		params.UserID,
		params.LibraryID,
		params.Title,
		params.AdvertiserName,
		params.Description,
		params.PageName,
		params.PagePhotoURL,
		params.VideoURL,
		params.ThumbnailURL,
		params.MediaType,
		params.UsesCount,
		params.StartDate,
		params.EndDate,
		params.IsActive,
		params.Category,
		params.Country,
		params.Language,
		params.Platform,
		params.TargetingInfo,
		params.PerformanceData,
		params.ExtractedAt,
		params.PageURL,
		params.AdURL,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка при сохранении объявления: %w", err)
	}

	return &result, nil
}

func (r *AdRepositoryImpl) ToggleFavorite(ctx context.Context, userID, libraryID string) (bool, error) {
	query := `
		UPDATE ads
		SET is_favorite = NOT is_favorite, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND library_id = $2
		RETURNING is_favorite
	`

	var isFavorite bool
	err := r.db.GetContext(ctx, &isFavorite, query, userID, libraryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("ошибка при переключении избранного: %w", err)
	}

	return isFavorite, nil
}

// buildConditions собирает общий WHERE для страницы и для COUNT-запроса.
// Все запросы листинга ограничены владельцем объявлений.
func buildConditions(q ListAdsQuery) (string, []interface{}) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{q.UserID}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch q.QuickFilter {
	case models.FilterTrending:
		conditions = append(conditions, "uses_count >= "+arg(q.TrendingMinUses))
	case models.FilterWeekly:
		conditions = append(conditions, "created_at >= "+arg(q.WeeklySince))
	case models.FilterRecent:
		conditions = append(conditions, "created_at >= "+arg(q.RecentSince))
	case models.FilterFavorites:
		conditions = append(conditions, "is_favorite = TRUE")
	}

	if q.Category != "" {
		conditions = append(conditions, "category = "+arg(q.Category))
	}
	if q.Language != "" {
		conditions = append(conditions, "language = "+arg(q.Language))
	}
	if q.MediaType != "" {
		conditions = append(conditions, "media_type = "+arg(q.MediaType))
	}
	if q.Platform != "" {
		conditions = append(conditions, "platform = "+arg(q.Platform))
	}
	if q.MinUses > 0 {
		conditions = append(conditions, "uses_count >= "+arg(q.MinUses))
	}
	if q.Search != "" {
		pattern := arg("%" + q.Search + "%")
		conditions = append(conditions,
			"(title ILIKE "+pattern+" OR advertiser_name ILIKE "+pattern+" OR description ILIKE "+pattern+")")
	}

	return strings.Join(conditions, " AND "), args
}

func orderClause(quickFilter string) string {
	// trending и weekly сортируются сначала по популярности
	if quickFilter == models.FilterTrending || quickFilter == models.FilterWeekly {
		return "uses_count DESC, created_at DESC"
	}
	return "created_at DESC"
}

func (r *AdRepositoryImpl) List(ctx context.Context, q ListAdsQuery) ([]models.Ad, error) {
	where, args := buildConditions(q)

	query := fmt.Sprintf(
		"SELECT * FROM ads WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		where, orderClause(q.QuickFilter), len(args)+1, len(args)+2,
	)
	args = append(args, q.Limit, q.Offset)

	ads := []models.Ad{}
	err := r.db.SelectContext(ctx, &ads, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении объявлений: %w", err)
	}

	return ads, nil
}

func (r *AdRepositoryImpl) Count(ctx context.Context, q ListAdsQuery) (int, error) {
	where, args := buildConditions(q)

	query := fmt.Sprintf("SELECT COUNT(*) FROM ads WHERE %s", where)

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчёте объявлений: %w", err)
	}

	return count, nil
}

func (r *AdRepositoryImpl) Stats(ctx context.Context, userID string, trendingMinUses int, recentSince, weeklySince time.Time) (*models.AdStats, error) {
	var stats models.AdStats

	err := r.db.GetContext(ctx, &stats.Trending,
		`SELECT COUNT(*) FROM ads WHERE user_id = $1 AND uses_count >= $2`,
		userID, trendingMinUses)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте горячих объявлений: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.Recent,
		`SELECT COUNT(*) FROM ads WHERE user_id = $1 AND created_at >= $2`,
		userID, recentSince)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте недавних объявлений: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.WeeklyBest,
		`SELECT COUNT(*) FROM ads WHERE user_id = $1 AND created_at >= $2`,
		userID, weeklySince)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте лучших за неделю: %w", err)
	}

	return &stats, nil
}

func (r *AdRepositoryImpl) Delete(ctx context.Context, userID string, adID int64) error {
	query := `DELETE FROM ads WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, adID, userID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении объявления: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
