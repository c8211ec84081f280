package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adColumns = []string{
	"id", "user_id", "library_id", "title", "advertiser_name", "description",
	"page_name", "page_photo_url", "video_url", "thumbnail_url", "media_type",
	"uses_count", "start_date", "end_date", "is_active", "is_favorite",
	"category", "country", "language", "platform", "targeting_info",
	"performance_data", "extracted_at", "page_url", "ad_url", "created_at",
	"updated_at",
}

func adRow(rows *sqlmock.Rows, id int64, libraryID string, usesCount int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, "user-1", libraryID, "Заголовок", "Рекламодатель", nil,
		nil, nil, nil, nil, "image",
		usesCount, nil, nil, true, false,
		"Social Media", "BR", "pt", "facebook", nil,
		nil, nil, nil, nil, now,
		now,
	)
}

func intPtr(v int) *int { return &v }

func TestAdRepository_Upsert(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewAdRepository(sqlxDB)

	ctx := context.Background()

	params := UpsertAdParams{
		UserID:         "user-1",
		LibraryID:      "FB_100",
		Title:          "Заголовок",
		AdvertiserName: "Рекламодатель",
		UsesCount:      intPtr(5),
	}

	expectUpsert := func(id int64, wasUpdated bool, usesCount interface{}) {
		mock.ExpectQuery(upsertAdQuery).
			WithArgs(
				"user-1", "FB_100", "Заголовок", "Рекламодатель",
				nil, nil, nil, nil, nil, nil, usesCount, nil, nil, nil,
				nil, nil, nil, nil, nil, nil, nil, nil, nil,
			).
			WillReturnRows(sqlmock.NewRows([]string{"id", "was_updated"}).AddRow(id, wasUpdated))
	}

	t.Run("Первый приём создает строку", func(t *testing.T) {
		expectUpsert(10, false, 5)

		result, err := repo.Upsert(ctx, params)

		require.NoError(t, err)
		assert.Equal(t, int64(10), result.AdID)
		assert.False(t, result.WasUpdated)
	})

	t.Run("Повторный приём того же library_id обновляет строку", func(t *testing.T) {
		params.UsesCount = intPtr(12)
		expectUpsert(10, true, 12)

		result, err := repo.Upsert(ctx, params)

		require.NoError(t, err)
		assert.Equal(t, int64(10), result.AdID)
		assert.True(t, result.WasUpdated)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdRepository_ToggleFavorite(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewAdRepository(sqlxDB)

	ctx := context.Background()
	query := `
		UPDATE ads
		SET is_favorite = NOT is_favorite, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND library_id = $2
		RETURNING is_favorite
	`

	t.Run("Первый вызов включает избранное", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("user-1", "FB_100").
			WillReturnRows(sqlmock.NewRows([]string{"is_favorite"}).AddRow(true))

		isFavorite, err := repo.ToggleFavorite(ctx, "user-1", "FB_100")

		require.NoError(t, err)
		assert.True(t, isFavorite)
	})

	t.Run("Второй вызов выключает избранное", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("user-1", "FB_100").
			WillReturnRows(sqlmock.NewRows([]string{"is_favorite"}).AddRow(false))

		isFavorite, err := repo.ToggleFavorite(ctx, "user-1", "FB_100")

		require.NoError(t, err)
		assert.False(t, isFavorite)
	})

	t.Run("Чужое объявление недоступно для переключения", func(t *testing.T) {
		// лукап ограничен (user_id, library_id), а не одним library_id
		mock.ExpectQuery(query).
			WithArgs("user-2", "FB_100").
			WillReturnRows(sqlmock.NewRows([]string{"is_favorite"}))

		_, err := repo.ToggleFavorite(ctx, "user-2", "FB_100")

		assert.True(t, errors.Is(err, ErrNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdRepository_List(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewAdRepository(sqlxDB)

	ctx := context.Background()
	now := time.Now()

	baseQuery := func() ListAdsQuery {
		return ListAdsQuery{
			UserID:          "user-1",
			TrendingMinUses: 50,
			RecentSince:     now.AddDate(0, 0, -5),
			WeeklySince:     now.AddDate(0, 0, -7),
			Limit:           28,
			Offset:          0,
		}
	}

	t.Run("Без фильтров - сортировка по дате", func(t *testing.T) {
		mock.ExpectQuery(`SELECT * FROM ads WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`).
			WithArgs("user-1", 28, 0).
			WillReturnRows(adRow(sqlmock.NewRows(adColumns), 1, "FB_100", 5))

		ads, err := repo.List(ctx, baseQuery())

		require.NoError(t, err)
		require.Len(t, ads, 1)
		assert.Equal(t, "FB_100", ads[0].LibraryID)
	})

	t.Run("Trending - порог и сортировка по популярности", func(t *testing.T) {
		q := baseQuery()
		q.QuickFilter = "trending"

		mock.ExpectQuery(`SELECT * FROM ads WHERE user_id = $1 AND uses_count >= $2 ORDER BY uses_count DESC, created_at DESC LIMIT $3 OFFSET $4`).
			WithArgs("user-1", 50, 28, 0).
			WillReturnRows(adRow(sqlmock.NewRows(adColumns), 2, "FB_200", 80))

		ads, err := repo.List(ctx, q)

		require.NoError(t, err)
		require.Len(t, ads, 1)
		assert.Equal(t, 80, ads[0].UsesCount)
	})

	t.Run("Weekly не включает предикат trending", func(t *testing.T) {
		// квик-фильтры взаимоисключающие: применяется только окно недели
		q := baseQuery()
		q.QuickFilter = "weekly"

		mock.ExpectQuery(`SELECT * FROM ads WHERE user_id = $1 AND created_at >= $2 ORDER BY uses_count DESC, created_at DESC LIMIT $3 OFFSET $4`).
			WithArgs("user-1", q.WeeklySince, 28, 0).
			WillReturnRows(sqlmock.NewRows(adColumns))

		ads, err := repo.List(ctx, q)

		require.NoError(t, err)
		assert.Empty(t, ads)
	})

	t.Run("Favorites ограничен пользователем и флагом", func(t *testing.T) {
		q := baseQuery()
		q.QuickFilter = "favorites"

		mock.ExpectQuery(`SELECT * FROM ads WHERE user_id = $1 AND is_favorite = TRUE ORDER BY created_at DESC LIMIT $2 OFFSET $3`).
			WithArgs("user-1", 28, 0).
			WillReturnRows(sqlmock.NewRows(adColumns))

		_, err := repo.List(ctx, q)

		require.NoError(t, err)
	})

	t.Run("Комбинация продвинутых фильтров", func(t *testing.T) {
		q := baseQuery()
		q.QuickFilter = "trending"
		q.Language = "pt"
		q.Platform = "facebook"
		q.MinUses = 10

		mock.ExpectQuery(`SELECT * FROM ads WHERE user_id = $1 AND uses_count >= $2 AND language = $3 AND platform = $4 AND uses_count >= $5 ORDER BY uses_count DESC, created_at DESC LIMIT $6 OFFSET $7`).
			WithArgs("user-1", 50, "pt", "facebook", 10, 28, 0).
			WillReturnRows(sqlmock.NewRows(adColumns))

		_, err := repo.List(ctx, q)

		require.NoError(t, err)
	})

	t.Run("Поиск по подстроке", func(t *testing.T) {
		q := baseQuery()
		q.Search = "кроссовки"

		mock.ExpectQuery(`SELECT * FROM ads WHERE user_id = $1 AND (title ILIKE $2 OR advertiser_name ILIKE $2 OR description ILIKE $2) ORDER BY created_at DESC LIMIT $3 OFFSET $4`).
			WithArgs("user-1", "%кроссовки%", 28, 0).
			WillReturnRows(sqlmock.NewRows(adColumns))

		_, err := repo.List(ctx, q)

		require.NoError(t, err)
	})

	t.Run("Страница за пределами выборки - пустой список без ошибки", func(t *testing.T) {
		q := baseQuery()
		q.Offset = 280

		mock.ExpectQuery(`SELECT * FROM ads WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`).
			WithArgs("user-1", 28, 280).
			WillReturnRows(sqlmock.NewRows(adColumns))

		ads, err := repo.List(ctx, q)

		require.NoError(t, err)
		assert.NotNil(t, ads)
		assert.Empty(t, ads)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdRepository_Count(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewAdRepository(sqlxDB)

	ctx := context.Background()

	q := ListAdsQuery{
		UserID:  "user-1",
		MinUses: 10,
	}

	mock.ExpectQuery(`SELECT COUNT(*) FROM ads WHERE user_id = $1 AND uses_count >= $2`).
		WithArgs("user-1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(ctx, q)

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdRepository_Stats(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewAdRepository(sqlxDB)

	ctx := context.Background()
	now := time.Now()
	recentSince := now.AddDate(0, 0, -5)
	weeklySince := now.AddDate(0, 0, -7)

	mock.ExpectQuery(`SELECT COUNT(*) FROM ads WHERE user_id = $1 AND uses_count >= $2`).
		WithArgs("user-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT(*) FROM ads WHERE user_id = $1 AND created_at >= $2`).
		WithArgs("user-1", recentSince).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT COUNT(*) FROM ads WHERE user_id = $1 AND created_at >= $2`).
		WithArgs("user-1", weeklySince).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	stats, err := repo.Stats(ctx, "user-1", 50, recentSince, weeklySince)

	require.NoError(t, err)
	assert.Equal(t, 4, stats.Trending)
	assert.Equal(t, 7, stats.Recent)
	assert.Equal(t, 9, stats.WeeklyBest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdRepository_Delete(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewAdRepository(sqlxDB)

	ctx := context.Background()

	t.Run("Успешное удаление", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM ads WHERE id = $1 AND user_id = $2`).
			WithArgs(int64(10), "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(ctx, "user-1", 10)

		assert.NoError(t, err)
	})

	t.Run("Чужое объявление не удаляется", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM ads WHERE id = $1 AND user_id = $2`).
			WithArgs(int64(10), "user-2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, "user-2", 10)

		assert.True(t, errors.Is(err, ErrNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
