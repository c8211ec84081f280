package models

import (
	"time"
)

type Profile struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type UserToken struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Ad struct {
	ID              int64      `json:"id" db:"id"`
	UserID          *string    `json:"userId" db:"user_id"`
	LibraryID       string     `json:"library_id" db:"library_id"`
	Title           string     `json:"title" db:"title"`
	AdvertiserName  string     `json:"advertiser_name" db:"advertiser_name"`
	Description     *string    `json:"description" db:"description"`
	PageName        *string    `json:"page_name" db:"page_name"`
	PagePhotoURL    *string    `json:"page_photo_url" db:"page_photo_url"`
	VideoURL        *string    `json:"video_url" db:"video_url"`
	ThumbnailURL    *string    `json:"thumbnail_url" db:"thumbnail_url"`
	MediaType       string     `json:"media_type" db:"media_type"`
	UsesCount       int        `json:"uses_count" db:"uses_count"`
	StartDate       *string    `json:"start_date" db:"start_date"`
	EndDate         *string    `json:"end_date" db:"end_date"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	IsFavorite      bool       `json:"is_favorite" db:"is_favorite"`
	Category        string     `json:"category" db:"category"`
	Country         string     `json:"country" db:"country"`
	Language        string     `json:"language" db:"language"`
	Platform        string     `json:"platform" db:"platform"`
	TargetingInfo   *string    `json:"targeting_info" db:"targeting_info"`
	PerformanceData *string    `json:"performance_data" db:"performance_data"`
	ExtractedAt     *time.Time `json:"extracted_at" db:"extracted_at"`
	PageURL         *string    `json:"page_url" db:"page_url"`
	AdURL           *string    `json:"ad_url" db:"ad_url"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// AdStats - счётчики для бейджей панели (горячие/недавние/лучшие за неделю)
type AdStats struct {
	Trending   int `json:"trending"`
	Recent     int `json:"recent"`
	WeeklyBest int `json:"weeklyBest"`
}

// Quick filter names accepted by the listing engine.
const (
	FilterNone      = ""
	FilterTrending  = "trending"
	FilterWeekly    = "weekly"
	FilterRecent    = "recent"
	FilterFavorites = "favorites"
)

// AdFilters - неизменяемое состояние фильтров листинга.
// Любое изменение создаёт новое значение через Merge, страница сбрасывается на 1.
type AdFilters struct {
	QuickFilter string `json:"quickFilter"`
	Search      string `json:"search"`
	Category    string `json:"category"`
	MinUses     int    `json:"minUses"`
	Language    string `json:"language"`
	MediaType   string `json:"mediaType"`
	Platform    string `json:"platform"`
	Page        int    `json:"page"`
}

// AdFiltersPatch - частичное изменение фильтров; nil-поля не трогаются.
type AdFiltersPatch struct {
	QuickFilter *string
	Search      *string
	Category    *string
	MinUses     *int
	Language    *string
	MediaType   *string
	Platform    *string
}

// Merge returns a new filter state with the patch applied.
// Changing any predicate resets pagination to the first page.
func (f AdFilters) Merge(patch AdFiltersPatch) AdFilters {
	next := f

	if patch.QuickFilter != nil {
		// повторный выбор того же квик-фильтра снимает его
		if *patch.QuickFilter == next.QuickFilter {
			next.QuickFilter = FilterNone
		} else {
			next.QuickFilter = *patch.QuickFilter
		}
	}
	if patch.Search != nil {
		next.Search = *patch.Search
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.MinUses != nil {
		next.MinUses = *patch.MinUses
	}
	if patch.Language != nil {
		next.Language = *patch.Language
	}
	if patch.MediaType != nil {
		next.MediaType = *patch.MediaType
	}
	if patch.Platform != nil {
		next.Platform = *patch.Platform
	}

	if next != f {
		next.Page = 1
	}

	return next
}

// WithPage returns a copy pointing at another page, filters untouched.
func (f AdFilters) WithPage(page int) AdFilters {
	if page < 1 {
		page = 1
	}
	f.Page = page
	return f
}
