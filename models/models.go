// Package models defines data structures used throughout the application
package models

import (
	"time"

	"gorm.io/gorm"
)

// Deal represents a user-submitted offer in the marketplace
type Deal struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Title         string         `json:"title" gorm:"index;not null"`
	Description   string         `json:"description"`
	Tags          []string       `json:"tags" gorm:"serializer:json"`
	Category      string         `json:"category" gorm:"index"`
	Company       string         `json:"company" gorm:"index"`
	Price         float64        `json:"price"`
	OriginalPrice float64        `json:"original_price"`
	HasCoupon     bool           `json:"has_coupon"`
	CouponCode    string         `json:"coupon_code,omitempty"`
	Featured      bool           `json:"featured"`
	Views         int64          `json:"views"`
	Clicks        int64          `json:"clicks"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// DiscountPercent returns the percentage saved against the original price
func (d Deal) DiscountPercent() float64 {
	if d.OriginalPrice <= 0 || d.Price >= d.OriginalPrice {
		return 0
	}
	return (d.OriginalPrice - d.Price) / d.OriginalPrice * 100
}

// Coupon represents a redeemable discount code
type Coupon struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Title         string         `json:"title" gorm:"index;not null"`
	Description   string         `json:"description"`
	Code          string         `json:"code" gorm:"index;not null"`
	Company       string         `json:"company" gorm:"index"`
	Category      string         `json:"category" gorm:"index"`
	DiscountType  string         `json:"discount_type"` // "percent" or "fixed"
	DiscountValue float64        `json:"discount_value"`
	Featured      bool           `json:"featured"`
	Views         int64          `json:"views"`
	Clicks        int64          `json:"clicks"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserProfile represents the public view of a marketplace user
type UserProfile struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Username    string         `json:"username" gorm:"uniqueIndex;not null"`
	DisplayName string         `json:"display_name"`
	Bio         string         `json:"bio"`
	Karma       int64          `json:"karma"`
	Views       int64          `json:"views"`
	Clicks      int64          `json:"clicks"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Company represents a merchant whose offers appear in the marketplace
type Company struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"index;not null"`
	Description string         `json:"description"`
	Website     string         `json:"website"`
	Verified    bool           `json:"verified"`
	Views       int64          `json:"views"`
	Clicks      int64          `json:"clicks"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Category represents a browsing category for deals and coupons
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"index;not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null"`
	Description string         `json:"description"`
	Views       int64          `json:"views"`
	Clicks      int64          `json:"clicks"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// QuerySpec describes one search request. Multi-valued filters are
// normalized (sorted) before cache key derivation so logically equivalent
// requests collide to the same key.
type QuerySpec struct {
	Query       string   `form:"q" json:"query"`
	Type        string   `form:"type" json:"type" validate:"omitempty,oneof=all deal coupon user company category"`
	Categories  []string `form:"categories" json:"categories,omitempty"`
	Companies   []string `form:"companies" json:"companies,omitempty"`
	Tags        []string `form:"tags" json:"tags,omitempty"`
	MinPrice    *float64 `form:"min_price" json:"min_price,omitempty" validate:"omitempty,gte=0"`
	MaxPrice    *float64 `form:"max_price" json:"max_price,omitempty" validate:"omitempty,gte=0"`
	MinDiscount *float64 `form:"min_discount" json:"min_discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	HasCoupon   *bool    `form:"has_coupon" json:"has_coupon,omitempty"`
	Sort        string   `form:"sort" json:"sort" validate:"omitempty,oneof=relevance newest oldest popular price_low price_high discount"`
	Page        int      `form:"page" json:"page" validate:"omitempty,min=1"`
	Limit       int      `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

// RawResults holds unranked candidate sets fetched by a collaborator
type RawResults struct {
	Deals      []Deal        `json:"deals"`
	Coupons    []Coupon      `json:"coupons"`
	Users      []UserProfile `json:"users"`
	Companies  []Company     `json:"companies"`
	Categories []Category    `json:"categories"`
}

// SearchResults is the ranked payload returned to the route layer and
// memoized by the result cache
type SearchResults struct {
	Query      string        `json:"query"`
	Deals      []Deal        `json:"deals,omitempty"`
	Coupons    []Coupon      `json:"coupons,omitempty"`
	Users      []UserProfile `json:"users,omitempty"`
	Companies  []Company     `json:"companies,omitempty"`
	Categories []Category    `json:"categories,omitempty"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TookMs     int64         `json:"took_ms"`
	Source     string        `json:"source"` // "cache_hit" or "database_hit"
}

// CacheStats reports result cache occupancy and effectiveness
type CacheStats struct {
	Entries       int     `json:"entries"`
	Expired       int     `json:"expired"`
	TotalBytes    int64   `json:"total_bytes"`
	AvgEntryBytes float64 `json:"avg_entry_bytes"`
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	HitRate       float64 `json:"hit_rate"`
	Evictions     int64   `json:"evictions"`
}

// QueryCount is one entry in the popular-queries ranking
type QueryCount struct {
	Query      string  `json:"query"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SlowSearch identifies the slowest search in a timeframe
type SlowSearch struct {
	Query          string  `json:"query"`
	ResponseTimeMs float64 `json:"response_time_ms"`
}

// PerformanceMetrics summarizes response time distribution for a timeframe
type PerformanceMetrics struct {
	AvgResponseTimeMs float64     `json:"avg_response_time_ms"`
	MedianMs          float64     `json:"median_ms"`
	P95Ms             float64     `json:"p95_ms"`
	P99Ms             float64     `json:"p99_ms"`
	Slowest           *SlowSearch `json:"slowest,omitempty"`
}

// ErrorCount is one entry in the error breakdown
type ErrorCount struct {
	Code       string  `json:"code"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ErrorMetrics summarizes recorded errors for a timeframe
type ErrorMetrics struct {
	TotalErrors int          `json:"total_errors"`
	Breakdown   []ErrorCount `json:"breakdown"`
}

// ConversionMetrics relates interactions to searches
type ConversionMetrics struct {
	TotalInteractions int            `json:"total_interactions"`
	ClickThroughRate  float64        `json:"click_through_rate"`
	ByType            map[string]int `json:"by_type"`
}

// AnalyticsReport is the historical aggregate view for one timeframe
type AnalyticsReport struct {
	Timeframe         string             `json:"timeframe"`
	TotalSearches     int                `json:"total_searches"`
	UniqueQueries     int                `json:"unique_queries"`
	AvgResponseTimeMs float64            `json:"avg_response_time_ms"`
	CacheHitRate      float64            `json:"cache_hit_rate"`
	PopularQueries    []QueryCount       `json:"popular_queries"`
	Performance       PerformanceMetrics `json:"performance"`
	Errors            ErrorMetrics       `json:"errors"`
	Conversion        ConversionMetrics  `json:"conversion"`
}

// InteractionRequest reports a user acting on a search result
type InteractionRequest struct {
	TargetID   string            `json:"target_id" binding:"required"`
	TargetType string            `json:"target_type" binding:"required"`
	Properties map[string]string `json:"properties,omitempty"`
}

// InvalidateRequest names the key substring to evict from the result cache
type InvalidateRequest struct {
	Pattern string `json:"pattern" binding:"required"`
}

// ErrorResponse represents an error message returned to the client
type ErrorResponse struct {
	Error string `json:"error"`
}

// RealTimeMetrics is the live snapshot over the last minute
type RealTimeMetrics struct {
	SearchesPerMinute     int       `json:"searches_per_minute"`
	ErrorsPerMinute       int       `json:"errors_per_minute"`
	InteractionsPerMinute int       `json:"interactions_per_minute"`
	LoadLevel             string    `json:"load_level"` // "low", "medium" or "high"
	Timestamp             time.Time `json:"timestamp"`
}
