// Package search composes the result cache, ranking engine and metrics
// aggregator behind one facade consumed by the route layer.
package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/laxmanfhaneendra/savebucks-sub002/errors"
	"github.com/laxmanfhaneendra/savebucks-sub002/metrics"
	"github.com/laxmanfhaneendra/savebucks-sub002/models"
	"github.com/laxmanfhaneendra/savebucks-sub002/pkg/validation"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/analytics"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/cache"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/ranking"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	suggestionTimeframe = "24h"
)

// Fetcher retrieves raw candidate result sets for a query. It is backed
// by the marketplace database and injected as a collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, spec *models.QuerySpec) (models.RawResults, error)
}

// Engine orchestrates a search request: cache lookup, candidate fetch,
// ranking, cache fill and event recording
type Engine struct {
	fetcher   Fetcher
	cache     *cache.ResultCache
	ranker    *ranking.Engine
	analytics *analytics.Aggregator
	metrics   *metrics.SearchMetrics
	validate  *validator.Validate
}

// NewEngine creates a search engine. All collaborators are explicit so
// differently configured instances can coexist (for example per test).
func NewEngine(fetcher Fetcher, resultCache *cache.ResultCache, aggregator *analytics.Aggregator) *Engine {
	return &Engine{
		fetcher:   fetcher,
		cache:     resultCache,
		ranker:    ranking.NewEngine(),
		analytics: aggregator,
		metrics:   metrics.NewSearchMetrics("search"),
		validate:  validator.New(),
	}
}

// Search runs the cache-or-compute path. A cache or analytics failure
// never fails the request; only an invalid spec or a fetcher error does.
func (e *Engine) Search(ctx context.Context, spec *models.QuerySpec) (*models.SearchResults, error) {
	if spec == nil {
		return nil, apperrors.NewValidationError("query spec is required")
	}

	normalized := *spec
	normalizeSpec(&normalized)

	if err := e.validate.Struct(&normalized); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	start := time.Now()

	if cached, found := e.cache.Get(&normalized); found {
		took := time.Since(start)
		cached.Source = analytics.SourceCacheHit
		cached.TookMs = took.Milliseconds()

		e.analytics.RecordSearch(normalized.Query, analytics.SourceCacheHit, durationMs(took), cached.Total)
		e.metrics.RecordCacheHit()
		e.metrics.RecordLatency(analytics.SourceCacheHit, took.Seconds())
		return cached, nil
	}

	raw, err := e.fetcher.Fetch(ctx, &normalized)
	if err != nil {
		slog.Error("candidate fetch failed", "query", normalized.Query, "error", err)
		e.analytics.RecordError(normalized.Query, "fetch_failed", nil)
		e.metrics.RecordError("fetch_failed")
		return nil, apperrors.NewDatabaseError("fetch search candidates", err)
	}

	ranked := e.ranker.Rank(raw, &normalized)
	results := assembleResults(ranked, &normalized)

	e.cache.Set(&normalized, results)

	took := time.Since(start)
	results.TookMs = took.Milliseconds()

	e.analytics.RecordSearch(normalized.Query, analytics.SourceDatabaseHit, durationMs(took), results.Total)
	e.metrics.RecordCacheMiss()
	e.metrics.RecordLatency(analytics.SourceDatabaseHit, took.Seconds())
	return results, nil
}

// GetSuggestions returns up to limit popular queries matching the
// partial input. Popularity comes from the last day of recorded searches.
func (e *Engine) GetSuggestions(partial string, limit int) []string {
	if limit < 1 {
		limit = 5
	}
	partial = validation.NormalizeQuery(partial)

	popular := e.analytics.PopularQueries(suggestionTimeframe, limit*10)
	suggestions := make([]string, 0, limit)
	for _, qc := range popular {
		if partial != "" && !strings.HasPrefix(qc.Query, partial) {
			continue
		}
		suggestions = append(suggestions, qc.Query)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}

// RecordInteraction reports a click on a search result
func (e *Engine) RecordInteraction(targetID, targetType string, properties map[string]string) {
	e.analytics.RecordInteraction(targetID, targetType, properties)
}

// GetAnalytics returns the historical aggregate view for a timeframe
func (e *Engine) GetAnalytics(timeframe string) models.AnalyticsReport {
	return e.analytics.Analytics(timeframe)
}

// GetRealTimeMetrics returns the live snapshot over the last minute
func (e *Engine) GetRealTimeMetrics() models.RealTimeMetrics {
	return e.analytics.RealTimeMetrics()
}

// ClearCache drops all cached results
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// InvalidatePattern removes cached results whose key contains the substring
func (e *Engine) InvalidatePattern(substr string) int {
	return e.cache.InvalidatePattern(substr)
}

// CacheStats reports result cache occupancy and effectiveness
func (e *Engine) CacheStats() models.CacheStats {
	return e.cache.Stats()
}

func normalizeSpec(spec *models.QuerySpec) {
	spec.Query = strings.TrimSpace(spec.Query)
	if spec.Type == "" {
		spec.Type = "all"
	}
	if spec.Sort == "" {
		spec.Sort = "relevance"
	}
	if spec.Page < 1 {
		spec.Page = 1
	}
	if spec.Limit < 1 {
		spec.Limit = defaultLimit
	}
	if spec.Limit > maxLimit {
		spec.Limit = maxLimit
	}
}

func assembleResults(ranked models.RawResults, spec *models.QuerySpec) *models.SearchResults {
	total := len(ranked.Deals) + len(ranked.Coupons) + len(ranked.Users) +
		len(ranked.Companies) + len(ranked.Categories)

	return &models.SearchResults{
		Query:      spec.Query,
		Deals:      pageOf(ranked.Deals, spec.Page, spec.Limit),
		Coupons:    pageOf(ranked.Coupons, spec.Page, spec.Limit),
		Users:      pageOf(ranked.Users, spec.Page, spec.Limit),
		Companies:  pageOf(ranked.Companies, spec.Page, spec.Limit),
		Categories: pageOf(ranked.Categories, spec.Page, spec.Limit),
		Total:      total,
		Page:       spec.Page,
		Limit:      spec.Limit,
		Source:     analytics.SourceDatabaseHit,
	}
}

func pageOf[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func durationMs(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
