// Package analytics implements the search metrics aggregator: event
// recording, a sliding real-time window, timeframe aggregates with
// nearest-rank percentiles, and periodic draining to an event sink.
package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	"github.com/laxmanfhaneendra/savebucks-sub002/models"
	"github.com/laxmanfhaneendra/savebucks-sub002/pkg/validation"
)

const (
	// realTimeWindow bounds the rolling bucket trimmed on every write
	realTimeWindow = 5 * time.Minute
	// liveWindow is the slice of the bucket reported per minute
	liveWindow = time.Minute

	loadHighThreshold   = 100
	loadMediumThreshold = 50
)

// Aggregator records search, error and interaction events and serves
// both live and historical aggregate views. Safe for concurrent use.
type Aggregator struct {
	mu         sync.Mutex
	events     []Event
	realtime   []Event
	topQueries int
}

// NewAggregator creates an aggregator
func NewAggregator(cfg config.AnalyticsConfig) *Aggregator {
	top := cfg.TopQueries
	if top < 1 {
		top = 10
	}
	return &Aggregator{topQueries: top}
}

// RecordSearch records one search with its source tag and response time
func (a *Aggregator) RecordSearch(query, source string, responseTimeMs float64, resultCount int) {
	now := time.Now()
	a.record(Event{
		Key:            eventKey(now),
		Type:           EventSearch,
		Timestamp:      now,
		Query:          query,
		Source:         source,
		ResponseTimeMs: responseTimeMs,
		ResultCount:    resultCount,
	})
}

// RecordError records one failed search with an error code
func (a *Aggregator) RecordError(query, code string, properties map[string]string) {
	now := time.Now()
	a.record(Event{
		Key:        eventKey(now),
		Type:       EventError,
		Timestamp:  now,
		Query:      query,
		ErrorCode:  code,
		Properties: properties,
	})
}

// RecordInteraction records a click on a search result
func (a *Aggregator) RecordInteraction(targetID, targetType string, properties map[string]string) {
	now := time.Now()
	a.record(Event{
		Key:        eventKey(now),
		Type:       EventInteraction,
		Timestamp:  now,
		TargetID:   targetID,
		TargetType: targetType,
		Properties: properties,
	})
}

func (a *Aggregator) record(e Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.events = append(a.events, e)

	// Trim the rolling bucket on every write so it never outgrows the window
	a.realtime = append(a.realtime, e)
	cutoff := e.Timestamp.Add(-realTimeWindow)
	trimmed := a.realtime
	for len(trimmed) > 0 && trimmed[0].Timestamp.Before(cutoff) {
		trimmed = trimmed[1:]
	}
	a.realtime = trimmed
}

// RealTimeMetrics reports per-minute counts over the last 60 seconds and
// classifies load by the searches-per-minute thresholds
func (a *Aggregator) RealTimeMetrics() models.RealTimeMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-liveWindow)

	m := models.RealTimeMetrics{Timestamp: now, LoadLevel: "low"}
	for _, e := range a.realtime {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		switch e.Type {
		case EventSearch:
			m.SearchesPerMinute++
		case EventError:
			m.ErrorsPerMinute++
		case EventInteraction:
			m.InteractionsPerMinute++
		}
	}

	if m.SearchesPerMinute > loadHighThreshold {
		m.LoadLevel = "high"
	} else if m.SearchesPerMinute > loadMediumThreshold {
		m.LoadLevel = "medium"
	}
	return m
}

// Analytics computes the historical aggregate view for a relative
// timeframe token (1h, 24h, 7d, 30d; default 24h). Any computation
// failure degrades to an empty report so dashboards never crash.
func (a *Aggregator) Analytics(timeframe string) (report models.AnalyticsReport) {
	report = models.AnalyticsReport{
		Timeframe:  normalizeTimeframe(timeframe),
		Conversion: models.ConversionMetrics{ByType: map[string]int{}},
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("analytics computation failed, returning empty report", "timeframe", timeframe, "panic", r)
			report = models.AnalyticsReport{
				Timeframe:  normalizeTimeframe(timeframe),
				Conversion: models.ConversionMetrics{ByType: map[string]int{}},
			}
		}
	}()

	events := a.eventsSince(time.Now().Add(-timeframeDuration(timeframe)))

	var searches, errorEvents, interactions []Event
	for _, e := range events {
		switch e.Type {
		case EventSearch:
			searches = append(searches, e)
		case EventError:
			errorEvents = append(errorEvents, e)
		case EventInteraction:
			interactions = append(interactions, e)
		}
	}

	report.TotalSearches = len(searches)
	report.PopularQueries = popularQueries(searches, len(searches), a.topQueries)
	report.UniqueQueries = uniqueQueryCount(searches)
	report.CacheHitRate = cacheHitRate(searches)
	report.Performance = performanceMetrics(searches)
	report.AvgResponseTimeMs = report.Performance.AvgResponseTimeMs
	report.Errors = errorBreakdown(errorEvents)
	report.Conversion = conversionMetrics(searches, interactions)
	return report
}

// PopularQueries returns the most frequent normalized queries in a
// timeframe; it backs the suggestion endpoint
func (a *Aggregator) PopularQueries(timeframe string, limit int) []models.QueryCount {
	events := a.eventsSince(time.Now().Add(-timeframeDuration(timeframe)))

	var searches []Event
	for _, e := range events {
		if e.Type == EventSearch {
			searches = append(searches, e)
		}
	}
	return popularQueries(searches, len(searches), limit)
}

// Flush drains the buffered events to the sink. The buffer is copied and
// truncated under the lock, then delivered outside it, so events recorded
// mid-flush are kept for the next pass and never lost.
func (a *Aggregator) Flush(ctx context.Context, sink EventSink) (int, error) {
	a.mu.Lock()
	batch := a.events
	a.events = nil
	a.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}

	if err := sink.Flush(ctx, batch); err != nil {
		slog.Error("event sink flush failed, dropping batch", "events", len(batch), "error", err)
		return 0, err
	}
	return len(batch), nil
}

// Len returns the number of buffered (not yet flushed) events
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.events)
}

func (a *Aggregator) eventsSince(start time.Time) []Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Event, 0, len(a.events))
	for _, e := range a.events {
		if !e.Timestamp.Before(start) {
			out = append(out, e)
		}
	}
	return out
}

func normalizeTimeframe(timeframe string) string {
	if validation.IsValidTimeframe(timeframe) {
		return timeframe
	}
	return "24h"
}

func timeframeDuration(timeframe string) time.Duration {
	switch timeframe {
	case "1h":
		return time.Hour
	case "7d":
		return 7 * 24 * time.Hour
	case "30d":
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func uniqueQueryCount(searches []Event) int {
	seen := map[string]bool{}
	for _, e := range searches {
		seen[validation.NormalizeQuery(e.Query)] = true
	}
	return len(seen)
}

func cacheHitRate(searches []Event) float64 {
	if len(searches) == 0 {
		return 0
	}
	hits := 0
	for _, e := range searches {
		if e.Source == SourceCacheHit {
			hits++
		}
	}
	return float64(hits) / float64(len(searches))
}

func popularQueries(searches []Event, total, limit int) []models.QueryCount {
	if total == 0 || limit < 1 {
		return nil
	}

	counts := map[string]int{}
	for _, e := range searches {
		q := validation.NormalizeQuery(e.Query)
		if q != "" {
			counts[q]++
		}
	}

	ranked := make([]models.QueryCount, 0, len(counts))
	for q, n := range counts {
		ranked = append(ranked, models.QueryCount{
			Query:      q,
			Count:      n,
			Percentage: float64(n) / float64(total) * 100,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Query < ranked[j].Query
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func performanceMetrics(searches []Event) models.PerformanceMetrics {
	var m models.PerformanceMetrics
	if len(searches) == 0 {
		return m
	}

	times := make([]float64, 0, len(searches))
	sum := 0.0
	var slowest *models.SlowSearch
	for _, e := range searches {
		times = append(times, e.ResponseTimeMs)
		sum += e.ResponseTimeMs
		if slowest == nil || e.ResponseTimeMs > slowest.ResponseTimeMs {
			slowest = &models.SlowSearch{Query: e.Query, ResponseTimeMs: e.ResponseTimeMs}
		}
	}
	sort.Float64s(times)

	m.AvgResponseTimeMs = sum / float64(len(times))
	m.MedianMs = percentile(times, 50)
	m.P95Ms = percentile(times, 95)
	m.P99Ms = percentile(times, 99)
	m.Slowest = slowest
	return m
}

// percentile selects by nearest rank on an ascending-sorted sample
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

func errorBreakdown(errorEvents []Event) models.ErrorMetrics {
	m := models.ErrorMetrics{TotalErrors: len(errorEvents)}
	if len(errorEvents) == 0 {
		return m
	}

	counts := map[string]int{}
	for _, e := range errorEvents {
		code := e.ErrorCode
		if code == "" {
			code = "unknown"
		}
		counts[code]++
	}
	for code, n := range counts {
		m.Breakdown = append(m.Breakdown, models.ErrorCount{
			Code:       code,
			Count:      n,
			Percentage: float64(n) / float64(len(errorEvents)) * 100,
		})
	}
	sort.Slice(m.Breakdown, func(i, j int) bool {
		if m.Breakdown[i].Count != m.Breakdown[j].Count {
			return m.Breakdown[i].Count > m.Breakdown[j].Count
		}
		return m.Breakdown[i].Code < m.Breakdown[j].Code
	})
	return m
}

func conversionMetrics(searches, interactions []Event) models.ConversionMetrics {
	m := models.ConversionMetrics{
		TotalInteractions: len(interactions),
		ByType:            map[string]int{},
	}
	for _, e := range interactions {
		t := e.TargetType
		if t == "" {
			t = "unknown"
		}
		m.ByType[t]++
	}
	if len(searches) > 0 {
		m.ClickThroughRate = float64(len(interactions)) / float64(len(searches))
	}
	return m
}
