package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type SearchMetricsCollector struct {
	Searches  *prometheus.CounterVec
	CacheHits *prometheus.CounterVec
	CacheMiss *prometheus.CounterVec
	Errors    *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
	HitRatio  *prometheus.GaugeVec
}

var (
	globalCollector *SearchMetricsCollector
	collectorOnce   sync.Once
)

func getCollector() *SearchMetricsCollector {
	collectorOnce.Do(func() {
		globalCollector = &SearchMetricsCollector{
			Searches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "savebucks_searches_total",
					Help: "The total number of search requests by result source",
				},
				[]string{"engine", "source"},
			),
			CacheHits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "savebucks_search_cache_hits_total",
					Help: "The total number of result cache hits",
				},
				[]string{"engine"},
			),
			CacheMiss: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "savebucks_search_cache_misses_total",
					Help: "The total number of result cache misses",
				},
				[]string{"engine"},
			),
			Errors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "savebucks_search_errors_total",
					Help: "The total number of failed search requests",
				},
				[]string{"engine", "code"},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "savebucks_search_duration_seconds",
					Help:    "Search request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"engine", "source"},
			),
			HitRatio: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "savebucks_search_cache_hit_ratio",
					Help: "Result cache hit ratio (hits/total requests)",
				},
				[]string{"engine"},
			),
		}
	})
	return globalCollector
}

// SearchMetrics tracks search activity for one engine instance and
// mirrors it into the process-wide Prometheus collector
type SearchMetrics struct {
	engine    string
	hits      int64
	misses    int64
	total     int64
	collector *SearchMetricsCollector
	mu        sync.RWMutex
}

func NewSearchMetrics(engine string) *SearchMetrics {
	return &SearchMetrics{
		engine:    engine,
		collector: getCollector(),
	}
}

func (m *SearchMetrics) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.total++
	m.collector.CacheHits.WithLabelValues(m.engine).Inc()
	m.collector.Searches.WithLabelValues(m.engine, "cache_hit").Inc()
	m.updateHitRatio()
}

func (m *SearchMetrics) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.total++
	m.collector.CacheMiss.WithLabelValues(m.engine).Inc()
	m.collector.Searches.WithLabelValues(m.engine, "database_hit").Inc()
	m.updateHitRatio()
}

func (m *SearchMetrics) RecordError(code string) {
	m.collector.Errors.WithLabelValues(m.engine, code).Inc()
}

func (m *SearchMetrics) RecordLatency(source string, seconds float64) {
	m.collector.Latency.WithLabelValues(m.engine, source).Observe(seconds)
}

// updateHitRatio updates the Prometheus hit ratio gauge.
// Must be called while holding the mutex.
func (m *SearchMetrics) updateHitRatio() {
	if m.total > 0 {
		ratio := float64(m.hits) / float64(m.total)
		m.collector.HitRatio.WithLabelValues(m.engine).Set(ratio)
	}
}

func (m *SearchMetrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hitRatio float64
	if m.total > 0 {
		hitRatio = float64(m.hits) / float64(m.total)
	}

	return map[string]interface{}{
		"engine":    m.engine,
		"hits":      m.hits,
		"misses":    m.misses,
		"total":     m.total,
		"hit_ratio": hitRatio,
	}
}
