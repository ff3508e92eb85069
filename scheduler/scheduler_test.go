package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	"github.com/laxmanfhaneendra/savebucks-sub002/models"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/analytics"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/cache"
)

type countingSink struct {
	mu     sync.Mutex
	events int
}

func (s *countingSink) Flush(_ context.Context, events []analytics.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events += len(events)
	return nil
}

func (s *countingSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

func newTestScheduler(sink analytics.EventSink, resultCache *cache.ResultCache, aggregator *analytics.Aggregator) *Scheduler {
	return NewScheduler(resultCache, aggregator, sink,
		config.CacheConfig{MaxEntries: 100, DefaultTTLSeconds: 300, CleanupIntervalSecs: 1},
		config.AnalyticsConfig{FlushIntervalSecs: 1, TopQueries: 10},
	)
}

func TestSchedulerStopDrainsEvents(t *testing.T) {
	resultCache := cache.NewResultCache(config.CacheConfig{MaxEntries: 100, DefaultTTLSeconds: 300})
	aggregator := analytics.NewAggregator(config.AnalyticsConfig{FlushIntervalSecs: 300, TopQueries: 10})
	sink := &countingSink{}

	s := newTestScheduler(sink, resultCache, aggregator)
	s.Start()

	aggregator.RecordSearch("tv", analytics.SourceDatabaseHit, 12, 1)
	aggregator.RecordSearch("laptop", analytics.SourceCacheHit, 2, 1)

	s.Stop()

	assert.Equal(t, 2, sink.total(), "pending events must be drained on shutdown")
	assert.Equal(t, 0, aggregator.Len())

	// Stop must be safe to call again
	s.Stop()
}

func TestSchedulerPeriodicWork(t *testing.T) {
	resultCache := cache.NewResultCache(config.CacheConfig{MaxEntries: 100, DefaultTTLSeconds: 300})
	aggregator := analytics.NewAggregator(config.AnalyticsConfig{FlushIntervalSecs: 300, TopQueries: 10})
	sink := &countingSink{}

	resultCache.Set(&models.QuerySpec{Query: "stale"}, &models.SearchResults{Query: "stale"}, 50*time.Millisecond)
	aggregator.RecordSearch("tv", analytics.SourceDatabaseHit, 12, 1)

	s := newTestScheduler(sink, resultCache, aggregator)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return resultCache.Len() == 0 && sink.total() == 1
	}, 3*time.Second, 50*time.Millisecond, "cleanup and flush ticks must fire")
}
