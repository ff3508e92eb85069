// Package scheduler implements background maintenance for the search
// subsystem: periodic cache cleanup and analytics draining
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/analytics"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/cache"
)

// Scheduler runs the cleanup and flush tickers. Both loops share the
// component locks with foreground operations and stop deterministically
// on Stop, so tests and shutdown never leak goroutines.
type Scheduler struct {
	cache      *cache.ResultCache
	aggregator *analytics.Aggregator
	sink       analytics.EventSink

	cleanupInterval time.Duration
	flushInterval   time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates and configures the background maintenance loops
func NewScheduler(
	resultCache *cache.ResultCache,
	aggregator *analytics.Aggregator,
	sink analytics.EventSink,
	cacheCfg config.CacheConfig,
	analyticsCfg config.AnalyticsConfig,
) *Scheduler {
	return &Scheduler{
		cache:           resultCache,
		aggregator:      aggregator,
		sink:            sink,
		cleanupInterval: cacheCfg.CleanupInterval(),
		flushInterval:   analyticsCfg.FlushInterval(),
		stopCh:          make(chan struct{}),
	}
}

// Start begins the scheduler's operations
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.runInterval(s.cleanupInterval, s.cleanupCache)
	go s.runInterval(s.flushInterval, s.flushEvents)
}

// Stop cancels both tickers, waits for them to exit and drains any
// remaining buffered events
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		s.flushEvents()
	})
}

func (s *Scheduler) runInterval(interval time.Duration, job func()) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			job()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) cleanupCache() {
	if evicted := s.cache.Cleanup(); evicted > 0 {
		slog.Debug("cache cleanup pass", "evicted", evicted)
	}
}

func (s *Scheduler) flushEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.aggregator.Flush(ctx, s.sink); err != nil {
		slog.Error("analytics flush failed", "error", err)
	}
}
