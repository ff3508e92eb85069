package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	"github.com/laxmanfhaneendra/savebucks-sub002/models"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/analytics"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/cache"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, spec *models.QuerySpec) (models.RawResults, error) {
	args := m.Called(ctx, spec)
	return args.Get(0).(models.RawResults), args.Error(1)
}

var _ Fetcher = (*mockFetcher)(nil)

func newTestEngine(fetcher Fetcher) *Engine {
	resultCache := cache.NewResultCache(config.CacheConfig{
		MaxEntries:        100,
		DefaultTTLSeconds: 300,
	})
	aggregator := analytics.NewAggregator(config.AnalyticsConfig{FlushIntervalSecs: 300, TopQueries: 10})
	return NewEngine(fetcher, resultCache, aggregator)
}

func nikeResults() models.RawResults {
	now := time.Now()
	return models.RawResults{
		Deals: []models.Deal{
			{ID: 2, Title: "Running Shoes by Nike", Views: 100, Clicks: 10, CreatedAt: now},
			{ID: 1, Title: "Nike Air Max", Views: 100, Clicks: 10, CreatedAt: now},
		},
	}
}

func TestEngineSearch(t *testing.T) {
	t.Run("miss then hit", func(t *testing.T) {
		fetcher := new(mockFetcher)
		engine := newTestEngine(fetcher)

		fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nikeResults(), nil).Once()

		first, err := engine.Search(context.Background(), &models.QuerySpec{Query: "nike"})
		require.NoError(t, err)
		assert.Equal(t, analytics.SourceDatabaseHit, first.Source)
		assert.Equal(t, 2, first.Total)
		assert.Equal(t, uint(1), first.Deals[0].ID, "title-match boost must win")

		second, err := engine.Search(context.Background(), &models.QuerySpec{Query: "nike"})
		require.NoError(t, err)
		assert.Equal(t, analytics.SourceCacheHit, second.Source)
		assert.Equal(t, uint(1), second.Deals[0].ID)

		fetcher.AssertExpectations(t)

		report := engine.GetAnalytics("1h")
		assert.Equal(t, 2, report.TotalSearches)
		assert.InDelta(t, 0.5, report.CacheHitRate, 0.001)
	})

	t.Run("equivalent specs share a cache entry", func(t *testing.T) {
		fetcher := new(mockFetcher)
		engine := newTestEngine(fetcher)

		fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nikeResults(), nil).Once()

		_, err := engine.Search(context.Background(), &models.QuerySpec{
			Query: "nike", Tags: []string{"shoes", "running"},
		})
		require.NoError(t, err)

		cached, err := engine.Search(context.Background(), &models.QuerySpec{
			Query: "  NIKE ", Tags: []string{"running", "shoes"}, Sort: "relevance", Page: 1, Limit: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, analytics.SourceCacheHit, cached.Source)

		fetcher.AssertExpectations(t)
	})

	t.Run("fetcher failure surfaces as a database error", func(t *testing.T) {
		fetcher := new(mockFetcher)
		engine := newTestEngine(fetcher)

		fetcher.On("Fetch", mock.Anything, mock.Anything).
			Return(models.RawResults{}, assert.AnError)

		results, err := engine.Search(context.Background(), &models.QuerySpec{Query: "nike"})
		assert.Error(t, err)
		assert.Nil(t, results)

		report := engine.GetAnalytics("1h")
		assert.Equal(t, 1, report.Errors.TotalErrors)
		assert.Equal(t, "fetch_failed", report.Errors.Breakdown[0].Code)
	})

	t.Run("invalid spec never reaches the fetcher", func(t *testing.T) {
		fetcher := new(mockFetcher)
		engine := newTestEngine(fetcher)

		_, err := engine.Search(context.Background(), &models.QuerySpec{Query: "tv", Sort: "by_magic"})
		assert.Error(t, err)

		_, err = engine.Search(context.Background(), nil)
		assert.Error(t, err)

		fetcher.AssertNotCalled(t, "Fetch")
	})

	t.Run("pagination slices each entity list", func(t *testing.T) {
		fetcher := new(mockFetcher)
		engine := newTestEngine(fetcher)

		deals := make([]models.Deal, 25)
		for i := range deals {
			deals[i] = models.Deal{ID: uint(i + 1), Title: "tv deal", CreatedAt: time.Now()}
		}
		fetcher.On("Fetch", mock.Anything, mock.Anything).
			Return(models.RawResults{Deals: deals}, nil)

		results, err := engine.Search(context.Background(), &models.QuerySpec{
			Query: "tv", Sort: "oldest", Page: 2, Limit: 10,
		})
		require.NoError(t, err)
		assert.Len(t, results.Deals, 10)
		assert.Equal(t, 25, results.Total)
		assert.Equal(t, 2, results.Page)
	})
}

func TestEngineSuggestions(t *testing.T) {
	fetcher := new(mockFetcher)
	engine := newTestEngine(fetcher)

	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(models.RawResults{}, nil)

	for i := 0; i < 3; i++ {
		_, err := engine.Search(context.Background(), &models.QuerySpec{Query: "nike shoes"})
		require.NoError(t, err)
	}
	_, err := engine.Search(context.Background(), &models.QuerySpec{Query: "nike socks"})
	require.NoError(t, err)
	_, err = engine.Search(context.Background(), &models.QuerySpec{Query: "sony tv"})
	require.NoError(t, err)

	t.Run("prefix filtered and popularity ordered", func(t *testing.T) {
		got := engine.GetSuggestions("nike", 5)
		require.Len(t, got, 2)
		assert.Equal(t, "nike shoes", got[0])
		assert.Equal(t, "nike socks", got[1])
	})

	t.Run("limit respected", func(t *testing.T) {
		got := engine.GetSuggestions("", 2)
		assert.Len(t, got, 2)
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, engine.GetSuggestions("adidas", 5))
	})
}

func TestEngineCacheManagement(t *testing.T) {
	fetcher := new(mockFetcher)
	engine := newTestEngine(fetcher)

	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nikeResults(), nil)

	_, err := engine.Search(context.Background(), &models.QuerySpec{Query: "nike", Type: "deal"})
	require.NoError(t, err)
	_, err = engine.Search(context.Background(), &models.QuerySpec{Query: "sony tv"})
	require.NoError(t, err)

	stats := engine.CacheStats()
	assert.Equal(t, 2, stats.Entries)

	t.Run("invalidate pattern", func(t *testing.T) {
		removed := engine.InvalidatePattern("deal:nike")
		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, engine.CacheStats().Entries)
	})

	t.Run("clear cache", func(t *testing.T) {
		engine.ClearCache()
		assert.Zero(t, engine.CacheStats().Entries)
	})
}

func TestEngineRecordInteraction(t *testing.T) {
	fetcher := new(mockFetcher)
	engine := newTestEngine(fetcher)

	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nikeResults(), nil)

	_, err := engine.Search(context.Background(), &models.QuerySpec{Query: "nike"})
	require.NoError(t, err)

	engine.RecordInteraction("1", "deal", map[string]string{"position": "0"})

	report := engine.GetAnalytics("1h")
	assert.Equal(t, 1, report.Conversion.TotalInteractions)
	assert.InDelta(t, 1.0, report.Conversion.ClickThroughRate, 0.001)
	assert.Equal(t, 1, report.Conversion.ByType["deal"])

	live := engine.GetRealTimeMetrics()
	assert.Equal(t, 1, live.SearchesPerMinute)
	assert.Equal(t, 1, live.InteractionsPerMinute)
}
