package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	apperrors "github.com/laxmanfhaneendra/savebucks-sub002/errors"
	"github.com/laxmanfhaneendra/savebucks-sub002/models"
)

// MockSearchEngine for testing
type MockSearchEngine struct {
	mock.Mock
}

func (m *MockSearchEngine) Search(ctx context.Context, spec *models.QuerySpec) (*models.SearchResults, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchResults), args.Error(1)
}

func (m *MockSearchEngine) GetSuggestions(partial string, limit int) []string {
	args := m.Called(partial, limit)
	return args.Get(0).([]string)
}

func (m *MockSearchEngine) RecordInteraction(targetID, targetType string, properties map[string]string) {
	m.Called(targetID, targetType, properties)
}

func (m *MockSearchEngine) GetAnalytics(timeframe string) models.AnalyticsReport {
	args := m.Called(timeframe)
	return args.Get(0).(models.AnalyticsReport)
}

func (m *MockSearchEngine) GetRealTimeMetrics() models.RealTimeMetrics {
	args := m.Called()
	return args.Get(0).(models.RealTimeMetrics)
}

func (m *MockSearchEngine) ClearCache() {
	m.Called()
}

func (m *MockSearchEngine) InvalidatePattern(substr string) int {
	args := m.Called(substr)
	return args.Int(0)
}

func (m *MockSearchEngine) CacheStats() models.CacheStats {
	args := m.Called()
	return args.Get(0).(models.CacheStats)
}

func setupTestServer() (*gin.Engine, *MockSearchEngine) {
	gin.SetMode(gin.TestMode)

	engine := new(MockSearchEngine)
	server := NewServer(&config.Config{Server: config.ServerConfig{Port: 8080}}, engine)
	return server.GetRouter(), engine
}

func TestSearchEndpoint(t *testing.T) {
	router, engine := setupTestServer()

	engine.On("Search", mock.Anything, mock.MatchedBy(func(spec *models.QuerySpec) bool {
		return spec.Query == "nike" && spec.Type == "deal"
	})).Return(&models.SearchResults{
		Query:  "nike",
		Deals:  []models.Deal{{Title: "Nike Air Max"}},
		Total:  1,
		Source: "database_hit",
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/search?q=nike&type=deal", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var results models.SearchResults
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Equal(t, "nike", results.Query)
	assert.Equal(t, 1, results.Total)
	engine.AssertExpectations(t)
}

func TestSearchEndpointValidationError(t *testing.T) {
	router, engine := setupTestServer()

	engine.On("Search", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError("limit must be between 1 and 100"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/search?q=nike&limit=99999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "limit must be between 1 and 100", resp.Error)
}

func TestSearchEndpointDatabaseError(t *testing.T) {
	router, engine := setupTestServer()

	engine.On("Search", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewDatabaseError("fetching candidates failed", assert.AnError))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/search?q=nike", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestSuggestionsEndpoint(t *testing.T) {
	router, engine := setupTestServer()

	engine.On("GetSuggestions", "ni", 5).Return([]string{"nike shoes", "nintendo switch"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/suggestions?q=ni", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"nike shoes", "nintendo switch"}, resp["suggestions"])
}

func TestSuggestionsEndpointRequiresQuery(t *testing.T) {
	router, engine := setupTestServer()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/suggestions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	engine.AssertNotCalled(t, "GetSuggestions")
}

func TestAnalyticsEndpointDefaultsTimeframe(t *testing.T) {
	router, engine := setupTestServer()

	engine.On("GetAnalytics", "24h").Return(models.AnalyticsReport{
		Timeframe:     "24h",
		TotalSearches: 42,
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/analytics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var report models.AnalyticsReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 42, report.TotalSearches)
	engine.AssertExpectations(t)
}

func TestRealTimeMetricsEndpoint(t *testing.T) {
	router, engine := setupTestServer()

	engine.On("GetRealTimeMetrics").Return(models.RealTimeMetrics{
		SearchesPerMinute: 7,
		LoadLevel:         "low",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/metrics/realtime", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var metrics models.RealTimeMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	assert.Equal(t, 7, metrics.SearchesPerMinute)
	assert.Equal(t, "low", metrics.LoadLevel)
}

func TestCacheEndpoints(t *testing.T) {
	router, engine := setupTestServer()

	engine.On("CacheStats").Return(models.CacheStats{Entries: 3, HitRate: 0.5})
	engine.On("ClearCache").Return()
	engine.On("InvalidatePattern", "nike").Return(2)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats models.CacheStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Entries)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	body, _ := json.Marshal(models.InvalidateRequest{Pattern: "nike"})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/cache/invalidate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["removed"])
	engine.AssertExpectations(t)
}

func TestInvalidateRequiresPattern(t *testing.T) {
	router, engine := setupTestServer()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/cache/invalidate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	engine.AssertNotCalled(t, "InvalidatePattern")
}

func TestInteractionsEndpoint(t *testing.T) {
	router, engine := setupTestServer()

	engine.On("RecordInteraction", "deal-42", "deal", map[string]string{"position": "1"}).Return()

	body, _ := json.Marshal(models.InteractionRequest{
		TargetID:   "deal-42",
		TargetType: "deal",
		Properties: map[string]string{"position": "1"},
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/interactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	engine.AssertExpectations(t)
}

func TestPrometheusEndpointExposed(t *testing.T) {
	router, _ := setupTestServer()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
