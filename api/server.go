package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	apperrors "github.com/laxmanfhaneendra/savebucks-sub002/errors"
	"github.com/laxmanfhaneendra/savebucks-sub002/models"
)

const defaultSuggestionLimit = 5

// SearchEngine is the surface the HTTP layer needs from the search service
type SearchEngine interface {
	Search(ctx context.Context, spec *models.QuerySpec) (*models.SearchResults, error)
	GetSuggestions(partial string, limit int) []string
	RecordInteraction(targetID, targetType string, properties map[string]string)
	GetAnalytics(timeframe string) models.AnalyticsReport
	GetRealTimeMetrics() models.RealTimeMetrics
	ClearCache()
	InvalidatePattern(substr string) int
	CacheStats() models.CacheStats
}

// Server represents the HTTP server and API handler
type Server struct {
	router *gin.Engine
	config *config.Config
	engine SearchEngine
}

// NewServer creates and configures a new HTTP server
func NewServer(config *config.Config, engine SearchEngine) *Server {
	router := gin.Default()

	server := &Server{
		router: router,
		config: config,
		engine: engine,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/search", s.search)
		api.GET("/suggestions", s.suggestions)
		api.GET("/analytics", s.analytics)
		api.GET("/metrics/realtime", s.realTimeMetrics)
		api.GET("/cache/stats", s.cacheStats)
		api.POST("/cache/clear", s.clearCache)
		api.POST("/cache/invalidate", s.invalidateCache)
		api.POST("/interactions", s.recordInteraction)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) search(c *gin.Context) {
	var spec models.QuerySpec
	if err := c.ShouldBindQuery(&spec); err != nil {
		slog.Error("Query binding error", "error", err)
		s.handleError(c, apperrors.NewValidationError("invalid search parameters"))
		return
	}

	slog.Debug("Handling search", "query", spec.Query, "type", spec.Type, "sort", spec.Sort)

	results, err := s.engine.Search(c, &spec)
	if err != nil {
		slog.Error("Search error", "error", err, "query", spec.Query)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (s *Server) suggestions(c *gin.Context) {
	partial := c.Query("q")
	if partial == "" {
		s.handleError(c, apperrors.NewValidationError("q parameter is required"))
		return
	}

	limit := defaultSuggestionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.handleError(c, apperrors.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": s.engine.GetSuggestions(partial, limit)})
}

func (s *Server) analytics(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", "24h")

	slog.Debug("Building analytics report", "timeframe", timeframe)
	c.JSON(http.StatusOK, s.engine.GetAnalytics(timeframe))
}

func (s *Server) realTimeMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.GetRealTimeMetrics())
}

func (s *Server) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.CacheStats())
}

func (s *Server) clearCache(c *gin.Context) {
	s.engine.ClearCache()
	slog.Info("Result cache cleared")
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}

func (s *Server) invalidateCache(c *gin.Context) {
	var req models.InvalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, apperrors.NewValidationError("pattern is required"))
		return
	}

	removed := s.engine.InvalidatePattern(req.Pattern)
	slog.Info("Cache entries invalidated", "pattern", req.Pattern, "removed", removed)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) recordInteraction(c *gin.Context) {
	var req models.InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, apperrors.NewValidationError("target_id and target_type are required"))
		return
	}

	s.engine.RecordInteraction(req.TargetID, req.TargetType, req.Properties)
	c.JSON(http.StatusOK, gin.H{"message": "Interaction recorded"})
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case apperrors.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case apperrors.DatabaseError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		case apperrors.CacheError, apperrors.SinkError:
			statusCode = http.StatusServiceUnavailable
			message = "Service temporarily unavailable"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
