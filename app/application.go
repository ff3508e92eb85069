package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/laxmanfhaneendra/savebucks-sub002/api"
	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	"github.com/laxmanfhaneendra/savebucks-sub002/database"
	"github.com/laxmanfhaneendra/savebucks-sub002/repository"
	"github.com/laxmanfhaneendra/savebucks-sub002/scheduler"
	"github.com/laxmanfhaneendra/savebucks-sub002/search"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/analytics"
	"github.com/laxmanfhaneendra/savebucks-sub002/search/cache"
)

// Application represents the main application with all its dependencies
type Application struct {
	config    *config.Config
	db        *gorm.DB
	sink      analytics.EventSink
	server    *api.Server
	scheduler *scheduler.Scheduler
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeDatabase() error {
	slog.Info("Initializing database...")

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return fmt.Errorf("initialize database connection: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		return fmt.Errorf("run database migrations: %w", err)
	}

	app.db = db
	slog.Info("Database initialized successfully")
	return nil
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	resultCache := cache.NewResultCacheWithCompressor(app.config.Cache, cache.GzipCompressor{})
	aggregator := analytics.NewAggregator(app.config.Analytics)

	sink, err := app.createEventSink()
	if err != nil {
		return fmt.Errorf("create event sink: %w", err)
	}
	app.sink = sink

	fetcher := repository.NewSearchRepository(app.db)
	engine := search.NewEngine(fetcher, resultCache, aggregator)

	app.server = api.NewServer(app.config, engine)
	app.scheduler = scheduler.NewScheduler(resultCache, aggregator, sink, app.config.Cache, app.config.Analytics)

	slog.Info("Services initialized successfully")
	return nil
}

// createEventSink picks the redis sink when configured, otherwise
// events drain to the structured log.
func (app *Application) createEventSink() (analytics.EventSink, error) {
	if !app.config.Redis.Enabled {
		slog.Debug("Redis disabled, draining analytics events to log")
		return analytics.NewLogSink(), nil
	}

	slog.Debug("Connecting redis event sink", "addr", app.config.Redis.Addr)
	return analytics.NewRedisEventSink(app.config.Redis)
}

// Start starts the application
func (app *Application) Start() error {
	slog.Info("Starting application...")

	slog.Info("Starting scheduler...")
	app.scheduler.Start()

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if closer, ok := app.sink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("Error closing event sink", "error", err)
		}
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}
