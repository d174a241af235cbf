// Package app wires configuration, storage, providers, and transports into a
// runnable application.
package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"weatherbot.app/api"
	"weatherbot.app/config"
	"weatherbot.app/database"
	"weatherbot.app/providers"
	"weatherbot.app/providers/cache"
	"weatherbot.app/repository"
	"weatherbot.app/scheduler"
	"weatherbot.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config    *config.Config
	db        *gorm.DB
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

	backend, err := cache.New(&app.config.Cache)
	if err != nil {
		return fmt.Errorf("create cache backend: %w", err)
	}
	instrumented := providers.NewInstrumentedCache(backend, app.config.Cache.Type)

	upstream := providers.NewOpenWeatherMapClient(&app.config.Weather)
	client := providers.NewCachedWeatherClient(upstream, instrumented)

	notifier, err := providers.NewNotifier(&app.config.Notifier)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	weatherService := service.NewWeatherService(client)
	users := repository.NewUserRepository(app.db)
	notificationService := service.NewNotificationService(users, weatherService, notifier)

	app.server = api.NewServer(app.config, weatherService, users, instrumented)
	app.scheduler = scheduler.NewScheduler(&app.config.Scheduler, notificationService)

	slog.Info("Services initialized successfully",
		"cache_type", app.config.Cache.Type,
		"notifier_type", app.config.Notifier.Type)
	return nil
}

// Start starts the scheduler and the HTTP server
func (app *Application) Start() error {
	slog.Info("Starting application...")

	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
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
