// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"raporbot/internal/catalog"
	"raporbot/internal/chat"
	"raporbot/internal/config"
	"raporbot/internal/database"
	"raporbot/internal/logging"
	"raporbot/internal/report"
	"raporbot/internal/roster"
)

// Application wires configuration, storage, the report runner and the
// chat session factory together.
type Application struct {
	Config    *config.Config
	Logger    *logrus.Logger
	DBManager *database.DBManager
	Brand     catalog.Brand
	Location  *time.Location
	Roster    *roster.Store
	Runner    report.Runner

	people []roster.Person
	server *fiber.App
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	brand, ok := catalog.BrandByKey(cfg.Brand)
	if !ok {
		return nil, fmt.Errorf("unknown brand: %s", cfg.Brand)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", cfg.Timezone, err)
	}

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := dbManager.MigrateDatabase(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	db := dbManager.GetConnection()

	store := roster.NewStore(db)
	seeded, err := store.SeedFromCSV(cfg.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if seeded > 0 {
		logger.WithField("people", seeded).Info("Roster loaded")
	}
	people, err := store.All()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Brand:     brand,
		Location:  loc,
		Roster:    store,
		Runner:    report.NewLocalRunner(db, brand, loc),
		people:    people,
	}, nil
}

// NewSession creates a chat session bound to the application's brand
// and report runner.
func (a *Application) NewSession() *chat.Session {
	return chat.NewSession(a.Config, a.Logger, a.Brand, a.Runner, a.Roster, a.people, a.Location)
}

// StartServer mounts the HTTP routes and blocks serving requests.
func (a *Application) StartServer() error {
	app := fiber.New(fiber.Config{
		AppName:               a.Config.AppName,
		DisableStartupMessage: a.Config.IsProduction(),
	})
	MountAppRoutes(app, a)
	a.server = app

	addr := ":" + a.Config.AppPort
	a.Logger.WithField("addr", addr).Info("Starting HTTP server")
	return app.Listen(addr)
}

// Shutdown stops the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.ShutdownWithContext(ctx); err != nil {
			a.Logger.WithError(err).Warn("HTTP server shutdown failed")
		}
	}
	return a.DBManager.Close()
}
