package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/aifallback"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/handler"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/service"

	"github.com/FACorreiaa/smart-expense-tracker/pkg/config"
	"github.com/FACorreiaa/smart-expense-tracker/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	ExpenseRepo repository.ExpenseRepository

	// Services
	AIFallback     *aifallback.Parser
	ExpenseService *service.ExpenseService

	// Handlers
	ExpenseHandler *handler.ExpenseHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize repositories
	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	// Run migrations
	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	d.ExpenseRepo = repository.NewPostgresExpenseRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	loc, err := d.Config.Parser.Location()
	if err != nil {
		return fmt.Errorf("invalid parser timezone: %w", err)
	}

	d.AIFallback = aifallback.New(d.Config.Parser.AIFallbackEnabled)
	d.ExpenseService = service.NewExpenseService(
		d.ExpenseRepo,
		d.Logger,
		service.WithLocation(loc),
		service.WithWorkers(d.Config.Parser.BatchWorkers),
		service.WithFallback(d.AIFallback),
	)

	d.Logger.Info("services initialized",
		slog.String("timezone", loc.String()),
		slog.Bool("ai_fallback", d.AIFallback.Available()),
	)
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.ExpenseHandler = handler.NewExpenseHandler(d.ExpenseService)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
