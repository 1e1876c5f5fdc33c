package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/finance-tracker/internal/domain/balance"
	balancehandler "github.com/FACorreiaa/finance-tracker/internal/domain/balance/handler"
	"github.com/FACorreiaa/finance-tracker/internal/domain/finance"
	financehandler "github.com/FACorreiaa/finance-tracker/internal/domain/finance/handler"
	importhandler "github.com/FACorreiaa/finance-tracker/internal/domain/import/handler"
	importrepo "github.com/FACorreiaa/finance-tracker/internal/domain/import/repository"
	importservice "github.com/FACorreiaa/finance-tracker/internal/domain/import/service"

	"github.com/FACorreiaa/finance-tracker/pkg/config"
	"github.com/FACorreiaa/finance-tracker/pkg/cron"
	"github.com/FACorreiaa/finance-tracker/pkg/db"
	"github.com/FACorreiaa/finance-tracker/pkg/metrics"
	"github.com/FACorreiaa/finance-tracker/pkg/money"
	"github.com/FACorreiaa/finance-tracker/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	ImportRepo  importrepo.ImportRepository
	FinanceRepo finance.Repository
	BalanceRepo balance.Repository

	// Services
	Formatter      *money.Formatter
	ImportService  *importservice.ImportService
	FinanceService *finance.Service
	BalanceService *balance.Service
	FileStorage    storage.Storage
	Scheduler      *cron.Scheduler

	// Handlers
	FinanceHandler *financehandler.FinanceHandler
	ImportHandler  *importhandler.ImportHandler
	BalanceHandler *balancehandler.BalanceHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        int32(d.Config.Database.MaxConns),
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		d.DB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initRepositories() {
	d.ImportRepo = importrepo.NewPostgresImportRepository(d.DB.Pool)
	d.FinanceRepo = finance.NewPostgresRepository(d.DB.Pool)
	d.BalanceRepo = balance.NewPostgresRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	formatter, err := money.NewFormatter(d.Config.Import.CurrencyCode)
	if err != nil {
		return err
	}
	d.Formatter = formatter

	d.ImportService = importservice.NewImportService(d.ImportRepo, d.Logger).
		WithMetrics(d.Metrics)
	d.FinanceService = finance.NewService(d.FinanceRepo, d.Formatter, d.Logger)
	d.BalanceService = balance.NewService(d.BalanceRepo, d.Formatter, d.Logger)

	fileStorage, err := storage.NewLocalStorage(d.Config.Storage.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	d.Scheduler = cron.NewScheduler(fileStorage, d.Config.Storage.SweepSchedule, d.Config.Storage.MaxAge, d.Logger).
		WithRecorder(d.Metrics)

	d.Logger.Info("services initialized")
	return nil
}

func (d *Dependencies) initHandlers() {
	d.FinanceHandler = financehandler.NewFinanceHandler(d.FinanceService, d.Logger)
	d.ImportHandler = importhandler.NewImportHandler(d.ImportService, d.FileStorage, d.Config.Server.MaxUploadBytes, d.Logger)
	d.BalanceHandler = balancehandler.NewBalanceHandler(d.BalanceService, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
