// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/database"
	"print-service/internal/escpos"
	"print-service/internal/receipt"
	"print-service/internal/repository"
	"print-service/internal/routes"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	printer *transport.Service
	jobs    repository.PrintJobRepository
	opts    *receipt.Options
}

func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "print-service")
	serviceLogger.LogServiceStart(cfg.App.Version)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initializePrinter(); err != nil {
		return nil, fmt.Errorf("failed to initialize printer transport: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeDatabase sets up the optional job-history store. With no
// DSN configured the service runs printer-only.
func (app *Application) initializeDatabase() error {
	if !app.config.HistoryEnabled() {
		app.logger.Info("Job history disabled, no database DSN configured")
		return nil
	}

	db, err := database.NewConnection(&app.config.Database, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	app.database = db

	migrator := database.NewMigrator(db, app.logger, &app.config.Database)
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.jobs = repository.NewPrintJobRepository(db, app.logger)

	app.logger.Info("Database initialized successfully")
	return nil
}

// initializePrinter builds the transport service from configuration
func (app *Application) initializePrinter() error {
	transportCfg, err := app.config.Printer.TransportConfig()
	if err != nil {
		return err
	}

	app.printer = transport.NewService(transportCfg, app.logger)

	cfgOpts := app.config.ReceiptOptions()
	app.opts = &receipt.Options{
		PaperSize:     escpos.PaperSize(cfgOpts.PaperSize),
		StoreName:     cfgOpts.StoreName,
		StoreSubtitle: cfgOpts.StoreSubtitle,
		FooterMessage: cfgOpts.FooterMessage,
		PrintBarcode:  receipt.Bool(cfgOpts.PrintBarcode),
		CutPaper:      receipt.Bool(cfgOpts.CutPaper),
		OpenDrawer:    receipt.Bool(cfgOpts.OpenDrawer),
	}

	app.logger.Info("Printer transport initialized",
		zap.String("connection_type", app.config.Printer.ConnectionType),
		zap.String("paper_size", app.config.Printer.PaperSize),
	)
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.printer,
		app.jobs,
		app.opts,
	)

	router := routerManager.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)

	return nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "print-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if err := app.printer.Close(); err != nil {
		app.logger.Error("Printer transport close error", zap.Error(err))
	} else {
		app.logger.Info("Printer transport closed")
	}

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.waitForShutdown()

	return nil
}
