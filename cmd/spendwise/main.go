package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendwise/internal/backend"
	"spendwise/internal/budget"
	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
	applog "spendwise/internal/log"
	"spendwise/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	dashboardRecent = 5
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	engine, err := budget.NewEngine(cfg.Convention())
	if err != nil {
		logger.Error("Failed to create report engine", "error", err, "convention", cfg.WeekConvention)
		os.Exit(1)
	}
	reports := services.NewReportService(res.Store, engine, cfg.AnalyticsRange, cfg.ReportTimeout)
	transactions, err := services.NewTransactionService(res.Store, cfg.TrackerRange)
	if err != nil {
		logger.Error("Failed to create transaction service", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Reports:      reports,
		Dashboard:    services.NewDashboardService(reports, transactions, dashboardRecent),
		Transactions: transactions,
		Budgets:      res.Budgets,
		Categories:   cfg.BudgetCategories,
		Ready:        res.Ready,
		Logger:       logger,
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting spendwise server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"convention", cfg.WeekConvention)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
