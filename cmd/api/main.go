package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/straye-as/crm-reports/docs"
	"github.com/straye-as/crm-reports/internal/auth"
	"github.com/straye-as/crm-reports/internal/config"
	"github.com/straye-as/crm-reports/internal/database"
	"github.com/straye-as/crm-reports/internal/http/handler"
	"github.com/straye-as/crm-reports/internal/http/middleware"
	"github.com/straye-as/crm-reports/internal/http/router"
	"github.com/straye-as/crm-reports/internal/jobs"
	"github.com/straye-as/crm-reports/internal/logger"
	"github.com/straye-as/crm-reports/internal/metrics"
	"github.com/straye-as/crm-reports/internal/repository"
	"github.com/straye-as/crm-reports/internal/service"
	"go.uber.org/zap"
)

// @title Straye CRM Reports API
// @version 1.0
// @description Reporting and analytics over the real-estate CRM

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token issued by the CRM

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Basic configuration is enough to set up logging
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Secrets come from the environment in development and from Key Vault
	// in staging and production
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	m := metrics.New()
	reportRepo := repository.NewReportRepository(db)
	reportService := service.NewReportService(reportRepo, cfg, m, log)

	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	reportHandler := handler.NewReportHandler(reportService, &cfg.Reports, m, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		m,
		prometheus.DefaultGatherer,
		authMiddleware,
		rateLimiter,
		reportHandler,
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.SLAScanEnabled {
		scheduler = jobs.NewScheduler(log)
		slaJob := jobs.NewSLAScanJob(reportService, m, cfg.Auth.AdminRoles, log, cfg.Jobs.SLAScanTimeoutDuration())
		if err := scheduler.AddJob(jobs.SLAScanJobName, cfg.Jobs.SLAScanCron, slaJob.Run); err != nil {
			log.Error("Failed to register SLA scan job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			// Publish gauges right away instead of waiting for the first tick
			go slaJob.Run()
		}
	} else {
		log.Info("SLA scan disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Error closing database connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
