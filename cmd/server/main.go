package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/alexzimmer/portfolio/internal/api"
	"github.com/alexzimmer/portfolio/internal/api/handler"
	"github.com/alexzimmer/portfolio/internal/config"
	"github.com/alexzimmer/portfolio/internal/logging"
	"github.com/alexzimmer/portfolio/internal/metrics"
	"github.com/alexzimmer/portfolio/internal/ratelimiter"
	"github.com/alexzimmer/portfolio/internal/runtimeinfo"
	"github.com/alexzimmer/portfolio/internal/service"
	"github.com/alexzimmer/portfolio/internal/tracing"
	"github.com/alexzimmer/portfolio/internal/version"
)

func main() {
	configPath := flag.String("config", os.Getenv("PORTFOLIO_CONFIG"), "path to an optional YAML config file")
	flag.Parse()

	// ---- configuration ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// ---- logging ----
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx := context.Background()

	// ---- tracing ----
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.Site.Environment, cfg.Site.Version)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	healthSvc := service.NewHealthService(
		runtimeinfo.NewProcess(),
		logger.Named("health"),
		service.WithReportHook(m.ReportHook()),
	)
	healthSvc.Register(service.CheckServer, service.ServerCheck())
	healthSvc.Register(service.CheckFilesystem, service.FilesystemCheck(cfg.Health.ProbeDirs...))

	deps := api.Deps{
		Health:    handler.NewHealthHandler(healthSvc, cfg.Site, logger),
		OnLimited: m.OnRateLimited(),
		Gatherer:  reg,
		Logger:    logger,
	}
	if cfg.RateLimit.Enabled {
		deps.Limiter = ratelimiter.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
	}

	// ---- HTTP server ----
	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("version", version.String()),
			zap.String("environment", cfg.Site.Environment),
			zap.String("region", cfg.Site.Region),
			zap.Strings("checks", healthSvc.CheckNames()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	// 1. Stop accepting new HTTP requests and drain in-flight probes.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Flush buffered spans.
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}
