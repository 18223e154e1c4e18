package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Directoryofsites/Finaxis-sub003/internal/app"
	"github.com/Directoryofsites/Finaxis-sub003/internal/cxc"
	"github.com/Directoryofsites/Finaxis-sub003/internal/observability"
	"github.com/Directoryofsites/Finaxis-sub003/internal/platform/cache"
	"github.com/Directoryofsites/Finaxis-sub003/internal/platform/db"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, aging cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	cxcRepo := cxc.NewRepository(pool)
	classifierCfg, err := cxcRepo.LoadClassifierConfig(ctx)
	if err != nil {
		logger.Error("load classifier config", slog.Any("error", err))
		os.Exit(1)
	}
	engine := cxc.NewEngine(classifierCfg)
	cxcService := cxc.NewService(cxcRepo, engine, redisClient, logger, cxc.ServiceConfig{
		AgingCacheTTL:    cfg.AgingCacheTTL,
		AgingConcurrency: cfg.AgingConcurrency,
	})
	cxcHandler := cxc.NewHandler(logger, cxcService, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:     logger,
		Config:     cfg,
		CXCHandler: cxcHandler,
		Metrics:    metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
