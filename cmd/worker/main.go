package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Directoryofsites/Finaxis-sub003/internal/app"
	"github.com/Directoryofsites/Finaxis-sub003/internal/cxc"
	jobmetrics "github.com/Directoryofsites/Finaxis-sub003/internal/jobs"
	"github.com/Directoryofsites/Finaxis-sub003/internal/platform/cache"
	"github.com/Directoryofsites/Finaxis-sub003/internal/platform/db"
	"github.com/Directoryofsites/Finaxis-sub003/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

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

	warmupJob := jobs.NewAgingWarmupJob(cxcService, logger, jobmetrics.NewMetrics(nil))
	warmupTask, err := jobs.NewAgingWarmupTask(time.Time{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAgingWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// Warm the portfolio aging cache before the workday starts.
			{Spec: "0 5 * * *", Task: warmupTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
