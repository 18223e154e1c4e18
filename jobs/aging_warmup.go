package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Directoryofsites/Finaxis-sub003/internal/cxc"
	jobmetrics "github.com/Directoryofsites/Finaxis-sub003/internal/jobs"
)

// AgingWarmupJob pre-populates the portfolio aging cache so the morning
// dashboard never pays the full replay cost.
type AgingWarmupJob struct {
	Service *cxc.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAgingWarmupJob wires dependencies for the warmup handler.
func NewAgingWarmupJob(service *cxc.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *AgingWarmupJob {
	return &AgingWarmupJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes aging warmup tasks.
func (j *AgingWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("aging warmup: handler not configured")
	}
	var payload AgingWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.clock().Truncate(24 * time.Hour)
	}

	tracker := j.metrics().Track(TaskAgingWarmup)
	logger := j.logger().With(slog.String("request_id", payload.RequestID), slog.Time("as_of", asOf))
	logger.Info("starting aging warmup")

	report, err := j.Service.PortfolioAging(ctx, asOf)
	if err != nil {
		logger.Error("portfolio aging", slog.Any("error", err))
		return tracker.End(err)
	}

	j.metrics().AddWarnings(TaskAgingWarmup, report.WarningCount)
	logger.Info("aging warmup complete",
		slog.Int("units", len(report.Units)),
		slog.Int("warnings", report.WarningCount))
	return tracker.End(nil)
}

func (j *AgingWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *AgingWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
