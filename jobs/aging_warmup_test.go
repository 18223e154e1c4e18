package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Directoryofsites/Finaxis-sub003/internal/cxc"
)

type stubRepo struct {
	documents map[int64][]cxc.SourceDocument
}

func (r *stubRepo) ListUnitDocuments(ctx context.Context, unitID int64) ([]cxc.SourceDocument, error) {
	docs, ok := r.documents[unitID]
	if !ok {
		return nil, cxc.ErrUnitNotFound
	}
	return docs, nil
}

func (r *stubRepo) ListUnitIDs(ctx context.Context) ([]int64, error) {
	return []int64{1}, nil
}

func warmupService(t *testing.T) *cxc.Service {
	t.Helper()
	repo := &stubRepo{documents: map[int64][]cxc.SourceDocument{
		1: {{
			ID:   1,
			Date: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			Kind: cxc.KindDebt,
			Lines: []cxc.DocumentLine{
				{Description: "Cuota enero", Amount: decimal.NewFromInt(100000), AccountID: 5},
			},
		}},
	}}
	engine := cxc.NewEngine(cxc.Config{})
	logger := slog.New(slog.DiscardHandler)
	return cxc.NewService(repo, engine, nil, logger, cxc.ServiceConfig{})
}

func TestAgingWarmupHandle(t *testing.T) {
	job := NewAgingWarmupJob(warmupService(t), slog.New(slog.DiscardHandler), nil)

	task, err := NewAgingWarmupTask(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
}

func TestAgingWarmupSkipsMalformedPayload(t *testing.T) {
	job := NewAgingWarmupJob(warmupService(t), slog.New(slog.DiscardHandler), nil)

	task := asynq.NewTask(TaskAgingWarmup, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestAgingWarmupTaskPayload(t *testing.T) {
	asOf := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewAgingWarmupTask(asOf)
	require.NoError(t, err)
	require.Equal(t, TaskAgingWarmup, task.Type())

	var payload AgingWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.NotEmpty(t, payload.RequestID)
	require.True(t, payload.AsOf.Equal(asOf))
}
