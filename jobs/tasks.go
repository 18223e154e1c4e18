package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAgingWarmup recomputes and caches the portfolio aging report.
	TaskAgingWarmup = "cxc:aging_warmup"
)

// AgingWarmupPayload carries the parameters for an aging warmup run.
type AgingWarmupPayload struct {
	RequestID string    `json:"request_id"`
	AsOf      time.Time `json:"as_of,omitempty"`
}

// NewAgingWarmupTask constructs an Asynq task for the aging warmup.
func NewAgingWarmupTask(asOf time.Time) (*asynq.Task, error) {
	payload := AgingWarmupPayload{
		RequestID: uuid.NewString(),
		AsOf:      asOf,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAgingWarmup, data), nil
}
