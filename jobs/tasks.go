package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup refreshes the cached dashboard snapshots.
	TaskDashboardWarmup = "dashboard:warmup"
)

// DashboardWarmupPayload selects which snapshots to refresh.
type DashboardWarmupPayload struct {
	Scope string `json:"scope"` // "all", "admin", or "user"
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(scope string) (*asynq.Task, error) {
	if scope == "" {
		scope = "all"
	}
	data, err := json.Marshal(DashboardWarmupPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
