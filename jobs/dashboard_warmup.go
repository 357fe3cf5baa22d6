package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lims-dash/lims-dash/internal/dashboard"
)

// DashboardWarmupJob refreshes the cached dashboard snapshots with a
// service-account token so the first page load of the day is warm.
type DashboardWarmupJob struct {
	Dashboard    *dashboard.Service
	ServiceToken string
	Logger       *slog.Logger
	clock        func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dashboardSvc *dashboard.Service, serviceToken string, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard:    dashboardSvc,
		ServiceToken: serviceToken,
		Logger:       logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	if j.ServiceToken == "" {
		j.logger().Info("no service token configured, skipping warmup")
		return nil
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Scope == "" {
		payload.Scope = "all"
	}

	started := j.now()
	logger := j.logger().With(slog.String("scope", payload.Scope))
	logger.Info("starting dashboard warmup")

	if payload.Scope == "all" || payload.Scope == "user" {
		if _, err := j.Dashboard.Refresh(ctx, j.ServiceToken, false); err != nil {
			logger.Error("warm user snapshot", slog.Any("error", err))
			return err
		}
	}
	if payload.Scope == "all" || payload.Scope == "admin" {
		if _, err := j.Dashboard.Refresh(ctx, j.ServiceToken, true); err != nil {
			logger.Error("warm admin snapshot", slog.Any("error", err))
			return err
		}
	}

	logger.Info("dashboard warmup complete", slog.Duration("took", j.now().Sub(started)))
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
